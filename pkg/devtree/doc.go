// Package devtree walks the device hierarchy above a block device looking
// for storage-controller transport endpoints.
//
// The hierarchy is owned by the host environment and may change while a walk
// is in progress (hot-plug, device removal). Nodes are therefore accessed
// through the Node interface, whose Valid method must be consulted before
// each dereference; a node that has become invalid ends the walk early with
// whatever endpoints were already collected. That is a partial success, not
// an error.
//
// The walk follows the single-parent ancestry chain from the block device's
// node toward the root. Non-matching PCI devices (bridges, RAID controllers)
// are skipped without stopping the walk, so an NVMe controller behind a
// bridge is still found. Finding nothing is a valid outcome: the device may
// be attached over USB or SCSI rather than PCIe.
package devtree
