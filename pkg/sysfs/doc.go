// Package sysfs implements the resolver's host-environment interfaces on
// Linux.
//
// File metadata comes from fstat/fstatfs: the inode type, the owning
// filesystem's type (mapped from its statfs magic number to the name the
// classification table knows), its block size, and whether the containing
// device is registered under /sys/dev/block. The device hierarchy is the
// sysfs devices tree: a node is a directory under /sys/devices, its parent
// is the parent directory, and PCI devices are recognized by their
// subsystem symlink and described by their vendor, device and class
// attribute files.
//
// Only Linux exposes this information; on other platforms Open and FromFile
// return ErrUnsupportedPlatform.
package sysfs
