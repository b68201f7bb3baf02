//go:build linux

package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blocktrace/blocktrace-go/pkg/devtree"
)

// node is a devtree.Node over a sysfs device directory. The hierarchy is
// the directory tree under root (normally /sys/devices); the parent
// relation is the parent directory. Devices can disappear between visits
// (hot-unplug), which Valid detects.
type node struct {
	path string
	root string
}

// Valid reports whether the directory still exists and lies within the
// devices tree. A path outside the tree means symlink resolution or the
// parent walk went somewhere implausible.
func (n *node) Valid() bool {
	if n.path != n.root && !strings.HasPrefix(n.path, n.root+string(filepath.Separator)) {
		return false
	}
	st, err := os.Stat(n.path)
	return err == nil && st.IsDir()
}

// Parent returns the parent directory as a node, or nil once the walk
// reaches the devices root.
func (n *node) Parent() devtree.Node {
	parent := filepath.Dir(n.path)
	if parent == n.path || len(parent) <= len(n.root) {
		return nil
	}
	return &node{path: parent, root: n.root}
}

// PCI reads the node's PCI identity from its sysfs attributes. A node is a
// PCI device when its subsystem symlink points at the pci bus and its
// directory name is a bus address.
func (n *node) PCI() (devtree.PCIIdentity, bool) {
	target, err := os.Readlink(filepath.Join(n.path, "subsystem"))
	if err != nil || filepath.Base(target) != "pci" {
		return devtree.PCIIdentity{}, false
	}

	name := filepath.Base(n.path)
	bus, dev, fn, err := parseBDF(name)
	if err != nil {
		return devtree.PCIIdentity{}, false
	}

	vendor, err := readHexAttr(n.path, "vendor")
	if err != nil {
		return devtree.PCIIdentity{}, false
	}
	device, err := readHexAttr(n.path, "device")
	if err != nil {
		return devtree.PCIIdentity{}, false
	}
	class, err := readHexAttr(n.path, "class")
	if err != nil {
		return devtree.PCIIdentity{}, false
	}

	return devtree.PCIIdentity{
		VendorID:  uint16(vendor),
		DeviceID:  uint16(device),
		ClassCode: uint32(class) & 0xffffff,
		Bus:       bus,
		Device:    dev,
		Function:  fn,
		Name:      name,
	}, true
}

// parseBDF parses a sysfs PCI directory name like "0000:03:00.1" into its
// bus, device and function numbers. The PCI domain is dropped; the wire
// contract has no field for it.
func parseBDF(name string) (bus, dev, fn uint8, err error) {
	var domain, b, d, f uint32
	if _, err = fmt.Sscanf(name, "%04x:%02x:%02x.%x", &domain, &b, &d, &f); err != nil {
		return 0, 0, 0, fmt.Errorf("not a PCI address: %q", name)
	}
	if b > 0xff || d > 0x1f || f > 0x7 {
		return 0, 0, 0, fmt.Errorf("PCI address out of range: %q", name)
	}
	return uint8(b), uint8(d), uint8(f), nil
}

// readHexAttr reads a sysfs attribute file containing a hex value like
// "0x010802".
func readHexAttr(dir, attr string) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		return 0, err
	}
	text := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	v, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("attribute %s/%s: %w", dir, attr, err)
	}
	return v, nil
}
