// Package testharness builds sysfs-shaped directory trees for tests.
//
// A SysfsTree mimics the parts of /sys the resolver reads: the device
// hierarchy under devices/, PCI attribute files and subsystem symlinks on
// controller directories, and the dev/block registry that maps device
// numbers to hierarchy nodes.
package testharness

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// PCIDevice describes a fake PCI device placed in the tree.
type PCIDevice struct {
	// BDF is the device's bus address in "dddd:bb:dd.f" form. It becomes
	// the directory name, so it must parse the way sysfs names do.
	BDF string

	// Vendor, Device and Class are written to the attribute files verbatim,
	// in the "0x..." form the kernel uses.
	Vendor string
	Device string
	Class  string
}

// NVMeController is a typical NVMe controller for tests that only need
// one plausible device.
var NVMeController = PCIDevice{
	BDF:    "0000:03:00.0",
	Vendor: "0x144d",
	Device: "0xa808",
	Class:  "0x010802",
}

// SysfsTree is a constructed sysfs root. All paths are relative to Root.
type SysfsTree struct {
	Root string
}

// NewSysfsTree creates an empty tree under a test temp directory.
func NewSysfsTree(t *testing.T) *SysfsTree {
	t.Helper()
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "devices"))
	mustMkdir(t, filepath.Join(root, "dev", "block"))
	mustMkdir(t, filepath.Join(root, "bus", "pci"))
	return &SysfsTree{Root: root}
}

// DevicesRoot returns the root of the device hierarchy.
func (s *SysfsTree) DevicesRoot() string {
	return filepath.Join(s.Root, "devices")
}

// AddPCIController places a PCI device directly under a host bridge
// directory and returns its directory path.
func (s *SysfsTree) AddPCIController(t *testing.T, dev PCIDevice) string {
	t.Helper()
	ctrl := filepath.Join(s.DevicesRoot(), "pci0000:00", dev.BDF)
	mustMkdir(t, ctrl)
	s.markPCI(t, ctrl, dev)
	return ctrl
}

// AddChildPCI places a PCI device under an existing directory, for
// bridge-behind-bridge topologies.
func (s *SysfsTree) AddChildPCI(t *testing.T, parent string, dev PCIDevice) string {
	t.Helper()
	dir := filepath.Join(parent, dev.BDF)
	mustMkdir(t, dir)
	s.markPCI(t, dir, dev)
	return dir
}

// AddBlockLeaf creates a block device directory chain under parent, the way
// an NVMe namespace hangs off its controller, and returns the leaf.
func (s *SysfsTree) AddBlockLeaf(t *testing.T, parent string, elems ...string) string {
	t.Helper()
	leaf := filepath.Join(append([]string{parent}, elems...)...)
	mustMkdir(t, leaf)
	return leaf
}

// RegisterBlockDev maps a device number to a hierarchy directory, the
// dev/block registry entry the kernel maintains for every block device.
func (s *SysfsTree) RegisterBlockDev(t *testing.T, major, minor uint32, dir string) {
	t.Helper()
	link := filepath.Join(s.Root, "dev", "block", fmt.Sprintf("%d:%d", major, minor))
	if err := os.Symlink(dir, link); err != nil {
		t.Fatalf("registering block device %d:%d: %v", major, minor, err)
	}
}

// NVMeTree builds the common single-controller topology: one NVMe
// controller with one namespace block device. It returns the tree, the
// controller directory and the namespace leaf.
func NVMeTree(t *testing.T) (*SysfsTree, string, string) {
	t.Helper()
	tree := NewSysfsTree(t)
	ctrl := tree.AddPCIController(t, NVMeController)
	leaf := tree.AddBlockLeaf(t, ctrl, "nvme", "nvme0", "nvme0n1")
	return tree, ctrl, leaf
}

// markPCI gives a directory the attributes the resolver uses to recognize
// a PCI device: the subsystem symlink and the identity attribute files.
func (s *SysfsTree) markPCI(t *testing.T, dir string, dev PCIDevice) {
	t.Helper()
	if err := os.Symlink(filepath.Join(s.Root, "bus", "pci"), filepath.Join(dir, "subsystem")); err != nil {
		t.Fatalf("linking subsystem for %s: %v", dev.BDF, err)
	}
	attrs := map[string]string{
		"vendor": dev.Vendor + "\n",
		"device": dev.Device + "\n",
		"class":  dev.Class + "\n",
	}
	for name, content := range attrs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing %s attribute for %s: %v", name, dev.BDF, err)
		}
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
}
