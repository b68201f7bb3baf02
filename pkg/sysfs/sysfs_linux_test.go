//go:build linux

package sysfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocktrace/blocktrace-go/internal/testharness"
	"github.com/blocktrace/blocktrace-go/pkg/devtree"
	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
	"github.com/blocktrace/blocktrace-go/pkg/sector"
)

// buildFakeSysfs builds the single-controller topology and returns the
// devices root and the block device leaf directory.
func buildFakeSysfs(t *testing.T) (devicesRoot, leaf string) {
	t.Helper()
	tree, _, leaf := testharness.NVMeTree(t)
	return tree.DevicesRoot(), leaf
}

func TestNodeWalkFindsController(t *testing.T) {
	devicesRoot, leaf := buildFakeSysfs(t)

	start := &node{path: leaf, root: devicesRoot}
	sectors := sector.Range{Start: 0, End: 7}
	endpoints := devtree.Walk(start, devtree.NVMe, 0, 4095, sectors)

	require.Len(t, endpoints, 1)
	ep := endpoints[0]
	assert.Equal(t, uint16(0x144d), ep.VendorID)
	assert.Equal(t, uint16(0xa808), ep.DeviceID)
	assert.Equal(t, uint8(3), ep.Bus)
	assert.Equal(t, uint8(0), ep.Device)
	assert.Equal(t, uint8(0), ep.Function)
	assert.Equal(t, "0000:03:00.0", ep.Name)
	assert.Equal(t, sectors, ep.Sectors)
}

func TestNodeParentStopsAtDevicesRoot(t *testing.T) {
	devicesRoot, leaf := buildFakeSysfs(t)

	var steps int
	var n devtree.Node = &node{path: leaf, root: devicesRoot}
	for n != nil {
		steps++
		require.Less(t, steps, 32, "parent chain did not terminate")
		n = n.Parent()
	}
	// nvme0n1, nvme0, nvme, controller, pci root: five nodes, then nil.
	assert.Equal(t, 5, steps)
}

func TestNodeValidDetectsRemoval(t *testing.T) {
	devicesRoot, leaf := buildFakeSysfs(t)

	n := &node{path: leaf, root: devicesRoot}
	assert.True(t, n.Valid())

	// Hot-unplug: the directory disappears mid-walk.
	require.NoError(t, os.RemoveAll(leaf))
	assert.False(t, n.Valid())

	// A path escaping the devices tree is implausible even if it exists.
	outside := &node{path: filepath.Dir(devicesRoot), root: devicesRoot}
	assert.False(t, outside.Valid())
}

func TestPCIOnNonPCINode(t *testing.T) {
	devicesRoot, leaf := buildFakeSysfs(t)

	// The block device directory has no pci subsystem link.
	n := &node{path: leaf, root: devicesRoot}
	_, ok := n.PCI()
	assert.False(t, ok)
}

func TestParseBDF(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		bus     uint8
		dev     uint8
		fn      uint8
		wantErr bool
	}{
		{"typical", "0000:03:00.0", 3, 0, 0, false},
		{"nonzero function", "0000:17:1f.7", 0x17, 0x1f, 7, false},
		{"device out of range", "0000:00:20.0", 0, 0, 0, true},
		{"function out of range", "0000:00:00.8", 0, 0, 0, true},
		{"not an address", "nvme0n1", 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, dev, fn, err := parseBDF(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bus, bus)
			assert.Equal(t, tt.dev, dev)
			assert.Equal(t, tt.fn, fn)
		})
	}
}

func TestFsTypeName(t *testing.T) {
	tests := []struct {
		magic int64
		want  string
	}{
		{magicExt, "ext4"},
		{magicTmpfs, "tmpfs"},
		{magicNFS, "nfs"},
		{magicBtrfs, "btrfs"},
		{0x12345678, "unknown(0x12345678)"},
	}
	for _, tt := range tests {
		if got := fsTypeName(tt.magic); got != tt.want {
			t.Errorf("fsTypeName(%#x) = %q, want %q", tt.magic, got, tt.want)
		}
	}
}

func TestMetaRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "meta")
	require.NoError(t, err)
	defer f.Close()

	h := FromFile(f)
	meta, err := h.Meta()
	require.NoError(t, err)

	assert.Equal(t, fsclass.KindRegular, meta.Kind)
	assert.NotEmpty(t, meta.FSType)
	assert.Greater(t, meta.BlockSize, int64(0))
}

func TestMetaCharDevice(t *testing.T) {
	f, err := os.Open("/dev/null")
	require.NoError(t, err)
	defer f.Close()

	meta, err := FromFile(f).Meta()
	require.NoError(t, err)
	assert.Equal(t, fsclass.KindOther, meta.Kind)
}
