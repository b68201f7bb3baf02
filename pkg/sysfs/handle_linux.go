//go:build linux

package sysfs

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/blocktrace/blocktrace-go/pkg/devtree"
	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
)

// DefaultSysRoot is the mount point of sysfs.
const DefaultSysRoot = "/sys"

// Handle adapts an open file to the resolver's Handle interface.
// It borrows the file; Close releases it only when Open created it.
type Handle struct {
	f       *os.File
	path    string
	sysRoot string
	owned   bool
}

// Open opens the file at path for resolution. The returned handle owns the
// descriptor; release it with Close.
func Open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	h := FromFile(f)
	h.owned = true
	return h, nil
}

// FromFile wraps an already-open file. The caller keeps ownership of f and
// must keep it open for the lifetime of the handle.
func FromFile(f *os.File) *Handle {
	return &Handle{
		f:       f,
		path:    f.Name(),
		sysRoot: DefaultSysRoot,
	}
}

// WithSysRoot redirects sysfs lookups to an alternate mount point. Useful
// for chroot-like environments and for tests running against a constructed
// tree. It returns the handle for chaining.
func (h *Handle) WithSysRoot(root string) *Handle {
	h.sysRoot = root
	return h
}

// Close releases the descriptor if this handle owns it.
func (h *Handle) Close() error {
	if !h.owned {
		return nil
	}
	return h.f.Close()
}

// Path returns the display path of the file.
func (h *Handle) Path() string {
	return h.path
}

// Meta returns the file's storage metadata at call time. Nothing is cached:
// repeated calls observe the current state.
func (h *Handle) Meta() (fsclass.FileMeta, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(h.f.Fd()), &st); err != nil {
		return fsclass.FileMeta{}, fmt.Errorf("fstat %s: %w", h.path, err)
	}

	var meta fsclass.FileMeta
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFBLK:
		meta.Kind = fsclass.KindBlockDevice
		return meta, nil
	case unix.S_IFREG:
		meta.Kind = fsclass.KindRegular
	default:
		meta.Kind = fsclass.KindOther
		return meta, nil
	}

	var sfs unix.Statfs_t
	if err := unix.Fstatfs(int(h.f.Fd()), &sfs); err != nil {
		return fsclass.FileMeta{}, fmt.Errorf("fstatfs %s: %w", h.path, err)
	}
	meta.FSType = fsTypeName(int64(sfs.Type))
	meta.BlockSize = int64(sfs.Bsize)
	meta.HasBackingDevice = h.blockDevRegistered(st.Dev)
	return meta, nil
}

// Device returns the sysfs node of the file's backing block device: the
// device node itself for block device files, the containing filesystem's
// device for regular files.
func (h *Handle) Device() (devtree.Node, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(h.f.Fd()), &st); err != nil {
		return nil, fmt.Errorf("fstat %s: %w", h.path, err)
	}

	var dev uint64
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFBLK:
		dev = uint64(st.Rdev)
	case unix.S_IFREG:
		dev = uint64(st.Dev)
	default:
		return nil, fmt.Errorf("%s: inode type has no backing device", h.path)
	}

	link := h.blockDevLink(dev)
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return nil, fmt.Errorf("device %d:%d not registered in sysfs: %w",
			unix.Major(dev), unix.Minor(dev), err)
	}
	return &node{
		path: resolved,
		root: filepath.Join(h.sysRoot, "devices"),
	}, nil
}

// blockDevLink returns the /sys/dev/block symlink for a device number.
func (h *Handle) blockDevLink(dev uint64) string {
	return filepath.Join(h.sysRoot, "dev", "block",
		fmt.Sprintf("%d:%d", unix.Major(dev), unix.Minor(dev)))
}

// blockDevRegistered reports whether a device number is registered as a
// block device. Pseudo filesystems live on anonymous device numbers that
// are not.
func (h *Handle) blockDevRegistered(dev uint64) bool {
	_, err := os.Stat(h.blockDevLink(dev))
	return err == nil
}
