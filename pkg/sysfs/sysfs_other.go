//go:build !linux

package sysfs

import (
	"errors"
	"os"

	"github.com/blocktrace/blocktrace-go/pkg/devtree"
	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
)

// ErrUnsupportedPlatform is returned on platforms without sysfs.
var ErrUnsupportedPlatform = errors.New("file-to-device resolution requires Linux")

// Handle is a placeholder on platforms without sysfs. Every method fails
// with ErrUnsupportedPlatform.
type Handle struct {
	path string
}

// Open fails with ErrUnsupportedPlatform.
func Open(string) (*Handle, error) {
	return nil, ErrUnsupportedPlatform
}

// FromFile returns a handle whose methods fail with ErrUnsupportedPlatform.
func FromFile(f *os.File) *Handle {
	return &Handle{path: f.Name()}
}

// WithSysRoot returns the handle unchanged.
func (h *Handle) WithSysRoot(string) *Handle { return h }

// Close releases nothing.
func (h *Handle) Close() error { return nil }

// Path returns the display path of the file.
func (h *Handle) Path() string { return h.path }

// Meta fails with ErrUnsupportedPlatform.
func (h *Handle) Meta() (fsclass.FileMeta, error) {
	return fsclass.FileMeta{}, ErrUnsupportedPlatform
}

// Device fails with ErrUnsupportedPlatform.
func (h *Handle) Device() (devtree.Node, error) {
	return nil, ErrUnsupportedPlatform
}
