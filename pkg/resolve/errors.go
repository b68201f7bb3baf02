package resolve

import "errors"

var (
	// ErrBadHandle means the supplied file reference could not be resolved.
	ErrBadHandle = errors.New("bad file handle")

	// ErrUnsupported means the file resides on a pseudo or network
	// filesystem; resolution is impossible by design, not transient.
	ErrUnsupported = errors.New("pseudo or network filesystem")

	// ErrNoDevice means no backing block device or device-hierarchy node
	// could be obtained for the file.
	ErrNoDevice = errors.New("no backing block device")

	// ErrInvalidConfiguration means the filesystem reported inconsistent
	// metadata, such as a block size smaller than a sector.
	ErrInvalidConfiguration = errors.New("inconsistent filesystem configuration")

	// ErrInvalidQuery means the byte range itself is malformed.
	ErrInvalidQuery = errors.New("invalid query")
)
