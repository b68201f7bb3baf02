package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the call completed, possibly with zero
	// discovered devices.
	StatusSuccess Status = 0

	// StatusBadHandle indicates the file descriptor could not be resolved.
	StatusBadHandle Status = 1

	// StatusUnsupported indicates the file is on a pseudo or network
	// filesystem.
	StatusUnsupported Status = 2

	// StatusNoDevice indicates no backing block device was found.
	StatusNoDevice Status = 3

	// StatusInvalidConfiguration indicates inconsistent filesystem
	// metadata (block size smaller than a sector).
	StatusInvalidConfiguration Status = 4

	// StatusInvalidQuery indicates a malformed byte range.
	StatusInvalidQuery Status = 5

	// StatusInternal indicates an unexpected service-side failure.
	StatusInternal Status = 6
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusBadHandle:
		return "BAD_HANDLE"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusNoDevice:
		return "NO_DEVICE"
	case StatusInvalidConfiguration:
		return "INVALID_CONFIGURATION"
	case StatusInvalidQuery:
		return "INVALID_QUERY"
	case StatusInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}
