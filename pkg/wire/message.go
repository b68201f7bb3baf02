package wire

import "fmt"

// OpcodeResolve identifies the single control call: resolve a file byte
// range to transport endpoints. Encoded as magic 'f' in the high byte and
// function number 1 in the low byte.
const OpcodeResolve uint32 = 'f'<<8 | 1

// MaxDevices is the fixed capacity of a response's device table.
const MaxDevices = 16

// MaxNameLen is the longest endpoint display name a response can carry.
// Names are encoded as 64-byte NUL-terminated fields.
const MaxNameLen = 63

// Request asks the service to resolve a byte range of an open file.
type Request struct {
	// FD is the descriptor number in the sender's process. The usable
	// descriptor travels out of band; this value is diagnostic.
	FD int32

	// Offset is the starting byte offset, >= 0.
	Offset int64

	// Length is the byte count, > 0.
	Length uint64
}

// Validate checks the request's byte range.
func (r *Request) Validate() error {
	if r.Offset < 0 {
		return fmt.Errorf("negative offset %d", r.Offset)
	}
	if r.Length == 0 {
		return fmt.Errorf("zero length")
	}
	return nil
}

// DeviceInfo is one discovered transport endpoint in a response.
type DeviceInfo struct {
	VendorID uint16
	DeviceID uint16
	Bus      uint8
	Device   uint8
	Function uint8

	// Name is the endpoint display name, at most MaxNameLen bytes.
	Name string

	// FileOffsetStart and FileOffsetEnd are the inclusive byte range of
	// the query served by this endpoint.
	FileOffsetStart int64
	FileOffsetEnd   int64

	// SectorStart and SectorEnd are the inclusive device sector range.
	SectorStart int64
	SectorEnd   int64
}

// Response carries the outcome of a resolve call. Count says how many
// entries of Devices are populated; the remainder are zero.
type Response struct {
	Status Status
	Count  int32
	Devices [MaxDevices]DeviceInfo
}

// IsSuccess reports whether the response indicates success.
// Zero populated devices with StatusSuccess is a valid outcome.
func (r *Response) IsSuccess() bool {
	return r.Status == StatusSuccess
}
