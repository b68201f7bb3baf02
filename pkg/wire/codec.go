package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Fixed little-endian layout sizes.
//
// Request (24 bytes):
//
//	[0:4)   opcode  uint32
//	[4:8)   fd      int32
//	[8:16)  offset  int64
//	[16:24) length  uint64
//
// Response (8 + 16*104 = 1672 bytes):
//
//	[0]     status  uint8
//	[1:4)   reserved
//	[4:8)   count   int32
//	[8:)    devices, 16 records of deviceInfoSize bytes each
//
// Device record (104 bytes):
//
//	[0:2)    vendor id   uint16
//	[2:4)    device id   uint16
//	[4]      bus         uint8
//	[5]      device      uint8
//	[6]      function    uint8
//	[7]      reserved
//	[8:72)   name, NUL-terminated
//	[72:80)  file offset start  int64
//	[80:88)  file offset end    int64
//	[88:96)  sector start       int64
//	[96:104) sector end         int64
const (
	RequestSize    = 24
	deviceInfoSize = 104
	ResponseSize   = 8 + MaxDevices*deviceInfoSize
)

var (
	// ErrShortMessage means the buffer is not a complete message.
	ErrShortMessage = errors.New("short message")

	// ErrBadOpcode means the request carries an unknown opcode.
	ErrBadOpcode = errors.New("unknown opcode")
)

// EncodeRequest encodes a request to its fixed binary form.
func EncodeRequest(req *Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	buf := make([]byte, RequestSize)
	binary.LittleEndian.PutUint32(buf[0:4], OpcodeResolve)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(req.FD))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(req.Offset))
	binary.LittleEndian.PutUint64(buf[16:24], req.Length)
	return buf, nil
}

// DecodeRequest decodes the fixed binary form of a request. The byte range
// is not validated here; the service reports range problems through a
// status code rather than a decode failure.
func DecodeRequest(data []byte) (*Request, error) {
	if len(data) < RequestSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrShortMessage, len(data), RequestSize)
	}
	opcode := binary.LittleEndian.Uint32(data[0:4])
	if opcode != OpcodeResolve {
		return nil, fmt.Errorf("%w: %#x", ErrBadOpcode, opcode)
	}
	return &Request{
		FD:     int32(binary.LittleEndian.Uint32(data[4:8])),
		Offset: int64(binary.LittleEndian.Uint64(data[8:16])),
		Length: binary.LittleEndian.Uint64(data[16:24]),
	}, nil
}

// EncodeResponse encodes a response to its fixed binary form. Device names
// longer than MaxNameLen bytes are truncated.
func EncodeResponse(resp *Response) ([]byte, error) {
	if resp.Count < 0 || resp.Count > MaxDevices {
		return nil, fmt.Errorf("device count %d out of range", resp.Count)
	}
	buf := make([]byte, ResponseSize)
	buf[0] = byte(resp.Status)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(resp.Count))
	for i := 0; i < int(resp.Count); i++ {
		encodeDeviceInfo(buf[8+i*deviceInfoSize:], &resp.Devices[i])
	}
	return buf, nil
}

// DecodeResponse decodes the fixed binary form of a response.
func DecodeResponse(data []byte) (*Response, error) {
	if len(data) < ResponseSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrShortMessage, len(data), ResponseSize)
	}
	resp := &Response{
		Status: Status(data[0]),
		Count:  int32(binary.LittleEndian.Uint32(data[4:8])),
	}
	if resp.Count < 0 || resp.Count > MaxDevices {
		return nil, fmt.Errorf("device count %d out of range", resp.Count)
	}
	for i := 0; i < int(resp.Count); i++ {
		decodeDeviceInfo(data[8+i*deviceInfoSize:], &resp.Devices[i])
	}
	return resp, nil
}

func encodeDeviceInfo(buf []byte, d *DeviceInfo) {
	binary.LittleEndian.PutUint16(buf[0:2], d.VendorID)
	binary.LittleEndian.PutUint16(buf[2:4], d.DeviceID)
	buf[4] = d.Bus
	buf[5] = d.Device
	buf[6] = d.Function

	name := d.Name
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	copy(buf[8:8+MaxNameLen], name)

	binary.LittleEndian.PutUint64(buf[72:80], uint64(d.FileOffsetStart))
	binary.LittleEndian.PutUint64(buf[80:88], uint64(d.FileOffsetEnd))
	binary.LittleEndian.PutUint64(buf[88:96], uint64(d.SectorStart))
	binary.LittleEndian.PutUint64(buf[96:104], uint64(d.SectorEnd))
}

func decodeDeviceInfo(buf []byte, d *DeviceInfo) {
	d.VendorID = binary.LittleEndian.Uint16(buf[0:2])
	d.DeviceID = binary.LittleEndian.Uint16(buf[2:4])
	d.Bus = buf[4]
	d.Device = buf[5]
	d.Function = buf[6]

	nameField := buf[8 : 8+MaxNameLen+1]
	if i := bytes.IndexByte(nameField, 0); i >= 0 {
		nameField = nameField[:i]
	}
	d.Name = string(nameField)

	d.FileOffsetStart = int64(binary.LittleEndian.Uint64(buf[72:80]))
	d.FileOffsetEnd = int64(binary.LittleEndian.Uint64(buf[80:88]))
	d.SectorStart = int64(binary.LittleEndian.Uint64(buf[88:96]))
	d.SectorEnd = int64(binary.LittleEndian.Uint64(buf[96:104]))
}
