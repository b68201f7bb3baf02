//go:build linux

package service

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/blocktrace/blocktrace-go/pkg/resolve"
	"github.com/blocktrace/blocktrace-go/pkg/wire"
)

// Query performs one resolve call against the service at socketPath.
// The caller keeps ownership of f; only a duplicate descriptor travels
// over the socket. Error statuses come back as the matching resolve
// sentinel errors.
func Query(socketPath string, f *os.File, offset int64, length uint64) (*wire.Response, error) {
	addr := &net.UnixAddr{Name: socketPath, Net: "unix"}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", socketPath, err)
	}
	defer conn.Close()

	req := &wire.Request{FD: int32(f.Fd()), Offset: offset, Length: length}
	if err := sendRequest(conn, req, f); err != nil {
		return nil, err
	}

	buf := make([]byte, wire.ResponseSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	resp, err := wire.DecodeResponse(buf)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return resp, statusError(resp.Status)
	}
	return resp, nil
}

// statusError maps a wire status back onto the resolve sentinel it
// originated from.
func statusError(status wire.Status) error {
	switch status {
	case wire.StatusBadHandle:
		return resolve.ErrBadHandle
	case wire.StatusUnsupported:
		return resolve.ErrUnsupported
	case wire.StatusNoDevice:
		return resolve.ErrNoDevice
	case wire.StatusInvalidConfiguration:
		return resolve.ErrInvalidConfiguration
	case wire.StatusInvalidQuery:
		return resolve.ErrInvalidQuery
	default:
		return errors.New("service reported an internal error")
	}
}
