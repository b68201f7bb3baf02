//go:build linux

package service

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/blocktrace/blocktrace-go/pkg/wire"
)

// recvRequest reads one request and the descriptor passed alongside it.
// A well-formed request without a usable descriptor returns a nil file
// and no error; the caller answers with a bad-handle status.
func recvRequest(conn *net.UnixConn) (*wire.Request, *os.File, error) {
	buf := make([]byte, wire.RequestSize)
	oob := make([]byte, unix.CmsgSpace(4))

	n, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return nil, nil, fmt.Errorf("reading request: %w", err)
	}

	req, err := wire.DecodeRequest(buf[:n])
	if err != nil {
		closePassedFDs(oob[:oobn])
		return nil, nil, err
	}

	file := filePassedIn(oob[:oobn], req.FD)
	return req, file, nil
}

// filePassedIn extracts the single descriptor from ancillary data, if any.
func filePassedIn(oob []byte, fd int32) *os.File {
	fds, err := parsePassedFDs(oob)
	if err != nil || len(fds) == 0 {
		return nil
	}
	// Keep the first, close any extras.
	for _, extra := range fds[1:] {
		unix.Close(extra)
	}
	return os.NewFile(uintptr(fds[0]), fmt.Sprintf("passed-fd-%d", fd))
}

func parsePassedFDs(oob []byte) ([]int, error) {
	if len(oob) == 0 {
		return nil, nil
	}
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("parsing control message: %w", err)
	}
	var fds []int
	for _, msg := range msgs {
		got, err := unix.ParseUnixRights(&msg)
		if err != nil {
			continue
		}
		fds = append(fds, got...)
	}
	return fds, nil
}

func closePassedFDs(oob []byte) {
	fds, _ := parsePassedFDs(oob)
	for _, fd := range fds {
		unix.Close(fd)
	}
}

// sendRequest writes a request with the file's descriptor attached.
func sendRequest(conn *net.UnixConn, req *wire.Request, f *os.File) error {
	data, err := wire.EncodeRequest(req)
	if err != nil {
		return err
	}
	rights := unix.UnixRights(int(f.Fd()))
	if _, _, err := conn.WriteMsgUnix(data, rights, nil); err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	return nil
}
