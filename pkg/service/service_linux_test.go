//go:build linux

package service_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocktrace/blocktrace-go/pkg/devtree"
	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
	"github.com/blocktrace/blocktrace-go/pkg/resolve"
	"github.com/blocktrace/blocktrace-go/pkg/sector"
	"github.com/blocktrace/blocktrace-go/pkg/service"
	"github.com/blocktrace/blocktrace-go/pkg/wire"
)

func startService(t *testing.T, query service.QueryFunc) string {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "blocktrace.sock")
	svc, err := service.New(service.Config{
		SocketPath: socketPath,
		Query:      query,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Start())
	t.Cleanup(func() { _ = svc.Stop() })
	return socketPath
}

func queryFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestServiceRoundTrip(t *testing.T) {
	var gotQuery resolve.Query
	socketPath := startService(t, func(f *os.File, q resolve.Query) (*resolve.Result, error) {
		gotQuery = q
		return &resolve.Result{
			Class:   fsclass.ClassDiskFilesystem,
			Sectors: sector.Range{Start: 16, End: 23},
			Endpoints: []devtree.Endpoint{
				{
					PCIIdentity: devtree.PCIIdentity{
						VendorID: 0x144d,
						DeviceID: 0xa808,
						Bus:      3,
						Device:   0,
						Function: 0,
						Name:     "0000:03:00.0",
					},
					FileStart: q.Offset,
					FileEnd:   q.End(),
					Sectors:   sector.Range{Start: 16, End: 23},
				},
			},
		}, nil
	})

	f := queryFile(t, "payload")
	resp, err := service.Query(socketPath, f, 10000, 50)
	require.NoError(t, err)

	assert.Equal(t, wire.StatusSuccess, resp.Status)
	assert.Equal(t, int64(10000), gotQuery.Offset)
	assert.Equal(t, uint64(50), gotQuery.Length)

	require.Equal(t, int32(1), resp.Count)
	dev := resp.Devices[0]
	assert.Equal(t, uint16(0x144d), dev.VendorID)
	assert.Equal(t, uint16(0xa808), dev.DeviceID)
	assert.Equal(t, uint8(3), dev.Bus)
	assert.Equal(t, "0000:03:00.0", dev.Name)
	assert.Equal(t, int64(10000), dev.FileOffsetStart)
	assert.Equal(t, int64(10049), dev.FileOffsetEnd)
	assert.Equal(t, int64(16), dev.SectorStart)
	assert.Equal(t, int64(23), dev.SectorEnd)
}

// The descriptor that arrives server side must refer to the client's
// open file, not merely carry its number.
func TestServicePassesDescriptor(t *testing.T) {
	const content = "sector payload"
	socketPath := startService(t, func(f *os.File, q resolve.Query) (*resolve.Result, error) {
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
		return &resolve.Result{Class: fsclass.ClassDiskFilesystem}, nil
	})

	f := queryFile(t, content)
	resp, err := service.Query(socketPath, f, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, wire.StatusSuccess, resp.Status)
	assert.Equal(t, int32(0), resp.Count)
}

func TestServiceErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		queryErr   error
		wantStatus wire.Status
		wantErr    error
	}{
		{"unsupported", resolve.ErrUnsupported, wire.StatusUnsupported, resolve.ErrUnsupported},
		{"no device", resolve.ErrNoDevice, wire.StatusNoDevice, resolve.ErrNoDevice},
		{"bad handle", resolve.ErrBadHandle, wire.StatusBadHandle, resolve.ErrBadHandle},
		{"invalid configuration", resolve.ErrInvalidConfiguration, wire.StatusInvalidConfiguration, resolve.ErrInvalidConfiguration},
		{"invalid query", resolve.ErrInvalidQuery, wire.StatusInvalidQuery, resolve.ErrInvalidQuery},
		{"internal", io.ErrUnexpectedEOF, wire.StatusInternal, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			socketPath := startService(t, func(f *os.File, q resolve.Query) (*resolve.Result, error) {
				return nil, tc.queryErr
			})

			f := queryFile(t, "x")
			resp, err := service.Query(socketPath, f, 0, 1)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.wantStatus, resp.Status)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestServiceStopIdempotent(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "blocktrace.sock")
	svc, err := service.New(service.Config{
		SocketPath: socketPath,
		Query: func(f *os.File, q resolve.Query) (*resolve.Result, error) {
			return &resolve.Result{}, nil
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())
	assert.NoError(t, svc.Stop())
}

func TestNewRequiresSocketPath(t *testing.T) {
	_, err := service.New(service.Config{})
	assert.Error(t, err)
}
