package commands

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocktrace/blocktrace-go/pkg/resolve"
	"github.com/blocktrace/blocktrace-go/pkg/wire"
)

func TestParseQueryArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    *QueryOptions
		wantErr bool
	}{
		{
			name: "plain",
			args: []string{"/dev/nvme0n1", "0", "4096"},
			want: &QueryOptions{Path: "/dev/nvme0n1", Offset: 0, Length: 4096},
		},
		{
			name: "flags before args",
			args: []string{"-json", "-socket", "/run/bt.sock", "/tmp/f", "10000", "50"},
			want: &QueryOptions{JSON: true, Socket: "/run/bt.sock", Path: "/tmp/f", Offset: 10000, Length: 50},
		},
		{
			name:    "missing length",
			args:    []string{"/tmp/f", "0"},
			wantErr: true,
		},
		{
			name:    "negative offset",
			args:    []string{"/tmp/f", "-5", "10"},
			wantErr: true,
		},
		{
			name:    "zero length",
			args:    []string{"/tmp/f", "0", "0"},
			wantErr: true,
		},
		{
			name:    "non-numeric offset",
			args:    []string{"/tmp/f", "abc", "10"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseQueryArgs(tc.args, io.Discard)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrintDevices(t *testing.T) {
	var buf bytes.Buffer
	printDevices(&buf, []wire.DeviceInfo{
		{
			VendorID:        0x144d,
			DeviceID:        0xa808,
			Bus:             3,
			Device:          0,
			Function:        0,
			Name:            "0000:03:00.0",
			FileOffsetStart: 10000,
			FileOffsetEnd:   10049,
			SectorStart:     16,
			SectorEnd:       23,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Found 1 PCIe device(s):")
	assert.Contains(t, out, "Name: 0000:03:00.0")
	assert.Contains(t, out, "Vendor ID: 0x144d")
	assert.Contains(t, out, "Device ID: 0xa808")
	assert.Contains(t, out, "Bus: 0x03")
	assert.Contains(t, out, "File Offset Range: 10000 - 10049 (length: 50)")
	assert.Contains(t, out, "Sector Range: 16 - 23")
}

func TestPrintQueryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unsupported", resolve.ErrUnsupported, "pseudo filesystem"},
		{"no device", resolve.ErrNoDevice, "No block device found"},
		{"bad handle", resolve.ErrBadHandle, "Invalid file descriptor"},
		{"block size", resolve.ErrInvalidConfiguration, "block size"},
		{"other", io.ErrUnexpectedEOF, "unexpected EOF"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			printQueryError(&buf, tc.err)
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestRunQueryBadArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := RunQuery([]string{"/tmp/f"}, &stdout, &stderr)
	assert.Equal(t, exitCommandError, code)
	assert.Contains(t, stderr.String(), "Error:")
}
