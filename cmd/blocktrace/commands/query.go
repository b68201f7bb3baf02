package commands

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/blocktrace/blocktrace-go/pkg/devtree"
	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
	"github.com/blocktrace/blocktrace-go/pkg/log"
	"github.com/blocktrace/blocktrace-go/pkg/resolve"
	"github.com/blocktrace/blocktrace-go/pkg/service"
	"github.com/blocktrace/blocktrace-go/pkg/sysfs"
	"github.com/blocktrace/blocktrace-go/pkg/wire"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

// QueryOptions configures the query command.
type QueryOptions struct {
	JSON      bool
	TablePath string
	TracePath string
	Socket    string

	Path   string
	Offset int64
	Length uint64
}

// RunQuery runs the query command.
func RunQuery(args []string, stdout, stderr io.Writer) int {
	opts, err := parseQueryArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	devices, class, err := runQuery(opts)
	if err != nil {
		printQueryError(stderr, err)
		return exitCommandError
	}

	if opts.JSON {
		printQueryJSON(stdout, opts, class, devices)
		return exitSuccess
	}

	fmt.Fprintf(stdout, "Querying devices for:\n")
	fmt.Fprintf(stdout, "  File: %s\n", opts.Path)
	fmt.Fprintf(stdout, "  Offset: %d\n", opts.Offset)
	fmt.Fprintf(stdout, "  Length: %d\n\n", opts.Length)

	if len(devices) == 0 {
		fmt.Fprintln(stdout, "No PCIe devices found for this file segment.")
		fmt.Fprintln(stdout, "The file is on a block device, but the device is not connected via PCIe")
		fmt.Fprintln(stdout, "(e.g., USB, SCSI, or other bus types).")
		return exitSuccess
	}

	printDevices(stdout, devices)
	return exitSuccess
}

func parseQueryArgs(args []string, stderr io.Writer) (*QueryOptions, error) {
	opts := &QueryOptions{}

	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.StringVar(&opts.TablePath, "table", "", "Classification table file (YAML)")
	fs.StringVar(&opts.TracePath, "trace", "", "Append trace events to this file (CBOR)")
	fs.StringVar(&opts.Socket, "socket", "", "Query a running service at this unix socket")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: blocktrace query [options] <file> <offset> <length>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) != 3 {
		fs.Usage()
		return nil, fmt.Errorf("expected <file> <offset> <length>, got %d arguments", len(rest))
	}
	opts.Path = rest[0]

	offset, err := strconv.ParseInt(rest[1], 10, 64)
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("offset must be a non-negative integer, got %q", rest[1])
	}
	opts.Offset = offset

	length, err := strconv.ParseUint(rest[2], 10, 64)
	if err != nil || length == 0 {
		return nil, fmt.Errorf("length must be a positive integer, got %q", rest[2])
	}
	opts.Length = length

	return opts, nil
}

// runQuery resolves either locally over sysfs or through a running service.
func runQuery(opts *QueryOptions) ([]wire.DeviceInfo, fsclass.Class, error) {
	if opts.Socket != "" {
		return querySocket(opts)
	}
	return queryLocal(opts)
}

func querySocket(opts *QueryOptions) ([]wire.DeviceInfo, fsclass.Class, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, fsclass.ClassUnknown, fmt.Errorf("%w: %v", resolve.ErrBadHandle, err)
	}
	defer f.Close()

	resp, err := service.Query(opts.Socket, f, opts.Offset, opts.Length)
	if err != nil {
		return nil, fsclass.ClassUnknown, err
	}
	return resp.Devices[:resp.Count], fsclass.ClassUnknown, nil
}

func queryLocal(opts *QueryOptions) ([]wire.DeviceInfo, fsclass.Class, error) {
	resolverOpts := resolve.Options{}

	if opts.TablePath != "" {
		table, err := fsclass.LoadTable(opts.TablePath)
		if err != nil {
			return nil, fsclass.ClassUnknown, err
		}
		resolverOpts.Table = table
	}

	if opts.TracePath != "" {
		tracer, err := log.NewFileLogger(opts.TracePath)
		if err != nil {
			return nil, fsclass.ClassUnknown, err
		}
		defer tracer.Close()
		resolverOpts.Logger = tracer
	}

	h, err := sysfs.Open(opts.Path)
	if err != nil {
		return nil, fsclass.ClassUnknown, fmt.Errorf("%w: %v", resolve.ErrBadHandle, err)
	}
	defer h.Close()

	result, err := resolve.New(resolverOpts).Resolve(h, resolve.Query{
		Offset: opts.Offset,
		Length: opts.Length,
	})
	if err != nil {
		return nil, fsclass.ClassUnknown, err
	}

	devices := make([]wire.DeviceInfo, 0, len(result.Endpoints))
	for _, ep := range result.Endpoints {
		devices = append(devices, deviceInfo(ep))
	}
	return devices, result.Class, nil
}

func deviceInfo(ep devtree.Endpoint) wire.DeviceInfo {
	return wire.DeviceInfo{
		VendorID:        ep.VendorID,
		DeviceID:        ep.DeviceID,
		Bus:             ep.Bus,
		Device:          ep.Device,
		Function:        ep.Function,
		Name:            ep.Name,
		FileOffsetStart: ep.FileStart,
		FileOffsetEnd:   ep.FileEnd,
		SectorStart:     ep.Sectors.Start,
		SectorEnd:       ep.Sectors.End,
	}
}

func printDevices(w io.Writer, devices []wire.DeviceInfo) {
	fmt.Fprintf(w, "Found %d PCIe device(s):\n", len(devices))
	fmt.Fprintln(w, "----------------------------------------")
	for i, dev := range devices {
		fmt.Fprintf(w, "Device %d:\n", i+1)
		fmt.Fprintf(w, "  Name: %s\n", dev.Name)
		fmt.Fprintf(w, "  Vendor ID: 0x%04x\n", dev.VendorID)
		fmt.Fprintf(w, "  Device ID: 0x%04x\n", dev.DeviceID)
		fmt.Fprintf(w, "  Bus: 0x%02x\n", dev.Bus)
		fmt.Fprintf(w, "  Device: 0x%02x\n", dev.Device)
		fmt.Fprintf(w, "  Function: 0x%02x\n", dev.Function)
		fmt.Fprintf(w, "  File Offset Range: %d - %d (length: %d)\n",
			dev.FileOffsetStart, dev.FileOffsetEnd,
			dev.FileOffsetEnd-dev.FileOffsetStart+1)
		fmt.Fprintf(w, "  Sector Range: %d - %d\n", dev.SectorStart, dev.SectorEnd)
		fmt.Fprintln(w)
	}
}

// printQueryError explains resolver failures in operator terms.
func printQueryError(w io.Writer, err error) {
	switch {
	case errors.Is(err, resolve.ErrUnsupported):
		fmt.Fprintln(w, "Error: File is on a pseudo filesystem (proc, sysfs, tmpfs, etc.) or network filesystem (NFS, CIFS, etc.).")
		fmt.Fprintln(w, "This operation is not supported for these filesystem types.")
	case errors.Is(err, resolve.ErrNoDevice):
		fmt.Fprintln(w, "Error: No block device found for this file.")
		fmt.Fprintln(w, "The file may be on a virtual filesystem without a backing block device.")
	case errors.Is(err, resolve.ErrBadHandle):
		fmt.Fprintln(w, "Error: Invalid file descriptor.")
	case errors.Is(err, resolve.ErrInvalidConfiguration):
		fmt.Fprintln(w, "Error: The filesystem block size cannot be mapped to 512-byte sectors.")
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

// QueryOutput is the JSON shape of a query result.
type QueryOutput struct {
	File    string         `json:"file"`
	Offset  int64          `json:"offset"`
	Length  uint64         `json:"length"`
	Class   string         `json:"class,omitempty"`
	Devices []DeviceOutput `json:"devices"`
}

// DeviceOutput is the JSON shape of one discovered device.
type DeviceOutput struct {
	Name            string `json:"name"`
	VendorID        string `json:"vendor_id"`
	DeviceID        string `json:"device_id"`
	Bus             uint8  `json:"bus"`
	Device          uint8  `json:"device"`
	Function        uint8  `json:"function"`
	FileOffsetStart int64  `json:"file_offset_start"`
	FileOffsetEnd   int64  `json:"file_offset_end"`
	SectorStart     int64  `json:"sector_start"`
	SectorEnd       int64  `json:"sector_end"`
}

func printQueryJSON(w io.Writer, opts *QueryOptions, class fsclass.Class, devices []wire.DeviceInfo) {
	out := QueryOutput{
		File:    opts.Path,
		Offset:  opts.Offset,
		Length:  opts.Length,
		Devices: make([]DeviceOutput, 0, len(devices)),
	}
	if class != fsclass.ClassUnknown {
		out.Class = class.String()
	}
	for _, dev := range devices {
		out.Devices = append(out.Devices, DeviceOutput{
			Name:            dev.Name,
			VendorID:        fmt.Sprintf("0x%04x", dev.VendorID),
			DeviceID:        fmt.Sprintf("0x%04x", dev.DeviceID),
			Bus:             dev.Bus,
			Device:          dev.Device,
			Function:        dev.Function,
			FileOffsetStart: dev.FileOffsetStart,
			FileOffsetEnd:   dev.FileOffsetEnd,
			SectorStart:     dev.SectorStart,
			SectorEnd:       dev.SectorEnd,
		})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(w, string(data))
}
