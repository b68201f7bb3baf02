//go:build linux

package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/blocktrace/blocktrace-go/pkg/resolve"
	"github.com/blocktrace/blocktrace-go/pkg/sysfs"
	"github.com/blocktrace/blocktrace-go/pkg/wire"
)

// QueryFunc resolves one query against an open file. The service owns f
// for the duration of the call and closes it afterwards.
type QueryFunc func(f *os.File, q resolve.Query) (*resolve.Result, error)

// Config configures a Service.
type Config struct {
	// SocketPath is where the unix socket is created.
	SocketPath string

	// Query handles resolution. Nil selects resolution over sysfs with
	// default resolver options.
	Query QueryFunc

	// Logger receives operational log output. Nil selects slog.Default.
	Logger *slog.Logger
}

// Service accepts resolve calls on a unix socket.
type Service struct {
	cfg Config
	ln  *net.UnixListener

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a Service. The socket is not created until Start.
func New(cfg Config) (*Service, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if cfg.Query == nil {
		resolver := resolve.New(resolve.Options{})
		cfg.Query = func(f *os.File, q resolve.Query) (*resolve.Result, error) {
			return resolver.Resolve(sysfs.FromFile(f), q)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{cfg: cfg}, nil
}

// Start creates the socket and begins accepting calls.
func (s *Service) Start() error {
	addr := &net.UnixAddr{Name: s.cfg.SocketPath, Net: "unix"}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.SocketPath, err)
	}
	s.ln = ln
	s.cfg.Logger.Info("service started", "socket", s.cfg.SocketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the socket and waits for in-flight calls to finish.
// It is safe to call Stop multiple times.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.ln.Close()
	s.wg.Wait()
	s.cfg.Logger.Info("service stopped", "socket", s.cfg.SocketPath)
	return err
}

func (s *Service) stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Service) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.AcceptUnix()
		if err != nil {
			if !s.stopping() {
				s.cfg.Logger.Error("accept failed", "error", err)
			}
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn serves exactly one resolve call.
func (s *Service) handleConn(conn *net.UnixConn) {
	defer conn.Close()

	req, file, err := recvRequest(conn)
	if err != nil {
		s.cfg.Logger.Warn("unreadable request", "error", err)
		s.respond(conn, &wire.Response{Status: wire.StatusInvalidQuery})
		return
	}
	if file == nil {
		s.respond(conn, &wire.Response{Status: wire.StatusBadHandle})
		return
	}
	defer file.Close()

	result, err := s.cfg.Query(file, resolve.Query{Offset: req.Offset, Length: req.Length})
	if err != nil {
		s.cfg.Logger.Debug("query failed", "fd", req.FD, "error", err)
		s.respond(conn, &wire.Response{Status: statusFor(err)})
		return
	}

	s.respond(conn, responseFrom(result))
}

func (s *Service) respond(conn *net.UnixConn, resp *wire.Response) {
	data, err := wire.EncodeResponse(resp)
	if err != nil {
		s.cfg.Logger.Error("encoding response", "error", err)
		return
	}
	if _, err := conn.Write(data); err != nil {
		s.cfg.Logger.Warn("writing response", "error", err)
	}
}

// responseFrom flattens a resolution result into the wire shape.
func responseFrom(result *resolve.Result) *wire.Response {
	resp := &wire.Response{Status: wire.StatusSuccess}
	for _, ep := range result.Endpoints {
		if resp.Count == wire.MaxDevices {
			break
		}
		resp.Devices[resp.Count] = wire.DeviceInfo{
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
		resp.Count++
	}
	return resp
}

// statusFor maps resolver errors onto wire status codes.
func statusFor(err error) wire.Status {
	switch {
	case errors.Is(err, resolve.ErrBadHandle):
		return wire.StatusBadHandle
	case errors.Is(err, resolve.ErrUnsupported):
		return wire.StatusUnsupported
	case errors.Is(err, resolve.ErrNoDevice):
		return wire.StatusNoDevice
	case errors.Is(err, resolve.ErrInvalidConfiguration):
		return wire.StatusInvalidConfiguration
	case errors.Is(err, resolve.ErrInvalidQuery):
		return wire.StatusInvalidQuery
	default:
		return wire.StatusInternal
	}
}
