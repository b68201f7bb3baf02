//go:build !linux

package service

import (
	"errors"
	"log/slog"
	"os"

	"github.com/blocktrace/blocktrace-go/pkg/resolve"
	"github.com/blocktrace/blocktrace-go/pkg/wire"
)

// ErrUnsupportedPlatform is returned on platforms without unix-socket
// descriptor passing.
var ErrUnsupportedPlatform = errors.New("the resolution service requires Linux")

// QueryFunc resolves one query against an open file.
type QueryFunc func(f *os.File, q resolve.Query) (*resolve.Result, error)

// Config configures a Service.
type Config struct {
	SocketPath string
	Query      QueryFunc
	Logger     *slog.Logger
}

// Service is a placeholder on platforms without unix-socket descriptor
// passing. Start fails with ErrUnsupportedPlatform.
type Service struct{}

// New creates a placeholder Service.
func New(cfg Config) (*Service, error) {
	return &Service{}, nil
}

// Start fails with ErrUnsupportedPlatform.
func (s *Service) Start() error { return ErrUnsupportedPlatform }

// Stop releases nothing.
func (s *Service) Stop() error { return nil }

// Query fails with ErrUnsupportedPlatform.
func Query(socketPath string, f *os.File, offset int64, length uint64) (*wire.Response, error) {
	return nil, ErrUnsupportedPlatform
}
