// blocktraced serves file-to-device resolution queries on a unix socket.
//
// Clients connect, send one request with the file descriptor attached,
// and receive one response. See the blocktrace CLI's -socket flag for a
// ready-made client.
//
// Usage:
//
//	blocktraced [flags]
//
// Flags:
//
//	-socket string     Unix socket path (default "/run/blocktraced.sock")
//	-table string      Classification table file (YAML)
//	-trace string      Append trace events to this file (CBOR)
//	-log-level string  Log level: debug, info, warn, error (default "info")
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
	"github.com/blocktrace/blocktrace-go/pkg/log"
	"github.com/blocktrace/blocktrace-go/pkg/resolve"
	"github.com/blocktrace/blocktrace-go/pkg/service"
	"github.com/blocktrace/blocktrace-go/pkg/sysfs"
	"github.com/blocktrace/blocktrace-go/pkg/version"
)

func main() {
	socketPath := flag.String("socket", "/run/blocktraced.sock", "Unix socket path")
	tablePath := flag.String("table", "", "Classification table file (YAML)")
	tracePath := flag.String("trace", "", "Append trace events to this file (CBOR)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))
	logger.Info("blocktraced starting", "version", version.Tool)

	if err := run(*socketPath, *tablePath, *tracePath, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(socketPath, tablePath, tracePath string, logger *slog.Logger) error {
	opts := resolve.Options{
		Logger: log.NewSlogAdapter(logger),
	}

	if tablePath != "" {
		table, err := fsclass.LoadTable(tablePath)
		if err != nil {
			return fmt.Errorf("loading classification table: %w", err)
		}
		opts.Table = table
	}

	if tracePath != "" {
		tracer, err := log.NewFileLogger(tracePath)
		if err != nil {
			return fmt.Errorf("opening trace file: %w", err)
		}
		defer tracer.Close()
		opts.Logger = log.NewMultiLogger(opts.Logger, tracer)
	}

	resolver := resolve.New(opts)
	svc, err := service.New(service.Config{
		SocketPath: socketPath,
		Logger:     logger,
		Query: func(f *os.File, q resolve.Query) (*resolve.Result, error) {
			return resolver.Resolve(sysfs.FromFile(f), q)
		},
	})
	if err != nil {
		return err
	}

	if err := svc.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	return svc.Stop()
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
