// Package log defines the resolution event log.
//
// The resolver emits one Event per query stage (classification, sector
// computation, ancestry walk, result). Applications choose where events go
// by supplying a Logger: NoopLogger discards them, SlogAdapter forwards them
// to a log/slog logger for console output, FileLogger appends them to a
// CBOR-encoded trace file, and MultiLogger fans out to several sinks.
package log
