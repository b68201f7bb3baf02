// blocktrace is a CLI tool for mapping file byte ranges to the storage
// devices that hold them.
package main

import (
	"fmt"
	"os"

	"github.com/blocktrace/blocktrace-go/cmd/blocktrace/commands"
	"github.com/blocktrace/blocktrace-go/pkg/version"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "query":
		exitCode = commands.RunQuery(args, os.Stdout, os.Stderr)
	case "interactive":
		exitCode = commands.RunInteractive(args, os.Stdout, os.Stderr)
	case "trace":
		exitCode = commands.RunTrace(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("blocktrace version " + version.Tool)
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`blocktrace - map file byte ranges to storage devices

Usage:
  blocktrace <command> [options] [args...]

Commands:
  query        Resolve a byte range of a file to its storage endpoints
  interactive  Run queries from an interactive prompt
  trace        Display a recorded trace file

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Examples:
  blocktrace query /dev/nvme0n1 0 4096
  blocktrace query --json /var/log/syslog 10000 50
  blocktrace query --socket /run/blocktraced.sock /tmp/testfile 0 1024
  blocktrace interactive
  blocktrace trace /var/log/blocktrace.cbor

For command-specific help, run:
  blocktrace <command> --help`)
}
