package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// RunInteractive runs queries from an interactive prompt.
func RunInteractive(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	fs.SetOutput(stderr)
	socket := fs.String("socket", "", "Query a running service at this unix socket")
	tablePath := fs.String("table", "", "Classification table file (YAML)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: blocktrace interactive [options]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitCommandError
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "blocktrace> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create readline: %v\n", err)
		return exitCommandError
	}
	defer rl.Close()

	session := &session{
		stdout: stdout,
		stderr: stderr,
		socket: *socket,
		table:  *tablePath,
	}
	session.printHelp()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(stdout, "Exiting...")
			return exitSuccess
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !session.dispatch(fields[0], fields[1:]) {
			return exitSuccess
		}
	}
}

// session holds the settings that persist across interactive queries.
type session struct {
	stdout io.Writer
	stderr io.Writer
	socket string
	table  string
	trace  string
}

// dispatch handles one command line. It returns false when the session
// should end.
func (s *session) dispatch(cmd string, args []string) bool {
	switch cmd {
	case "query", "q":
		s.query(args)
	case "socket":
		s.setString(&s.socket, args, "socket")
	case "table":
		s.setString(&s.table, args, "table")
	case "trace":
		s.setString(&s.trace, args, "trace")
	case "help", "?":
		s.printHelp()
	case "quit", "exit":
		fmt.Fprintln(s.stdout, "Exiting...")
		return false
	default:
		fmt.Fprintf(s.stderr, "Unknown command: %s (try 'help')\n", cmd)
	}
	return true
}

func (s *session) query(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(s.stderr, "Usage: query <file> <offset> <length>")
		return
	}
	offset, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || offset < 0 {
		fmt.Fprintf(s.stderr, "Error: offset must be a non-negative integer, got %q\n", args[1])
		return
	}
	length, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil || length == 0 {
		fmt.Fprintf(s.stderr, "Error: length must be a positive integer, got %q\n", args[2])
		return
	}

	opts := &QueryOptions{
		TablePath: s.table,
		TracePath: s.trace,
		Socket:    s.socket,
		Path:      args[0],
		Offset:    offset,
		Length:    length,
	}
	devices, _, err := runQuery(opts)
	if err != nil {
		printQueryError(s.stderr, err)
		return
	}
	if len(devices) == 0 {
		fmt.Fprintln(s.stdout, "No PCIe devices found for this file segment.")
		return
	}
	printDevices(s.stdout, devices)
}

// setString shows or updates one session setting. An argument of "off"
// clears it.
func (s *session) setString(dst *string, args []string, name string) {
	if len(args) == 0 {
		if *dst == "" {
			fmt.Fprintf(s.stdout, "%s: not set\n", name)
		} else {
			fmt.Fprintf(s.stdout, "%s: %s\n", name, *dst)
		}
		return
	}
	if args[0] == "off" {
		*dst = ""
		fmt.Fprintf(s.stdout, "%s cleared\n", name)
		return
	}
	*dst = args[0]
	fmt.Fprintf(s.stdout, "%s set to %s\n", name, *dst)
}

func (s *session) printHelp() {
	fmt.Fprintln(s.stdout, `Commands:
  query <file> <offset> <length>  Resolve a byte range to storage endpoints
  socket [path|off]               Show or set the service socket to query through
  table [path|off]                Show or set the classification table file
  trace [path|off]                Show or set the trace output file
  help                            Show this help
  quit                            Exit`)
}
