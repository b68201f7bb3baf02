package commands

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/blocktrace/blocktrace-go/pkg/log"
)

// RunTrace runs the trace command, displaying a recorded trace file.
func RunTrace(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	jsonOut := fs.Bool("json", false, "Output events as JSON")
	queryID := fs.String("query", "", "Only show events of this query ID")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: blocktrace trace [options] <trace-file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitCommandError
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitCommandError
	}

	events, err := log.ReadEvents(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	shown := 0
	for _, ev := range events {
		if *queryID != "" && ev.QueryID != *queryID {
			continue
		}
		if *jsonOut {
			printEventJSON(stdout, ev)
		} else {
			printEvent(stdout, ev)
		}
		shown++
	}
	if shown == 0 && !*jsonOut {
		fmt.Fprintln(stdout, "No events.")
	}
	return exitSuccess
}

func printEvent(w io.Writer, ev log.Event) {
	fmt.Fprintf(w, "%s  %-8s  query=%s", ev.Timestamp.Format(time.RFC3339Nano), ev.Stage, shortID(ev.QueryID))
	if ev.Path != "" {
		fmt.Fprintf(w, "  path=%s", ev.Path)
	}
	switch ev.Stage {
	case log.StageClassify:
		fmt.Fprintf(w, "  offset=%d length=%d class=%s", ev.Offset, ev.Length, ev.Class)
	case log.StageSectors:
		if ev.Sectors != nil {
			fmt.Fprintf(w, "  sectors=%d-%d", ev.Sectors.Start, ev.Sectors.End)
		}
	case log.StageWalk, log.StageResult:
		fmt.Fprintf(w, "  endpoints=%d", ev.Endpoints)
	}
	if ev.Err != "" {
		fmt.Fprintf(w, "  error=%q", ev.Err)
	}
	fmt.Fprintln(w)
}

// eventOutput is the JSON shape of one trace event.
type eventOutput struct {
	Timestamp time.Time       `json:"timestamp"`
	QueryID   string          `json:"query_id"`
	Stage     string          `json:"stage"`
	Path      string          `json:"path,omitempty"`
	Offset    int64           `json:"offset,omitempty"`
	Length    uint64          `json:"length,omitempty"`
	Class     string          `json:"class,omitempty"`
	Sectors   *log.SectorSpan `json:"sectors,omitempty"`
	Endpoints int             `json:"endpoints,omitempty"`
	Err       string          `json:"error,omitempty"`
}

func printEventJSON(w io.Writer, ev log.Event) {
	data, _ := json.Marshal(eventOutput{
		Timestamp: ev.Timestamp,
		QueryID:   ev.QueryID,
		Stage:     ev.Stage.String(),
		Path:      ev.Path,
		Offset:    ev.Offset,
		Length:    ev.Length,
		Class:     ev.Class,
		Sectors:   ev.Sectors,
		Endpoints: ev.Endpoints,
		Err:       ev.Err,
	})
	fmt.Fprintln(w, string(data))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
