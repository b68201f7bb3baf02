package log

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadEvents reads all events from a CBOR trace file written by FileLogger.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	dec := NewDecoder(f)
	for {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, fmt.Errorf("decoding event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
}
