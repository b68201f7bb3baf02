package log

import (
	"time"
)

// Event represents one stage of a resolution query.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// QueryID ties together the events of one query (UUID).
	QueryID string `cbor:"2,keyasint"`

	// Stage identifies the resolution stage that produced the event.
	Stage Stage `cbor:"3,keyasint"`

	// Path of the queried file, when known.
	Path string `cbor:"4,keyasint,omitempty"`

	// Offset and Length of the queried byte range.
	Offset int64  `cbor:"5,keyasint,omitempty"`
	Length uint64 `cbor:"6,keyasint,omitempty"`

	// Class is the filesystem classification outcome.
	Class string `cbor:"7,keyasint,omitempty"`

	// Sectors is the computed sector range, set from StageSectors on.
	Sectors *SectorSpan `cbor:"8,keyasint,omitempty"`

	// Endpoints is the number of transport endpoints discovered so far.
	Endpoints int `cbor:"9,keyasint,omitempty"`

	// Err carries the failure message for error events.
	Err string `cbor:"10,keyasint,omitempty"`
}

// SectorSpan is an inclusive sector range inside an event.
type SectorSpan struct {
	Start int64 `cbor:"1,keyasint"`
	End   int64 `cbor:"2,keyasint"`
}

// Stage identifies a resolution stage.
type Stage uint8

const (
	// StageClassify is emitted after filesystem classification.
	StageClassify Stage = 0
	// StageSectors is emitted after the sector range computation.
	StageSectors Stage = 1
	// StageWalk is emitted after the device ancestry walk.
	StageWalk Stage = 2
	// StageResult is emitted once per query with the final outcome.
	StageResult Stage = 3
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageClassify:
		return "CLASSIFY"
	case StageSectors:
		return "SECTORS"
	case StageWalk:
		return "WALK"
	case StageResult:
		return "RESULT"
	default:
		return "UNKNOWN"
	}
}
