package resolve

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blocktrace/blocktrace-go/pkg/devtree"
	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
	"github.com/blocktrace/blocktrace-go/pkg/log"
	"github.com/blocktrace/blocktrace-go/pkg/sector"
)

// Query is one resolution request: a byte range of an open file.
type Query struct {
	// Offset is the starting byte offset, >= 0.
	Offset int64
	// Length is the byte count, > 0.
	Length uint64
}

// Validate checks the query's byte range.
func (q Query) Validate() error {
	if q.Offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidQuery, q.Offset)
	}
	if q.Length == 0 {
		return fmt.Errorf("%w: zero length", ErrInvalidQuery)
	}
	if _, err := sector.FromByteRange(q.Offset, q.Length); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}

// End returns the inclusive end offset of the byte range.
func (q Query) End() int64 {
	return q.Offset + int64(q.Length) - 1
}

// Handle is the resolver's view of an open file. It borrows the underlying
// file and device objects from the host environment for the duration of one
// query; implementations must not assume exclusive access.
type Handle interface {
	// Meta returns the file's storage metadata at query time.
	Meta() (fsclass.FileMeta, error)

	// Device returns the device-hierarchy node owned by the file's backing
	// block device, the starting point of the ancestry walk.
	Device() (devtree.Node, error)

	// Path returns a display path for diagnostics. May be empty.
	Path() string
}

// Result is the outcome of a successful resolution.
type Result struct {
	// Class is the filesystem classification of the queried file.
	Class fsclass.Class

	// Sectors is the device sector range for the byte range.
	Sectors sector.Range

	// Endpoints are the discovered transport endpoints in discovery order
	// (leaf toward root). Empty means the block device exists but is not
	// attached via the target transport.
	Endpoints []devtree.Endpoint
}

// Options configures a Resolver. The zero value selects the default
// classification table, the NVMe class signature and no logging.
type Options struct {
	// Table maps filesystem type names to classes.
	Table *fsclass.Table

	// Match is the PCI class signature of the target transport.
	Match devtree.ClassMatch

	// Logger receives one event per resolution stage.
	Logger log.Logger
}

// Resolver resolves file byte ranges to transport endpoints.
// A Resolver is stateless and safe for concurrent use.
type Resolver struct {
	table  *fsclass.Table
	match  devtree.ClassMatch
	logger log.Logger
}

// New creates a Resolver from the given options.
func New(opts Options) *Resolver {
	r := &Resolver{
		table:  opts.Table,
		match:  opts.Match,
		logger: opts.Logger,
	}
	if r.table == nil {
		r.table = fsclass.DefaultTable()
	}
	if (r.match == devtree.ClassMatch{}) {
		r.match = devtree.NVMe
	}
	if r.logger == nil {
		r.logger = log.NoopLogger{}
	}
	return r
}

// Resolve classifies the file, computes the sector range for the query and
// walks the device ancestry for matching transport endpoints.
//
// Zero discovered endpoints is a success, not an error: it means the block
// device was found but is not attached via the target transport.
func (r *Resolver) Resolve(h Handle, q Query) (*Result, error) {
	queryID := uuid.NewString()

	if err := q.Validate(); err != nil {
		r.fail(queryID, h, q, log.StageResult, err)
		return nil, err
	}

	meta, err := h.Meta()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrBadHandle, err)
		r.fail(queryID, h, q, log.StageClassify, err)
		return nil, err
	}

	class := r.table.Classify(meta)
	r.emit(log.Event{
		QueryID: queryID,
		Stage:   log.StageClassify,
		Path:    h.Path(),
		Offset:  q.Offset,
		Length:  q.Length,
		Class:   class.String(),
	})

	if err := rejectClass(class, meta); err != nil {
		r.fail(queryID, h, q, log.StageClassify, err)
		return nil, err
	}

	var blockBits uint
	if class == fsclass.ClassDiskFilesystem {
		blockBits, err = sector.BlockBits(meta.BlockSize)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
			r.fail(queryID, h, q, log.StageSectors, err)
			return nil, err
		}
	}

	sectors, err := sector.Compute(class, q.Offset, q.Length, blockBits)
	if err != nil {
		err = mapSectorError(err)
		r.fail(queryID, h, q, log.StageSectors, err)
		return nil, err
	}
	span := &log.SectorSpan{Start: sectors.Start, End: sectors.End}
	r.emit(log.Event{
		QueryID: queryID,
		Stage:   log.StageSectors,
		Path:    h.Path(),
		Class:   class.String(),
		Sectors: span,
	})

	node, err := h.Device()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrNoDevice, err)
		r.fail(queryID, h, q, log.StageWalk, err)
		return nil, err
	}
	if node == nil {
		r.fail(queryID, h, q, log.StageWalk, ErrNoDevice)
		return nil, ErrNoDevice
	}

	endpoints := devtree.Walk(node, r.match, q.Offset, q.End(), sectors)
	r.emit(log.Event{
		QueryID:   queryID,
		Stage:     log.StageWalk,
		Path:      h.Path(),
		Sectors:   span,
		Endpoints: len(endpoints),
	})

	r.emit(log.Event{
		QueryID:   queryID,
		Stage:     log.StageResult,
		Path:      h.Path(),
		Offset:    q.Offset,
		Length:    q.Length,
		Class:     class.String(),
		Sectors:   span,
		Endpoints: len(endpoints),
	})

	return &Result{
		Class:     class,
		Sectors:   sectors,
		Endpoints: endpoints,
	}, nil
}

// rejectClass enforces the error taxonomy for classes that admit no
// resolution.
func rejectClass(class fsclass.Class, meta fsclass.FileMeta) error {
	switch class {
	case fsclass.ClassPseudoFilesystem, fsclass.ClassNetworkFilesystem:
		return fmt.Errorf("%w: %s", ErrUnsupported, meta.FSType)
	case fsclass.ClassUnknown:
		return fmt.Errorf("%w: unsupported inode type", ErrNoDevice)
	case fsclass.ClassDiskFilesystem:
		if !meta.HasBackingDevice {
			return fmt.Errorf("%w: filesystem %s exposes none", ErrNoDevice, meta.FSType)
		}
	}
	return nil
}

func mapSectorError(err error) error {
	switch {
	case errors.Is(err, sector.ErrBlockSize):
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	case errors.Is(err, sector.ErrInvalidRange):
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	case errors.Is(err, sector.ErrUnsupportedClass):
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	default:
		return err
	}
}

func (r *Resolver) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	r.logger.Log(ev)
}

func (r *Resolver) fail(queryID string, h Handle, q Query, stage log.Stage, err error) {
	r.emit(log.Event{
		QueryID: queryID,
		Stage:   stage,
		Path:    h.Path(),
		Offset:  q.Offset,
		Length:  q.Length,
		Err:     err.Error(),
	})
}
