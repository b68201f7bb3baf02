// Package sector computes device-level sector ranges for byte ranges of
// open files. All ranges are inclusive and use 512-byte sector units.
package sector

import (
	"errors"
	"fmt"
	"math"

	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
)

// SectorBits is log2 of the sector size used by the block-device layer.
const SectorBits = 9

var (
	// ErrInvalidRange is returned for a byte range with a negative offset,
	// zero length, or an end that overflows a signed 64-bit offset.
	ErrInvalidRange = errors.New("invalid byte range")

	// ErrUnsupportedClass is returned when the storage class admits no
	// sector mapping (pseudo or network filesystems, unknown files).
	ErrUnsupportedClass = errors.New("storage class has no sector mapping")

	// ErrBlockSize is returned when the filesystem block size is smaller
	// than a sector or not a power of two. This indicates inconsistent
	// filesystem metadata, not a transient condition.
	ErrBlockSize = errors.New("invalid filesystem block size")
)

// Range is an inclusive range of 512-byte sectors.
type Range struct {
	Start int64
	End   int64
}

// String formats the range as "[start,end]".
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// Sectors returns the number of sectors covered by the range.
func (r Range) Sectors() int64 {
	return r.End - r.Start + 1
}

// BlockBits converts a filesystem block size in bytes to its log2. The block
// size must be a power of two no smaller than a sector.
func BlockBits(blockSize int64) (uint, error) {
	if blockSize < 1<<SectorBits || blockSize&(blockSize-1) != 0 {
		return 0, fmt.Errorf("%w: %d bytes", ErrBlockSize, blockSize)
	}
	var bits uint
	for s := blockSize; s > 1; s >>= 1 {
		bits++
	}
	return bits, nil
}

// FromByteRange maps a byte range of a raw block device to sectors. The
// device is byte-addressable, so this mapping is exact.
func FromByteRange(offset int64, length uint64) (Range, error) {
	if err := checkRange(offset, length); err != nil {
		return Range{}, err
	}
	return Range{
		Start: offset >> SectorBits,
		End:   (offset + int64(length) - 1) >> SectorBits,
	}, nil
}

// FromFileRange maps a byte range of a regular file to sectors via the
// filesystem's logical blocks. blockBits is log2 of the filesystem block
// size and must be at least SectorBits.
//
// The result is an approximation: it assumes a contiguous identity mapping
// from logical blocks to device blocks and ignores metadata placement,
// fragmentation and extent layout. The range is logical-block aligned.
func FromFileRange(offset int64, length uint64, blockBits uint) (Range, error) {
	if err := checkRange(offset, length); err != nil {
		return Range{}, err
	}
	if blockBits < SectorBits {
		return Range{}, fmt.Errorf("%w: %d bytes", ErrBlockSize, int64(1)<<blockBits)
	}

	startBlock := offset >> blockBits
	endBlock := (offset + int64(length) - 1) >> blockBits

	return Range{
		Start: startBlock << (blockBits - SectorBits),
		End:   ((endBlock + 1) << (blockBits - SectorBits)) - 1,
	}, nil
}

// Compute maps a classified file's byte range to a device sector range.
// blockBits is consulted only for regular files on disk filesystems.
func Compute(class fsclass.Class, offset int64, length uint64, blockBits uint) (Range, error) {
	switch class {
	case fsclass.ClassBlockDevice:
		return FromByteRange(offset, length)
	case fsclass.ClassDiskFilesystem:
		return FromFileRange(offset, length, blockBits)
	default:
		return Range{}, fmt.Errorf("%w: %s", ErrUnsupportedClass, class)
	}
}

func checkRange(offset int64, length uint64) error {
	if offset < 0 {
		return fmt.Errorf("%w: offset %d", ErrInvalidRange, offset)
	}
	if length == 0 {
		return fmt.Errorf("%w: zero length", ErrInvalidRange)
	}
	if length > math.MaxInt64 || offset > math.MaxInt64-int64(length)+1 {
		return fmt.Errorf("%w: end offset overflows", ErrInvalidRange)
	}
	return nil
}
