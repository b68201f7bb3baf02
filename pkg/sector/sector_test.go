package sector

import (
	"errors"
	"math"
	"testing"

	"github.com/blocktrace/blocktrace-go/pkg/fsclass"
)

func TestFromByteRange(t *testing.T) {
	tests := []struct {
		name   string
		offset int64
		length uint64
		want   Range
	}{
		{"first page", 0, 4096, Range{0, 7}},
		{"second page", 4096, 4096, Range{8, 15}},
		{"single byte at zero", 0, 1, Range{0, 0}},
		{"single byte mid sector", 511, 1, Range{0, 0}},
		{"crosses sector boundary", 511, 2, Range{0, 1}},
		{"unaligned", 1000, 3000, Range{1, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromByteRange(tt.offset, tt.length)
			if err != nil {
				t.Fatalf("FromByteRange(%d, %d) failed: %v", tt.offset, tt.length, err)
			}
			if got != tt.want {
				t.Errorf("FromByteRange(%d, %d) = %v, want %v", tt.offset, tt.length, got, tt.want)
			}
			if got.Start > got.End {
				t.Errorf("range %v has start > end", got)
			}
		})
	}
}

// Adjacent equal-sized segments of a block device map to disjoint,
// contiguous sector ranges.
func TestFromByteRangeContiguous(t *testing.T) {
	first, err := FromByteRange(0, 4096)
	if err != nil {
		t.Fatal(err)
	}
	second, err := FromByteRange(4096, 4096)
	if err != nil {
		t.Fatal(err)
	}
	if first.End != second.Start-1 {
		t.Errorf("ranges not contiguous: %v then %v", first, second)
	}
}

func TestFromFileRange(t *testing.T) {
	tests := []struct {
		name      string
		offset    int64
		length    uint64
		blockBits uint
		want      Range
	}{
		// 4096-byte blocks: offset 10000 falls in logical block 2, and
		// offset+length-1 = 10049 stays there. Block 2 spans sectors 16-23.
		{"single 4k block", 10000, 50, 12, Range{16, 23}},
		{"first 4k block", 0, 1, 12, Range{0, 7}},
		{"two 4k blocks", 4095, 2, 12, Range{0, 15}},
		{"1k blocks", 3000, 100, 10, Range{4, 7}},
		{"512-byte blocks degenerate to sectors", 1024, 512, 9, Range{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFileRange(tt.offset, tt.length, tt.blockBits)
			if err != nil {
				t.Fatalf("FromFileRange failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("FromFileRange(%d, %d, %d) = %v, want %v",
					tt.offset, tt.length, tt.blockBits, got, tt.want)
			}

			// The range is logical-block aligned.
			sectorsPerBlock := int64(1) << (tt.blockBits - SectorBits)
			if got.Start%sectorsPerBlock != 0 {
				t.Errorf("start %d not aligned to %d sectors", got.Start, sectorsPerBlock)
			}
			if (got.End+1)%sectorsPerBlock != 0 {
				t.Errorf("end %d not block aligned", got.End)
			}
		})
	}
}

func TestFromFileRangeSmallBlocks(t *testing.T) {
	_, err := FromFileRange(0, 100, 8)
	if !errors.Is(err, ErrBlockSize) {
		t.Errorf("blockBits=8: got %v, want ErrBlockSize", err)
	}
}

func TestRangeValidation(t *testing.T) {
	tests := []struct {
		name   string
		offset int64
		length uint64
	}{
		{"negative offset", -1, 10},
		{"zero length", 0, 0},
		{"end overflows", math.MaxInt64 - 10, 100},
		{"length exceeds int64", 0, math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromByteRange(tt.offset, tt.length); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("FromByteRange: got %v, want ErrInvalidRange", err)
			}
			if _, err := FromFileRange(tt.offset, tt.length, 12); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("FromFileRange: got %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	got, err := Compute(fsclass.ClassBlockDevice, 0, 4096, 0)
	if err != nil {
		t.Fatal(err)
	}
	if (got != Range{0, 7}) {
		t.Errorf("block device compute = %v, want [0,7]", got)
	}

	got, err = Compute(fsclass.ClassDiskFilesystem, 10000, 50, 12)
	if err != nil {
		t.Fatal(err)
	}
	if (got != Range{16, 23}) {
		t.Errorf("disk filesystem compute = %v, want [16,23]", got)
	}

	for _, class := range []fsclass.Class{
		fsclass.ClassPseudoFilesystem,
		fsclass.ClassNetworkFilesystem,
		fsclass.ClassUnknown,
	} {
		if _, err := Compute(class, 0, 4096, 12); !errors.Is(err, ErrUnsupportedClass) {
			t.Errorf("Compute(%s): got %v, want ErrUnsupportedClass", class, err)
		}
	}
}

func TestBlockBits(t *testing.T) {
	tests := []struct {
		size    int64
		want    uint
		wantErr bool
	}{
		{512, 9, false},
		{1024, 10, false},
		{4096, 12, false},
		{65536, 16, false},
		{256, 0, true},
		{0, 0, true},
		{-4096, 0, true},
		{3000, 0, true},
	}
	for _, tt := range tests {
		got, err := BlockBits(tt.size)
		if tt.wantErr {
			if !errors.Is(err, ErrBlockSize) {
				t.Errorf("BlockBits(%d): got %v, want ErrBlockSize", tt.size, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("BlockBits(%d) failed: %v", tt.size, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BlockBits(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
