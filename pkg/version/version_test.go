package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    FormatVersion
		wantErr bool
	}{
		{"1.0", FormatVersion{Major: 1, Minor: 0}, false},
		{"2.15", FormatVersion{Major: 2, Minor: 15}, false},
		{"1", FormatVersion{}, true},
		{"1.0.0", FormatVersion{}, true},
		{"a.b", FormatVersion{}, true},
		{".5", FormatVersion{}, true},
		{"1.", FormatVersion{}, true},
		{"", FormatVersion{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestCompatible(t *testing.T) {
	v1 := FormatVersion{Major: 1, Minor: 0}
	assert.True(t, v1.Compatible(FormatVersion{Major: 1, Minor: 7}))
	assert.False(t, v1.Compatible(FormatVersion{Major: 2, Minor: 0}))
}

func TestTableFormatParses(t *testing.T) {
	_, err := Parse(TableFormat)
	assert.NoError(t, err)
}
