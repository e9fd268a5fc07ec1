package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1500.00", want: 150_000},
		{in: "1500", want: 150_000},
		{in: "0.01", want: 1},
		{in: "10.5", want: 1_050},
		{in: "-25.00", want: -2_500},
		{in: "1.005", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseAmount(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1500.00", formatAmount(150_000))
	assert.Equal(t, "0.01", formatAmount(1))
	assert.Equal(t, "0.00", formatAmount(0))
	assert.Equal(t, "-12.34", formatAmount(-1_234))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 100, 12_345_678} {
		parsed, err := parseAmount(formatAmount(minor))
		require.NoError(t, err)
		assert.Equal(t, minor, parsed)
	}
}
