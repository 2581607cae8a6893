package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"2.5", "2.50"},
		{"11000", "11000.00"},
		{"1.004", "1.00"},
		{"1.005", "1.00"},
		{"1.0051", "1.01"},
		{"1.006", "1.01"},
		{"1.999", "2.00"},
		{"-1.005", "-1.00"},
		{"-1.006", "-1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(dec(tt.in)))
		})
	}
}

func TestRoundHalfDown_OtherPlaces(t *testing.T) {
	assert.Equal(t, "1", RoundHalfDown(dec("1.5"), 0).String())
	assert.Equal(t, "2", RoundHalfDown(dec("1.51"), 0).String())
	assert.Equal(t, "0.1", RoundHalfDown(dec("0.15"), 1).String())
}
