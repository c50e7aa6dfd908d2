package timeconv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nomina/internal/domain/timeconv"
)

func TestToDecimalHours(t *testing.T) {
	assert.Equal(t, 1.5, timeconv.ToDecimalHours(1, 30))
	assert.Equal(t, 0.25, timeconv.ToDecimalHours(0, 15))
	assert.Equal(t, 8.0, timeconv.ToDecimalHours(8, 0))
}

func TestSplitDecimalHours(t *testing.T) {
	cases := []struct {
		dec     float64
		hours   int
		minutes int
	}{
		{0, 0, 0},
		{1.5, 1, 30},
		{2.25, 2, 15},
		{3.999, 4, 0}, // 59.94min rounds to 60 and carries
		{0.75, 0, 45},
	}
	for _, tc := range cases {
		h, m := timeconv.SplitDecimalHours(tc.dec)
		assert.Equal(t, tc.hours, h, "hours for %v", tc.dec)
		assert.Equal(t, tc.minutes, m, "minutes for %v", tc.dec)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0min", timeconv.FormatDuration(0, 0))
	assert.Equal(t, "2h", timeconv.FormatDuration(2, 0))
	assert.Equal(t, "45min", timeconv.FormatDuration(0, 45))
	assert.Equal(t, "3h 15min", timeconv.FormatDuration(3, 15))
}

func TestFormatDurationRoundTrip(t *testing.T) {
	for h := 0; h < 30; h++ {
		for m := 0; m < 60; m += 7 {
			dec := timeconv.ToDecimalHours(h, m)
			gotH, gotM := timeconv.SplitDecimalHours(dec)
			assert.Equal(t, h, gotH)
			assert.Equal(t, m, gotM)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "0,00 €", timeconv.FormatCurrency(0))
	assert.Equal(t, "25,00 €", timeconv.FormatCurrency(25))
	assert.Equal(t, "1.234,56 €", timeconv.FormatCurrency(1234.561))
	assert.Equal(t, "-1.234,56 €", timeconv.FormatCurrency(-1234.56))
	assert.Equal(t, "1.000.000,10 €", timeconv.FormatCurrency(1000000.1))
}

func TestRoundCurrency(t *testing.T) {
	assert.Equal(t, 10.35, timeconv.RoundCurrency(10.345))
	assert.Equal(t, 10.34, timeconv.RoundCurrency(10.344))
}
