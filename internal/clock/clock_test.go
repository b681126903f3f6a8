package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planning-report/internal/clock"
)

func TestFormatHours(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{8.5, "08:30"},
		{8.75, "08:45"},
		{25.25, "25:15"},
		{0, "00:00"},
		{3, "03:00"},
		{100.5, "100:30"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, clock.FormatHours(c.hours), "hours=%v", c.hours)
	}
}

func TestFormatTruncatesMinutes(t *testing.T) {
	d := 8*time.Hour + 29*time.Minute + 59*time.Second
	assert.Equal(t, "08:29", clock.Format(d))
}

func TestFormatNegative(t *testing.T) {
	// hours truncate toward zero, minutes count up from the floored hour
	assert.Equal(t, "-1:45", clock.Format(-75*time.Minute))
	assert.Equal(t, "00:30", clock.Format(-30*time.Minute))
	assert.Equal(t, "-2:00", clock.Format(-2*time.Hour))
}

func TestParseForms(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"8:30", 8*time.Hour + 30*time.Minute},
		{"08:30:15", 8*time.Hour + 30*time.Minute + 15*time.Second},
		{"26:05:00", 26*time.Hour + 5*time.Minute},
		{"07:00:30.5", 7*time.Hour + 30*time.Second + 500*time.Millisecond},
		{"-1:30", -(time.Hour + 30*time.Minute)},
		{"1 days 02:30:00", 26*time.Hour + 30*time.Minute},
		{"1 day, 2:30:00", 26*time.Hour + 30*time.Minute},
		{"-1 days +22:00:00", -2 * time.Hour},
		{"PT8H30M", 8*time.Hour + 30*time.Minute},
		{"P1DT2H", 26 * time.Hour},
		{"0.5", 12 * time.Hour},
		{" 0.25 ", 6 * time.Hour},
	}
	for _, c := range cases {
		got, err := clock.Parse(c.in)
		require.NoError(t, err, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "8:75", "8:30:61", "1:2:3:4", "x:30"} {
		_, err := clock.Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFormatParseIdempotent(t *testing.T) {
	for _, s := range []string{"08:30", "25:15", "00:00", "13:07", "47:59"} {
		d, err := clock.Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, clock.Format(d))
	}
}

func TestHoursRoundTrip(t *testing.T) {
	assert.InDelta(t, 8.75, clock.Hours(clock.FromHours(8.75)), 1e-9)
}
