// Package clock parses and renders times of day and durations that are
// expressed as an offset from midnight. Values are not wrapped at 24 hours,
// so overnight routes keep hours of 24 and above.
package clock

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
)

var daysPattern = regexp.MustCompile(`^(-?\d+)\s+days?,?\s+(.+)$`)

// reference anchors calendar-based ISO-8601 durations
var reference = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Format renders d as HH:MM. Hours are truncated toward zero and the minutes
// come from the remainder above the floored hour, both truncated.
func Format(d time.Duration) string {
	hours := d / time.Hour
	floor := hours
	if d < 0 && d%time.Hour != 0 {
		floor--
	}
	minutes := (d - floor*time.Hour) / time.Minute
	return fmt.Sprintf("%02d:%02d", int64(hours), int64(minutes))
}

// FormatHours renders a fractional hour count as HH:MM
func FormatHours(h float64) string {
	return Format(FromHours(h))
}

// FromHours converts a fractional hour count to a duration
func FromHours(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}

// Hours converts a duration to a fractional hour count
func Hours(d time.Duration) float64 {
	return d.Hours()
}

// Parse reads a time of day or duration. Supported forms:
//
//	8:30, 08:30:15, 26:05:00.5, -1:30
//	1 days 02:30:00, 1 day, 2:30:00, -1 days +22:00:00
//	PT8H30M, P1DT2H
//	0.3541666 (fraction of a day, as stored by spreadsheets)
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time value")
	}

	if m := daysPattern.FindStringSubmatch(s); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("invalid day count in %q: %w", s, err)
		}
		rest, err := parseColon(strings.TrimPrefix(m[2], "+"))
		if err != nil {
			return 0, fmt.Errorf("invalid time in %q: %w", s, err)
		}
		return time.Duration(days)*24*time.Hour + rest, nil
	}

	if strings.HasPrefix(s, "P") {
		d, err := iso8601.ParseISO8601(s)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		return d.Shift(reference).Sub(reference), nil
	}

	if strings.Contains(s, ":") {
		return parseColon(s)
	}

	days, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse time: %s", s)
	}
	return time.Duration(math.Round(days*86400)) * time.Second, nil
}

func parseColon(s string) (time.Duration, error) {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("unable to parse time: %s", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hours in %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if len(parts) == 3 {
		seconds, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || seconds < 0 || seconds >= 60 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
		d += time.Duration(math.Round(seconds * float64(time.Second)))
	}

	if negative {
		d = -d
	}
	return d, nil
}
