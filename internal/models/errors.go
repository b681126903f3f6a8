package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for source files that are not csv, xlsx or json
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNoSources is returned when a report is requested without any source
	ErrNoSources = errors.New("no sources configured")
)

// MalformedInputError reports a missing or unreadable field in a source
type MalformedInputError struct {
	Source string
	Row    int // 1-based data row, 0 when the whole source is affected
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed input in source %q row %d field %q: %s", e.Source, e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed input in source %q field %q: %s", e.Source, e.Field, e.Reason)
}

// EmptyGroupError is returned when a route group has no records at all
type EmptyGroupError struct {
	Key GroupKey
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("route group %s/%d/%s has no records", e.Key.Source, e.Key.RouteID, e.Key.DriverName)
}

// InvariantViolation records a vehicle attribute that differs within one route.
// The first encountered value is kept.
type InvariantViolation struct {
	Key   GroupKey `json:"key"`
	Field string   `json:"field"`
	First string   `json:"first"`
	Other string   `json:"other"`
}

func (v InvariantViolation) String() string {
	return fmt.Sprintf("%s/%d/%s: %s differs within route (kept %q, saw %q)",
		v.Key.Source, v.Key.RouteID, v.Key.DriverName, v.Field, v.First, v.Other)
}
