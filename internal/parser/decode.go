package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"route-planning-report/internal/clock"
	"route-planning-report/internal/models"
)

// DecodeRows converts header-keyed rows into stop records. Header names are
// matched case-insensitively. A missing column or unreadable value fails the
// whole source with a MalformedInputError.
func DecodeRows(source string, rows []map[string]string) ([]models.StopRecord, error) {
	records := make([]models.StopRecord, 0, len(rows))
	for i, row := range rows {
		r, err := decodeRow(source, i+1, normalize(row))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// normalize lower-cases and trims header names, dropping a UTF-8 BOM
func normalize(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(k, "\ufeff")))
		out[key] = strings.TrimSpace(v)
	}
	return out
}

// rowDecoder reads typed fields from one row, keeping the first error
type rowDecoder struct {
	source string
	row    int
	cells  map[string]string
	err    error
}

func (d *rowDecoder) fail(column, reason string) {
	if d.err == nil {
		d.err = &models.MalformedInputError{Source: d.source, Row: d.row, Field: column, Reason: reason}
	}
}

func (d *rowDecoder) cell(column string) (string, bool) {
	v, ok := d.cells[strings.ToLower(column)]
	if !ok {
		d.fail(column, "missing column")
	}
	return v, ok
}

func (d *rowDecoder) text(column string, required bool) string {
	v, ok := d.cell(column)
	if ok && required && v == "" {
		d.fail(column, "missing value")
	}
	return v
}

// number reads a float; an empty cell yields 0 unless required
func (d *rowDecoder) number(column string, required bool) float64 {
	v, ok := d.cell(column)
	if !ok {
		return 0
	}
	if v == "" {
		if required {
			d.fail(column, "missing value")
		}
		return 0
	}
	f, err := strconv.ParseFloat(decimalPoint(v), 64)
	if err != nil {
		d.fail(column, "not a number: "+v)
	}
	return f
}

var thousandsPattern = regexp.MustCompile(`^[+-]?[1-9]\d{0,2}(,\d{3})+(\.\d*)?$`)

// decimalPoint rewrites a locale formatted number for ParseFloat. Commas
// between groups of three digits are thousands separators (1,234 and
// 1,234.5); otherwise a single comma in a number without '.' is the
// decimal separator (12,5 and 0,125).
func decimalPoint(v string) string {
	if thousandsPattern.MatchString(v) {
		return strings.ReplaceAll(v, ",", "")
	}
	if !strings.Contains(v, ".") && strings.Count(v, ",") == 1 {
		return strings.Replace(v, ",", ".", 1)
	}
	return v
}

func (d *rowDecoder) timeOfDay(column string) time.Duration {
	s, ok := d.cell(column)
	if !ok {
		return 0
	}
	if s == "" {
		d.fail(column, "missing value")
		return 0
	}
	t, err := clock.Parse(s)
	if err != nil {
		d.fail(column, err.Error())
	}
	return t
}

func decodeRow(source string, row int, cells map[string]string) (models.StopRecord, error) {
	d := &rowDecoder{source: source, row: row, cells: cells}

	r := models.StopRecord{
		RouteID:              d.number(ColRouteID, true),
		DriverName:           d.text(ColDriverName, true),
		LocationName:         d.text(ColLocationName, false),
		LocationFunction:     d.text(ColLocationFunction, false),
		VehicleLicensePlate:  d.text(ColLicensePlate, false),
		VehicleLoadingMeters: d.number(ColLoadingMeters, true),
		VehicleCostPerHour:   d.number(ColCostPerHour, true),
		VehicleCostPerKm:     d.number(ColCostPerKm, true),
		DistanceToNextKm:     d.number(ColDistanceToNext, false),
		FillRate:             d.number(ColFillRate, false),
		ArrivalTime:          d.timeOfDay(ColArrivalTime),
		DepartureTime:        d.timeOfDay(ColDepartureTime),
	}

	if d.err != nil {
		return models.StopRecord{}, d.err
	}
	return r, nil
}
