package report

import (
	"fmt"
	"math"
	"strings"

	"route-planning-report/internal/models"
)

// Merge concatenates the source batches in order and tags every record with
// the name of the batch it came from. Records are copied, never deduplicated.
// Source names must be unique.
func Merge(batches []models.SourceBatch) ([]models.StopRecord, error) {
	total := 0
	seen := make(map[string]bool, len(batches))
	for i, b := range batches {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return nil, &models.MalformedInputError{
				Source: fmt.Sprintf("#%d", i+1),
				Field:  "location",
				Reason: "source name is empty",
			}
		}
		if seen[name] {
			return nil, &models.MalformedInputError{
				Source: b.Name,
				Field:  "location",
				Reason: "duplicate source name",
			}
		}
		seen[name] = true
		total += len(b.Records)
	}

	merged := make([]models.StopRecord, 0, total)
	for _, b := range batches {
		for i, r := range b.Records {
			if err := checkKeyFields(b.Name, i+1, &r); err != nil {
				return nil, err
			}
			r.Source = b.Name
			merged = append(merged, r)
		}
	}
	return merged, nil
}

// checkKeyFields rejects records that cannot be placed in a route group
func checkKeyFields(source string, row int, r *models.StopRecord) error {
	if math.IsNaN(r.RouteID) || math.IsInf(r.RouteID, 0) {
		return &models.MalformedInputError{Source: source, Row: row, Field: "routeId", Reason: "not a number"}
	}
	if strings.TrimSpace(r.DriverName) == "" {
		return &models.MalformedInputError{Source: source, Row: row, Field: "vehicleDriverName", Reason: "missing value"}
	}
	return nil
}
