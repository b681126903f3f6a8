// Package report turns per-stop planning records from several depots into
// one summary row per route: stops, distance, fill rate, time window,
// duration and cost.
package report

import (
	"time"

	"github.com/rs/zerolog/log"

	"route-planning-report/internal/models"
)

// Options configures a report build
type Options struct {
	// DepotMarker is the locationFunction value excluded from stop counts
	DepotMarker string
}

// Result is the complete output of one report build
type Result struct {
	Sources     []string                    `json:"sources"`
	RecordCount int                         `json:"record_count"`
	Summaries   []models.RouteSummary       `json:"summaries"`
	Warnings    []models.InvariantViolation `json:"warnings,omitempty"`
}

// Build merges the source batches, aggregates them per route and formats the
// summaries. Either the full table is returned or an error.
func Build(batches []models.SourceBatch, opts Options) (*Result, error) {
	if len(batches) == 0 {
		return nil, models.ErrNoSources
	}
	start := time.Now()

	records, err := Merge(batches)
	if err != nil {
		return nil, err
	}

	aggregates, violations, err := NewAggregator(opts.DepotMarker).Aggregate(records)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.RouteSummary, len(aggregates))
	for i, agg := range aggregates {
		summaries[i] = Summarize(agg)
	}

	sources := make([]string, len(batches))
	for i, b := range batches {
		sources[i] = b.Name
	}

	log.Debug().
		Int("records", len(records)).
		Int("routes", len(summaries)).
		Int("warnings", len(violations)).
		Dur("elapsed", time.Since(start)).
		Msg("Report built")

	return &Result{
		Sources:     sources,
		RecordCount: len(records),
		Summaries:   summaries,
		Warnings:    violations,
	}, nil
}
