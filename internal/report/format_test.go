package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"route-planning-report/internal/models"
	"route-planning-report/internal/report"
)

func TestCost(t *testing.T) {
	assert.Equal(t, 230.0, report.Cost(50, 2, 3*time.Hour, 40))
	assert.Equal(t, 0.0, report.Cost(0, 0, 5*time.Hour, 100))
	assert.Equal(t, 112.5, report.Cost(45, 0, 2*time.Hour+30*time.Minute, 0))
	// 20 minutes at 10/h
	assert.Equal(t, 3.33, report.Cost(10, 0, 20*time.Minute, 0))
}

func TestCostNegativeDurationNotClamped(t *testing.T) {
	assert.Equal(t, -20.0, report.Cost(40, 1, -time.Hour, 20))
}

func TestSummarize(t *testing.T) {
	agg := models.RouteAggregate{
		Key:             models.GroupKey{Source: "Jumet", RouteID: 7, DriverName: "A"},
		Vehicle:         "1-ABC-123",
		Capacity:        13.6,
		CostPerHour:     50,
		CostPerKm:       2,
		Stops:           4,
		DistanceKm:      40,
		FillRatePercent: 72.5,
		Arrival:         5*time.Hour + 45*time.Minute,
		Departure:       8*time.Hour + 45*time.Minute,
	}

	s := report.Summarize(agg)
	assert.Equal(t, models.RouteSummary{
		Location:        "Jumet",
		RouteID:         7,
		Vehicle:         "1-ABC-123",
		Driver:          "A",
		Capacity:        13.6,
		Stops:           4,
		DistanceKm:      40,
		FillRatePercent: 72.5,
		Arrival:         "05:45",
		Departure:       "08:45",
		Duration:        "03:00",
		Cost:            230,
	}, s)
}

func TestSummarizeOvernight(t *testing.T) {
	s := report.Summarize(models.RouteAggregate{
		Arrival:   22 * time.Hour,
		Departure: 47*time.Hour + 15*time.Minute,
	})
	assert.Equal(t, "22:00", s.Arrival)
	assert.Equal(t, "47:15", s.Departure)
	assert.Equal(t, "25:15", s.Duration)
}
