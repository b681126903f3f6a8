package report

import (
	"time"

	"route-planning-report/internal/clock"
	"route-planning-report/internal/models"
)

// Cost prices a route with a time charge and a distance charge, rounded to
// cents. A negative duration is priced as is.
func Cost(costPerHour, costPerKm float64, duration time.Duration, distanceKm int64) float64 {
	return round(costPerHour*clock.Hours(duration)+costPerKm*float64(distanceKm), 2)
}

// Summarize derives duration and cost for an aggregate and renders its times
func Summarize(agg models.RouteAggregate) models.RouteSummary {
	duration := agg.Departure - agg.Arrival

	return models.RouteSummary{
		Location:        agg.Key.Source,
		RouteID:         agg.Key.RouteID,
		Vehicle:         agg.Vehicle,
		Driver:          agg.Key.DriverName,
		Capacity:        agg.Capacity,
		Stops:           agg.Stops,
		DistanceKm:      agg.DistanceKm,
		FillRatePercent: agg.FillRatePercent,
		Arrival:         clock.Format(agg.Arrival),
		Departure:       clock.Format(agg.Departure),
		Duration:        clock.Format(duration),
		Cost:            Cost(agg.CostPerHour, agg.CostPerKm, duration, agg.DistanceKm),
	}
}
