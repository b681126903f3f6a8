package report

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"route-planning-report/internal/models"
)

// DefaultDepotMarker is the location function of a non-productive depot visit
const DefaultDepotMarker = "DEPOT"

// Aggregator groups merged stop records into one aggregate per route
type Aggregator struct {
	DepotMarker string
}

// NewAggregator creates an aggregator; an empty marker selects DefaultDepotMarker
func NewAggregator(depotMarker string) *Aggregator {
	if depotMarker == "" {
		depotMarker = DefaultDepotMarker
	}
	return &Aggregator{DepotMarker: depotMarker}
}

// groupTotals accumulates the aggregates that include depot visits
type groupTotals struct {
	rows      int
	vehicle   string
	capacity  float64
	perHour   float64
	perKm     float64
	distance  float64
	maxFill   float64
	arrival   time.Duration
	departure time.Duration
	flagged   map[string]bool
}

// KeyOf returns the route group of a record with the route id truncated to an integer
func KeyOf(r *models.StopRecord) models.GroupKey {
	return models.GroupKey{
		Source:     r.Source,
		RouteID:    int64(math.Trunc(r.RouteID)),
		DriverName: r.DriverName,
	}
}

// Aggregate computes the per-route aggregates. Stop counts come from a
// depot-excluded view and are joined back onto the totals by group key; routes
// without productive stops get a count of zero. Vehicle attributes that differ
// within a route are returned as violations while the first value is kept.
func (a *Aggregator) Aggregate(records []models.StopRecord) ([]models.RouteAggregate, []models.InvariantViolation, error) {
	totals, order, violations := a.totals(records)
	counts := a.stopCounts(records)

	for key := range counts {
		if _, ok := totals[key]; !ok {
			return nil, nil, &models.EmptyGroupError{Key: key}
		}
	}

	sortKeys(order)

	out := make([]models.RouteAggregate, 0, len(order))
	for _, key := range order {
		t := totals[key]
		if t.rows == 0 {
			return nil, nil, &models.EmptyGroupError{Key: key}
		}
		out = append(out, models.RouteAggregate{
			Key:             key,
			Vehicle:         t.vehicle,
			Capacity:        t.capacity,
			CostPerHour:     t.perHour,
			CostPerKm:       t.perKm,
			Stops:           counts[key], // zero when the route only visits the depot
			DistanceKm:      int64(math.Trunc(t.distance)),
			FillRatePercent: round(t.maxFill*100, 1),
			Arrival:         t.arrival,
			Departure:       t.departure,
		})
	}
	return out, violations, nil
}

// stopCounts counts distinct location names per group among non-depot records
func (a *Aggregator) stopCounts(records []models.StopRecord) map[models.GroupKey]int {
	seen := make(map[models.GroupKey]map[string]struct{})
	for i := range records {
		r := &records[i]
		if r.LocationFunction == a.DepotMarker {
			continue
		}
		key := KeyOf(r)
		if seen[key] == nil {
			seen[key] = make(map[string]struct{})
		}
		seen[key][r.LocationName] = struct{}{}
	}

	counts := make(map[models.GroupKey]int, len(seen))
	for key, names := range seen {
		counts[key] = len(names)
	}
	return counts
}

func (a *Aggregator) totals(records []models.StopRecord) (map[models.GroupKey]*groupTotals, []models.GroupKey, []models.InvariantViolation) {
	groups := make(map[models.GroupKey]*groupTotals)
	var order []models.GroupKey
	var violations []models.InvariantViolation

	for i := range records {
		r := &records[i]
		key := KeyOf(r)
		t, ok := groups[key]
		if !ok {
			groups[key] = &groupTotals{
				rows:      1,
				vehicle:   r.VehicleLicensePlate,
				capacity:  r.VehicleLoadingMeters,
				perHour:   r.VehicleCostPerHour,
				perKm:     r.VehicleCostPerKm,
				distance:  r.DistanceToNextKm,
				maxFill:   r.FillRate,
				arrival:   r.ArrivalTime,
				departure: r.DepartureTime,
			}
			order = append(order, key)
			continue
		}

		t.rows++
		t.distance += r.DistanceToNextKm
		t.maxFill = math.Max(t.maxFill, r.FillRate)
		if r.ArrivalTime < t.arrival {
			t.arrival = r.ArrivalTime
		}
		if r.DepartureTime > t.departure {
			t.departure = r.DepartureTime
		}

		violations = append(violations, t.check(key, r)...)
	}

	return groups, order, violations
}

// check compares the vehicle attributes of r with the representative values
func (t *groupTotals) check(key models.GroupKey, r *models.StopRecord) []models.InvariantViolation {
	var out []models.InvariantViolation
	report := func(field, first, other string) {
		if first == other || t.flagged[field] {
			return
		}
		if t.flagged == nil {
			t.flagged = make(map[string]bool)
		}
		t.flagged[field] = true

		v := models.InvariantViolation{Key: key, Field: field, First: first, Other: other}
		log.Warn().
			Str("source", key.Source).
			Int64("route", key.RouteID).
			Str("driver", key.DriverName).
			Str("field", field).
			Str("kept", first).
			Str("seen", other).
			Msg("Vehicle attribute differs within route")
		out = append(out, v)
	}

	report("vehicleLicensePlate", t.vehicle, r.VehicleLicensePlate)
	report("vehicleLoadingMeters", formatFloat(t.capacity), formatFloat(r.VehicleLoadingMeters))
	report("vehicleCostPerHour", formatFloat(t.perHour), formatFloat(r.VehicleCostPerHour))
	report("vehicleCostPerKm", formatFloat(t.perKm), formatFloat(r.VehicleCostPerKm))
	return out
}

// sortKeys orders groups by source, route and driver
func sortKeys(keys []models.GroupKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.RouteID != b.RouteID {
			return a.RouteID < b.RouteID
		}
		return a.DriverName < b.DriverName
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
