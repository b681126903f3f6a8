package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planning-report/internal/models"
	"route-planning-report/internal/report"
)

func tag(source string, records ...models.StopRecord) []models.StopRecord {
	for i := range records {
		records[i].Source = source
	}
	return records
}

func TestAggregateStopsExcludeDepot(t *testing.T) {
	records := tag("Geel",
		stop(4, "A", "DEPOT1", "DEPOT", 10, 0.9, hm(6, 0), hm(6, 30)),
		stop(4, "A", "Shop 1", "DELIVERY", 5, 0.5, hm(7, 0), hm(7, 20)),
		stop(4, "A", "Shop 1", "DELIVERY", 5, 0.4, hm(8, 0), hm(8, 20)),
		stop(4, "A", "Shop 2", "PICKUP", 5.9, 0.2, hm(9, 0), hm(9, 15)),
		stop(4, "A", "DEPOT1", "DEPOT", 0, 0, hm(10, 0), hm(10, 0)),
	)

	aggs, warnings, err := report.NewAggregator("").Aggregate(records)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, aggs, 1)

	a := aggs[0]
	assert.Equal(t, models.GroupKey{Source: "Geel", RouteID: 4, DriverName: "A"}, a.Key)
	assert.Equal(t, 2, a.Stops, "distinct non-depot location names")
	assert.Equal(t, int64(25), a.DistanceKm, "depot distance included, sum truncated")
	assert.Equal(t, 90.0, a.FillRatePercent, "depot fill rate included")
	assert.Equal(t, hm(6, 0), a.Arrival)
	assert.Equal(t, hm(10, 0), a.Departure)
	assert.Equal(t, "TRK-1", a.Vehicle)
	assert.Equal(t, 13.6, a.Capacity)
}

func TestAggregateDepotOnlyRouteKept(t *testing.T) {
	records := tag("Triton",
		stop(9, "B", "DEPOT1", "DEPOT", 1, 0, hm(5, 0), hm(5, 10)),
		stop(9, "B", "DEPOT2", "DEPOT", 1, 0, hm(5, 30), hm(5, 40)),
		stop(10, "B", "Shop", "DELIVERY", 1, 0, hm(5, 30), hm(5, 40)),
	)

	aggs, _, err := report.NewAggregator("DEPOT").Aggregate(records)
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	assert.Equal(t, int64(9), aggs[0].Key.RouteID)
	assert.Equal(t, 0, aggs[0].Stops)
	assert.Equal(t, 1, aggs[1].Stops)
}

func TestAggregateCustomDepotMarker(t *testing.T) {
	records := tag("Geel",
		stop(1, "A", "Home", "HUB", 0, 0, hm(6, 0), hm(6, 0)),
		stop(1, "A", "Shop", "DEPOT", 0, 0, hm(7, 0), hm(7, 0)),
	)
	aggs, _, err := report.NewAggregator("HUB").Aggregate(records)
	require.NoError(t, err)
	assert.Equal(t, 1, aggs[0].Stops)
}

func TestAggregateRouteIDTruncatedAndOrdered(t *testing.T) {
	records := tag("Jumet",
		stop(12.0, "Z", "S", "", 0, 0, 0, 0),
		stop(3.7, "B", "S", "", 0, 0, 0, 0),
		stop(3.0, "A", "S", "", 0, 0, 0, 0),
		stop(3.2, "B", "T", "", 0, 0, 0, 0),
	)
	records = append(records, tag("Geel", stop(50, "A", "S", "", 0, 0, 0, 0))...)

	aggs, _, err := report.NewAggregator("").Aggregate(records)
	require.NoError(t, err)

	var keys []models.GroupKey
	for _, a := range aggs {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []models.GroupKey{
		{Source: "Geel", RouteID: 50, DriverName: "A"},
		{Source: "Jumet", RouteID: 3, DriverName: "A"},
		{Source: "Jumet", RouteID: 3, DriverName: "B"},
		{Source: "Jumet", RouteID: 12, DriverName: "Z"},
	}, keys)
	assert.Equal(t, 2, aggs[2].Stops, "3.7 and 3.2 share route 3")
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := tag("Geel",
		stop(1, "A", "P", "", 1.5, 0.333, hm(8, 10), hm(9, 0)),
		stop(1, "A", "Q", "", 2.5, 0.8765, hm(7, 50), hm(8, 0)),
		stop(1, "A", "R", "", 3.5, 0.5, hm(9, 30), hm(11, 5)),
	)
	reversed := []models.StopRecord{records[2], records[1], records[0]}

	a1, _, err := report.NewAggregator("").Aggregate(records)
	require.NoError(t, err)
	a2, _, err := report.NewAggregator("").Aggregate(reversed)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, 87.6, a1[0].FillRatePercent)
	assert.Equal(t, int64(7), a1[0].DistanceKm)
	assert.Equal(t, hm(7, 50), a1[0].Arrival)
	assert.Equal(t, hm(11, 5), a1[0].Departure)
}

func TestAggregateReportsVehicleMismatch(t *testing.T) {
	first := stop(1, "A", "P", "", 0, 0, 0, 0)
	second := stop(1, "A", "Q", "", 0, 0, 0, 0)
	second.VehicleLicensePlate = "TRK-2"
	second.VehicleCostPerKm = 3
	third := second

	aggs, warnings, err := report.NewAggregator("").Aggregate(tag("Geel", first, second, third))
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", aggs[0].Vehicle, "first encountered value kept")
	assert.Equal(t, 2.0, aggs[0].CostPerKm)

	require.Len(t, warnings, 2, "one warning per field")
	assert.Equal(t, "vehicleLicensePlate", warnings[0].Field)
	assert.Equal(t, "TRK-2", warnings[0].Other)
	assert.Equal(t, "vehicleCostPerKm", warnings[1].Field)
}

func TestAggregateNoRecords(t *testing.T) {
	aggs, warnings, err := report.NewAggregator("").Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, aggs)
	assert.Empty(t, warnings)
}
