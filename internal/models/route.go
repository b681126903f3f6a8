package models

import "time"

// StopRecord represents a single stop visit read from a depot planning export
type StopRecord struct {
	Source               string        `json:"source"`
	RouteID              float64       `json:"route_id"`
	DriverName           string        `json:"driver_name"`
	LocationName         string        `json:"location_name"`
	LocationFunction     string        `json:"location_function"`
	VehicleLicensePlate  string        `json:"vehicle_license_plate"`
	VehicleLoadingMeters float64       `json:"vehicle_loading_meters"`
	VehicleCostPerHour   float64       `json:"vehicle_cost_per_hour"`
	VehicleCostPerKm     float64       `json:"vehicle_cost_per_km"`
	DistanceToNextKm     float64       `json:"distance_to_next_km"`
	FillRate             float64       `json:"fill_rate"`      // 0-1
	ArrivalTime          time.Duration `json:"arrival_time"`   // since midnight
	DepartureTime        time.Duration `json:"departure_time"` // since midnight
}

// SourceBatch is the ordered set of records read from one depot source
type SourceBatch struct {
	Name    string
	Records []StopRecord
}

// GroupKey identifies one route row in the report
type GroupKey struct {
	Source     string `json:"location"`
	RouteID    int64  `json:"route_id"`
	DriverName string `json:"driver"`
}

// RouteAggregate holds the raw per-route aggregates before formatting
type RouteAggregate struct {
	Key             GroupKey
	Vehicle         string
	Capacity        float64
	CostPerHour     float64
	CostPerKm       float64
	Stops           int
	DistanceKm      int64
	FillRatePercent float64
	Arrival         time.Duration
	Departure       time.Duration
}

// RouteSummary is one output row of the route planning report
type RouteSummary struct {
	Location        string  `json:"location"`
	RouteID         int64   `json:"route_id"`
	Vehicle         string  `json:"vehicle"`
	Driver          string  `json:"driver"`
	Capacity        float64 `json:"capacity"`
	Stops           int     `json:"stops"`
	DistanceKm      int64   `json:"distance_km"`
	FillRatePercent float64 `json:"fill_rate_percent"`
	Arrival         string  `json:"arrival"`
	Departure       string  `json:"departure"`
	Duration        string  `json:"duration"`
	Cost            float64 `json:"cost"`
}

// ReportRun describes one stored execution of the report
type ReportRun struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Sources     []string  `json:"sources"`
	RecordCount int       `json:"record_count"`
	RouteCount  int       `json:"route_count"`
}

// SummaryQuery represents query parameters for stored route summaries
type SummaryQuery struct {
	RunID    int64
	Location string
	Driver   string
	RouteID  int64
	Limit    int
	Offset   int
}
