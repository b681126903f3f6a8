// Package sample generates planning exports for demos and tests.
package sample

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"route-planning-report/internal/clock"
)

// Row is one line of a planning export
type Row struct {
	RouteID              float64 `csv:"routeId"`
	DriverName           string  `csv:"vehicleDriverName"`
	LocationName         string  `csv:"locationName"`
	LocationFunction     string  `csv:"locationFunction"`
	VehicleLicensePlate  string  `csv:"vehicleLicensePlate"`
	VehicleLoadingMeters float64 `csv:"vehicleLoadingMeters"`
	VehicleCostPerHour   float64 `csv:"vehicleCostPerHour"`
	VehicleCostPerKm     float64 `csv:"vehicleCostPerKm"`
	DistanceToNextKm     float64 `csv:"distanceToNextInKilometres"`
	FillRate             float64 `csv:"fillRate"`
	ArrivalTime          string  `csv:"arrivalTime"`
	DepartureTime        string  `csv:"departureTime"`
}

// Options controls sample generation
type Options struct {
	Routes      int
	MaxStops    int
	DepotMarker string
}

var (
	drivers        = []string{"Jan", "Els", "Piet", "Sofie", "Karim", "Lotte", "Bram", "Nora"}
	loadingMeters  = []float64{7.2, 8.0, 13.6, 15.65}
	stopFunctions  = []string{"DELIVERY", "DELIVERY", "DELIVERY", "PICKUP"}
	averageSpeedKm = 55.0
)

// Generate builds planning rows for one depot. Every route starts and ends
// with a depot visit; customer names may repeat within a route.
func Generate(rng *rand.Rand, depot string, opts Options) []Row {
	if opts.MaxStops < 1 {
		opts.MaxStops = 8
	}
	if opts.DepotMarker == "" {
		opts.DepotMarker = "DEPOT"
	}

	var rows []Row
	for i := 1; i <= opts.Routes; i++ {
		base := Row{
			RouteID:              float64(100 + i),
			DriverName:           drivers[rng.Intn(len(drivers))],
			VehicleLicensePlate:  fmt.Sprintf("%d-%s-%03d", 1+rng.Intn(2), plateLetters(rng), rng.Intn(1000)),
			VehicleLoadingMeters: loadingMeters[rng.Intn(len(loadingMeters))],
			VehicleCostPerHour:   float64(40 + rng.Intn(21)),
			VehicleCostPerKm:     math.Round((0.8+rng.Float64()*0.8)*100) / 100,
		}

		stops := 1 + rng.Intn(opts.MaxStops)
		at := 5*time.Hour + time.Duration(rng.Intn(180))*time.Minute
		fill := 0.5 + rng.Float64()*0.5

		for s := 0; s <= stops+1; s++ {
			row := base
			distance := math.Round((2+rng.Float64()*40)*10) / 10
			service := time.Duration(10+rng.Intn(25)) * time.Minute

			switch s {
			case 0:
				row.LocationName = depot + " DC"
				row.LocationFunction = opts.DepotMarker
				service = 30 * time.Minute
			case stops + 1:
				row.LocationName = depot + " DC"
				row.LocationFunction = opts.DepotMarker
				distance = 0
				service = 0
				fill = 0
			default:
				row.LocationName = fmt.Sprintf("Customer %02d", 1+rng.Intn(40))
				row.LocationFunction = stopFunctions[rng.Intn(len(stopFunctions))]
				fill = math.Max(0, fill-rng.Float64()*0.15)
			}

			row.DistanceToNextKm = distance
			row.FillRate = math.Round(fill*1000) / 1000
			row.ArrivalTime = clockString(at)
			row.DepartureTime = clockString(at + service)
			rows = append(rows, row)

			at += service + time.Duration(distance/averageSpeedKm*float64(time.Hour)).Truncate(time.Minute)
		}
	}
	return rows
}

// WriteCSV writes rows to a planning export file
func WriteCSV(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating sample file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("write sample %s: %w", path, err)
	}
	return file.Close()
}

func plateLetters(rng *rand.Rand) string {
	b := make([]byte, 3)
	for i := range b {
		b[i] = byte('A' + rng.Intn(26))
	}
	return string(b)
}

// clockString renders HH:MM:SS without wrapping at midnight
func clockString(d time.Duration) string {
	return fmt.Sprintf("%s:%02d", clock.Format(d), int(d%time.Minute/time.Second))
}
