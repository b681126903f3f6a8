package report_test

import (
	"time"

	"route-planning-report/internal/models"
)

func hm(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

// stop builds a record on vehicle TRK-1 with the given location and times
func stop(route float64, driver, name, function string, km, fill float64, arrive, depart time.Duration) models.StopRecord {
	return models.StopRecord{
		RouteID:              route,
		DriverName:           driver,
		LocationName:         name,
		LocationFunction:     function,
		VehicleLicensePlate:  "TRK-1",
		VehicleLoadingMeters: 13.6,
		VehicleCostPerHour:   50,
		VehicleCostPerKm:     2,
		DistanceToNextKm:     km,
		FillRate:             fill,
		ArrivalTime:          arrive,
		DepartureTime:        depart,
	}
}
