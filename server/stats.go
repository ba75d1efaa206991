package server

import (
	"math"

	"github.com/ridegauge/traffic-dashboard/monitor"
)

// Stats is the aggregate view over all stored comparisons. Display values
// are rounded to one decimal place.
type Stats struct {
	TotalRides       int     `json:"total_rides"`
	TotalDistance    float64 `json:"total_distance"`
	TotalTimeSaved   float64 `json:"total_time_saved"`
	AverageTimeSaved float64 `json:"average_time_saved"`
	TotalBikeTime    float64 `json:"total_bike_time"`
	TotalCarTime     float64 `json:"total_car_time"`
	AverageBikeSpeed float64 `json:"average_bike_speed"`
	AverageCarSpeed  float64 `json:"average_car_speed"`
}

// ComputeStats aggregates comparisons into dashboard statistics. An empty
// list yields the all-zero object. When rides exist but a total duration is
// zero, the corresponding average speed is reported as 0 rather than
// dividing by zero.
func ComputeStats(comparisons []monitor.Comparison) Stats {
	if len(comparisons) == 0 {
		return Stats{}
	}

	var distance, timeSaved, bikeTime, carTime float64
	for _, c := range comparisons {
		distance += c.DistanceMiles
		timeSaved += c.TimeSavedMinutes
		bikeTime += c.BikeTimeMinutes
		carTime += c.CarTimeMinutes
	}

	stats := Stats{
		TotalRides:       len(comparisons),
		TotalDistance:    round1(distance),
		TotalTimeSaved:   round1(timeSaved),
		AverageTimeSaved: round1(timeSaved / float64(len(comparisons))),
		TotalBikeTime:    round1(bikeTime),
		TotalCarTime:     round1(carTime),
	}
	if bikeTime > 0 {
		stats.AverageBikeSpeed = round1(distance / (bikeTime / 60))
	}
	if carTime > 0 {
		stats.AverageCarSpeed = round1(distance / (carTime / 60))
	}
	return stats
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
