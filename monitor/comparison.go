package monitor

// Comparison is a stored bike-vs-car traffic comparison for one ride.
// Coordinates are persisted but excluded from API payloads.
type Comparison struct {
	ID                  int64   `json:"id"`
	ActivityID          int64   `json:"activity_id"`
	ActivityName        string  `json:"activity_name"`
	RideDate            string  `json:"ride_date"`
	BikeTimeMinutes     float64 `json:"bike_time_minutes"`
	CarTimeMinutes      float64 `json:"car_time_minutes"`
	TimeSavedMinutes    float64 `json:"time_saved_minutes"`
	TimeSavedPercentage float64 `json:"time_saved_percentage"`
	DistanceMiles       float64 `json:"distance_miles"`
	BikeSpeedMPH        float64 `json:"bike_speed_mph"`
	CarSpeedMPH         float64 `json:"car_speed_mph"`
	TrafficConditions   string  `json:"traffic_conditions"`
	RouteSummary        string  `json:"route_summary"`
	CapturedAt          string  `json:"captured_at"`
	StartLat            float64 `json:"-"`
	StartLng            float64 `json:"-"`
	EndLat              float64 `json:"-"`
	EndLng              float64 `json:"-"`
}

// PendingCapture is a discovered ride whose traffic data could not be
// captured yet, queued for retry.
type PendingCapture struct {
	ActivityID      int64   `json:"activity_id"`
	ActivityName    string  `json:"activity_name"`
	RideDate        string  `json:"ride_date"`
	BikeTimeMinutes float64 `json:"bike_time_minutes"`
	DistanceMiles   float64 `json:"distance_miles"`
	BikeSpeedMPH    float64 `json:"bike_speed_mph"`
	StartLat        float64 `json:"start_lat"`
	StartLng        float64 `json:"start_lng"`
	EndLat          float64 `json:"end_lat"`
	EndLng          float64 `json:"end_lng"`
	DiscoveredAt    string  `json:"discovered_at"`
	RetryCount      int     `json:"retry_count"`
}

// Status summarizes the engine's stored data and connectivity.
type Status struct {
	Online           bool
	TotalComparisons int
	PendingCaptures  int
	LastCapture      string // RFC 3339, empty when nothing captured yet
}

const metersPerMile = 0.000621371

// MetersToMiles converts a distance in meters to miles.
func MetersToMiles(meters float64) float64 {
	return meters * metersPerMile
}
