// Package monitor is the activity-comparison engine. It watches a Strava
// athlete's recent rides, captures the equivalent car travel time from the
// Directions API, and persists the comparisons. Activities whose traffic data
// cannot be captured (offline, API failure) are queued and retried on later
// checks.
package monitor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridegauge/traffic-dashboard/gmaps"
)

const defaultProbeURL = "https://www.google.com"

// StravaAPI is the subset of the Strava client the monitor uses.
type StravaAPI interface {
	Activities(ctx context.Context, after time.Time, activityType string) ([]map[string]any, error)
	Activity(ctx context.Context, id int64) (map[string]any, error)
}

// RoutePlanner provides car travel times between two points.
type RoutePlanner interface {
	RouteTime(ctx context.Context, startLat, startLng, endLat, endLng float64) (*gmaps.Route, error)
}

// Monitor binds one identity's API clients to the shared store. Instances are
// cheap and constructed per request.
type Monitor struct {
	strava   StravaAPI
	routes   RoutePlanner
	store    *Store
	probeURL string
	probe    *http.Client
	pause    time.Duration
	log      zerolog.Logger
}

type Option func(*Monitor)

// WithProbeURL overrides the connectivity probe target.
func WithProbeURL(u string) Option {
	return func(m *Monitor) { m.probeURL = u }
}

// WithCapturePause overrides the delay between successive captures.
func WithCapturePause(d time.Duration) Option {
	return func(m *Monitor) { m.pause = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(m *Monitor) { m.log = log }
}

func New(stravaAPI StravaAPI, routes RoutePlanner, store *Store, opts ...Option) *Monitor {
	m := &Monitor{
		strava:   stravaAPI,
		routes:   routes,
		store:    store,
		probeURL: defaultProbeURL,
		probe:    &http.Client{Timeout: 5 * time.Second},
		pause:    2 * time.Second, // Strava rate limiting
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online reports whether the internet is reachable.
func (m *Monitor) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.probe.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Comparisons returns all stored comparisons, newest ride first.
func (m *Monitor) Comparisons(ctx context.Context) ([]Comparison, error) {
	return m.store.Comparisons(ctx)
}

// PendingCaptures returns queued activities that still have retries left.
func (m *Monitor) PendingCaptures(ctx context.Context) ([]PendingCapture, error) {
	return m.store.PendingCaptures(ctx)
}

// Status returns connectivity plus stored-data counts.
func (m *Monitor) Status(ctx context.Context) (Status, error) {
	total, err := m.store.ComparisonCount(ctx)
	if err != nil {
		return Status{}, err
	}
	pending, err := m.store.PendingCount(ctx)
	if err != nil {
		return Status{}, err
	}
	lastCapture, err := m.store.LastCapture(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Online:           m.Online(ctx),
		TotalComparisons: total,
		PendingCaptures:  pending,
		LastCapture:      lastCapture,
	}, nil
}

// CheckForNewActivities drains the pending queue, then scans the last 24
// hours of rides and captures traffic data for any activity newer than the
// last processed one. Activities that cannot be captured are queued for
// retry. Returns the comparisons captured from new activities.
func (m *Monitor) CheckForNewActivities(ctx context.Context) ([]Comparison, error) {
	if !m.Online(ctx) {
		m.log.Info().Msg("no internet connection, skipping check")
		return nil, nil
	}

	if processed, err := m.processPending(ctx); err != nil {
		return nil, err
	} else if processed > 0 {
		m.log.Info().Int("processed", processed).Msg("processed pending captures")
	}

	after := time.Now().Add(-24 * time.Hour)
	activities, err := m.strava.Activities(ctx, after, "Ride")
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	lastProcessed, haveLast, err := m.store.LastProcessedActivity(ctx)
	if err != nil {
		return nil, err
	}

	newComparisons := []Comparison{}
	for _, activity := range activities {
		activityID, ok := intField(activity, "id")
		if !ok {
			continue
		}
		if haveLast && activityID <= lastProcessed {
			continue
		}

		m.log.Info().Int64("activity_id", activityID).
			Str("name", stringField(activity, "name", "Unknown Activity")).
			Msg("new activity detected")

		comparison, err := m.captureActivity(ctx, activityID)
		if err != nil {
			m.log.Warn().Err(err).Int64("activity_id", activityID).Msg("capture failed, queueing")
			if err := m.queuePending(ctx, activity); err != nil {
				m.log.Error().Err(err).Int64("activity_id", activityID).Msg("queue pending failed")
			}
		} else {
			newComparisons = append(newComparisons, comparison)
		}

		m.sleep(ctx)
	}

	return newComparisons, nil
}

// captureActivity fetches the activity detail, queries the car route time,
// and stores the resulting comparison.
func (m *Monitor) captureActivity(ctx context.Context, activityID int64) (Comparison, error) {
	activity, err := m.strava.Activity(ctx, activityID)
	if err != nil {
		return Comparison{}, fmt.Errorf("activity detail: %w", err)
	}

	start, end, ok := activityCoordinates(activity)
	if !ok {
		return Comparison{}, fmt.Errorf("activity %d has no coordinates", activityID)
	}

	route, err := m.routes.RouteTime(ctx, start[0], start[1], end[0], end[1])
	if err != nil {
		return Comparison{}, fmt.Errorf("route time: %w", err)
	}

	bikeMinutes := floatField(activity, "moving_time") / 60.0
	carMinutes := float64(route.DurationSeconds) / 60.0
	distanceMiles := MetersToMiles(floatField(activity, "distance"))

	comparison := Comparison{
		ActivityID:          activityID,
		ActivityName:        stringField(activity, "name", "Unknown Activity"),
		RideDate:            rideDate(activity),
		BikeTimeMinutes:     bikeMinutes,
		CarTimeMinutes:      carMinutes,
		TimeSavedMinutes:    carMinutes - bikeMinutes,
		TimeSavedPercentage: percentSaved(carMinutes, bikeMinutes),
		DistanceMiles:       distanceMiles,
		BikeSpeedMPH:        speedMPH(distanceMiles, bikeMinutes),
		CarSpeedMPH:         speedMPH(distanceMiles, carMinutes),
		TrafficConditions:   route.TrafficConditions,
		RouteSummary:        route.RouteSummary,
		CapturedAt:          time.Now().Format(time.RFC3339),
		StartLat:            start[0],
		StartLng:            start[1],
		EndLat:              end[0],
		EndLng:              end[1],
	}

	if err := m.store.UpsertComparison(ctx, comparison); err != nil {
		return Comparison{}, err
	}
	return comparison, nil
}

// queuePending stores an activity summary for a later capture attempt.
// Activities without coordinates (trainer rides) are silently dropped.
func (m *Monitor) queuePending(ctx context.Context, activity map[string]any) error {
	activityID, ok := intField(activity, "id")
	if !ok {
		return nil
	}
	start, end, ok := activityCoordinates(activity)
	if !ok {
		return nil
	}

	bikeMinutes := floatField(activity, "moving_time") / 60.0
	distanceMiles := MetersToMiles(floatField(activity, "distance"))

	return m.store.UpsertPending(ctx, PendingCapture{
		ActivityID:      activityID,
		ActivityName:    stringField(activity, "name", "Unknown Activity"),
		RideDate:        rideDate(activity),
		BikeTimeMinutes: bikeMinutes,
		DistanceMiles:   distanceMiles,
		BikeSpeedMPH:    speedMPH(distanceMiles, bikeMinutes),
		StartLat:        start[0],
		StartLng:        start[1],
		EndLat:          end[0],
		EndLng:          end[1],
		DiscoveredAt:    time.Now().Format(time.RFC3339),
	})
}

// processPending retries queued captures, removing those that succeed and
// bumping the retry counter on those that fail.
func (m *Monitor) processPending(ctx context.Context) (int, error) {
	pending, err := m.store.PendingCaptures(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, p := range pending {
		route, err := m.routes.RouteTime(ctx, p.StartLat, p.StartLng, p.EndLat, p.EndLng)
		if err != nil {
			m.log.Warn().Err(err).Int64("activity_id", p.ActivityID).Msg("pending capture failed")
			if err := m.store.IncrementRetry(ctx, p.ActivityID); err != nil {
				return processed, err
			}
			continue
		}

		carMinutes := float64(route.DurationSeconds) / 60.0
		comparison := Comparison{
			ActivityID:          p.ActivityID,
			ActivityName:        p.ActivityName,
			RideDate:            p.RideDate,
			BikeTimeMinutes:     p.BikeTimeMinutes,
			CarTimeMinutes:      carMinutes,
			TimeSavedMinutes:    carMinutes - p.BikeTimeMinutes,
			TimeSavedPercentage: percentSaved(carMinutes, p.BikeTimeMinutes),
			DistanceMiles:       p.DistanceMiles,
			BikeSpeedMPH:        p.BikeSpeedMPH,
			CarSpeedMPH:         speedMPH(p.DistanceMiles, carMinutes),
			TrafficConditions:   route.TrafficConditions,
			RouteSummary:        route.RouteSummary,
			CapturedAt:          time.Now().Format(time.RFC3339),
			StartLat:            p.StartLat,
			StartLng:            p.StartLng,
			EndLat:              p.EndLat,
			EndLng:              p.EndLng,
		}

		if err := m.store.UpsertComparison(ctx, comparison); err != nil {
			return processed, err
		}
		if err := m.store.DeletePending(ctx, p.ActivityID); err != nil {
			return processed, err
		}
		processed++

		m.sleep(ctx)
	}
	return processed, nil
}

func (m *Monitor) sleep(ctx context.Context) {
	if m.pause <= 0 {
		return
	}
	select {
	case <-time.After(m.pause):
	case <-ctx.Done():
	}
}

func speedMPH(distanceMiles, durationMinutes float64) float64 {
	if durationMinutes <= 0 {
		return 0
	}
	return distanceMiles / (durationMinutes / 60.0)
}

func percentSaved(carMinutes, bikeMinutes float64) float64 {
	if carMinutes <= 0 {
		return 0
	}
	return (carMinutes - bikeMinutes) / carMinutes * 100
}

func floatField(m map[string]any, key string) float64 {
	v, _ := m[key].(float64)
	return v
}

func intField(m map[string]any, key string) (int64, bool) {
	v, ok := m[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(v), true
}

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// rideDate normalizes the activity's start_date to RFC 3339, passing the raw
// value through when it cannot be parsed.
func rideDate(activity map[string]any) string {
	raw, _ := activity["start_date"].(string)
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format(time.RFC3339)
}

// activityCoordinates extracts start/end lat-lng pairs from an activity map.
func activityCoordinates(activity map[string]any) (start, end [2]float64, ok bool) {
	start, okStart := latLng(activity["start_latlng"])
	end, okEnd := latLng(activity["end_latlng"])
	return start, end, okStart && okEnd
}

func latLng(v any) ([2]float64, bool) {
	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return [2]float64{}, false
	}
	lat, okLat := pair[0].(float64)
	lng, okLng := pair[1].(float64)
	if !okLat || !okLng {
		return [2]float64{}, false
	}
	return [2]float64{lat, lng}, true
}
