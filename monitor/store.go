package monitor

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const maxPendingRetries = 3

// Store persists traffic comparisons and pending captures in SQLite. A single
// Store is shared by all requests; the database handle pools connections.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.setupSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) setupSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS traffic_comparisons (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER UNIQUE,
	activity_name TEXT,
	ride_date TEXT,
	bike_time_minutes REAL,
	car_time_minutes REAL,
	time_saved_minutes REAL,
	time_saved_percentage REAL,
	distance_miles REAL,
	bike_speed_mph REAL,
	car_speed_mph REAL,
	traffic_conditions TEXT,
	route_summary TEXT,
	captured_at TEXT,
	start_lat REAL,
	start_lng REAL,
	end_lat REAL,
	end_lng REAL
);
CREATE TABLE IF NOT EXISTS pending_captures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER UNIQUE,
	activity_name TEXT,
	ride_date TEXT,
	bike_time_minutes REAL,
	distance_miles REAL,
	bike_speed_mph REAL,
	start_lat REAL,
	start_lng REAL,
	end_lat REAL,
	end_lng REAL,
	discovered_at TEXT,
	retry_count INTEGER DEFAULT 0
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("setup schema: %w", err)
	}
	return nil
}

// UpsertComparison stores a comparison, replacing any previous row for the
// same activity.
func (s *Store) UpsertComparison(ctx context.Context, c Comparison) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO traffic_comparisons
		(activity_id, activity_name, ride_date, bike_time_minutes, car_time_minutes,
		 time_saved_minutes, time_saved_percentage, distance_miles, bike_speed_mph,
		 car_speed_mph, traffic_conditions, route_summary, captured_at,
		 start_lat, start_lng, end_lat, end_lng)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ActivityID, c.ActivityName, c.RideDate, c.BikeTimeMinutes, c.CarTimeMinutes,
		c.TimeSavedMinutes, c.TimeSavedPercentage, c.DistanceMiles, c.BikeSpeedMPH,
		c.CarSpeedMPH, c.TrafficConditions, c.RouteSummary, c.CapturedAt,
		c.StartLat, c.StartLng, c.EndLat, c.EndLng)
	if err != nil {
		return fmt.Errorf("store comparison %d: %w", c.ActivityID, err)
	}
	return nil
}

// Comparisons returns all stored comparisons, newest ride first.
func (s *Store) Comparisons(ctx context.Context) ([]Comparison, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, activity_id, activity_name, ride_date, bike_time_minutes,
		       car_time_minutes, time_saved_minutes, time_saved_percentage,
		       distance_miles, bike_speed_mph, car_speed_mph, traffic_conditions,
		       route_summary, captured_at, start_lat, start_lng, end_lat, end_lng
		FROM traffic_comparisons
		ORDER BY ride_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query comparisons: %w", err)
	}
	defer rows.Close()

	comparisons := []Comparison{}
	for rows.Next() {
		var c Comparison
		if err := rows.Scan(&c.ID, &c.ActivityID, &c.ActivityName, &c.RideDate,
			&c.BikeTimeMinutes, &c.CarTimeMinutes, &c.TimeSavedMinutes,
			&c.TimeSavedPercentage, &c.DistanceMiles, &c.BikeSpeedMPH, &c.CarSpeedMPH,
			&c.TrafficConditions, &c.RouteSummary, &c.CapturedAt,
			&c.StartLat, &c.StartLng, &c.EndLat, &c.EndLng); err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		comparisons = append(comparisons, c)
	}
	return comparisons, rows.Err()
}

// ComparisonCount returns the number of stored comparisons.
func (s *Store) ComparisonCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM traffic_comparisons`).Scan(&count)
	return count, err
}

// LastProcessedActivity returns the highest stored activity ID, or ok=false
// when nothing has been captured yet.
func (s *Store) LastProcessedActivity(ctx context.Context) (int64, bool, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(activity_id) FROM traffic_comparisons`).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("query last activity: %w", err)
	}
	return id.Int64, id.Valid, nil
}

// LastCapture returns the timestamp of the most recent capture, or "" when
// nothing has been captured yet.
func (s *Store) LastCapture(ctx context.Context) (string, error) {
	var capturedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(captured_at) FROM traffic_comparisons`).Scan(&capturedAt)
	if err != nil {
		return "", fmt.Errorf("query last capture: %w", err)
	}
	return capturedAt.String, nil
}

// UpsertPending queues an activity for a later traffic capture.
func (s *Store) UpsertPending(ctx context.Context, p PendingCapture) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO pending_captures
		(activity_id, activity_name, ride_date, bike_time_minutes, distance_miles,
		 bike_speed_mph, start_lat, start_lng, end_lat, end_lng, discovered_at, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ActivityID, p.ActivityName, p.RideDate, p.BikeTimeMinutes, p.DistanceMiles,
		p.BikeSpeedMPH, p.StartLat, p.StartLng, p.EndLat, p.EndLng, p.DiscoveredAt, p.RetryCount)
	if err != nil {
		return fmt.Errorf("store pending capture %d: %w", p.ActivityID, err)
	}
	return nil
}

// PendingCaptures returns queued activities that still have retries left,
// oldest first.
func (s *Store) PendingCaptures(ctx context.Context) ([]PendingCapture, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT activity_id, activity_name, ride_date, bike_time_minutes,
		       distance_miles, bike_speed_mph, start_lat, start_lng, end_lat, end_lng,
		       discovered_at, retry_count
		FROM pending_captures
		WHERE retry_count < ?
		ORDER BY discovered_at ASC`, maxPendingRetries)
	if err != nil {
		return nil, fmt.Errorf("query pending captures: %w", err)
	}
	defer rows.Close()

	pending := []PendingCapture{}
	for rows.Next() {
		var p PendingCapture
		if err := rows.Scan(&p.ActivityID, &p.ActivityName, &p.RideDate,
			&p.BikeTimeMinutes, &p.DistanceMiles, &p.BikeSpeedMPH,
			&p.StartLat, &p.StartLng, &p.EndLat, &p.EndLng,
			&p.DiscoveredAt, &p.RetryCount); err != nil {
			return nil, fmt.Errorf("scan pending capture: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// PendingCount returns the number of queued captures, including those out of
// retries.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_captures`).Scan(&count)
	return count, err
}

// DeletePending removes an activity from the queue.
func (s *Store) DeletePending(ctx context.Context, activityID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_captures WHERE activity_id = ?`, activityID)
	return err
}

// IncrementRetry bumps the retry counter for a queued activity.
func (s *Store) IncrementRetry(ctx context.Context, activityID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pending_captures SET retry_count = retry_count + 1 WHERE activity_id = ?`, activityID)
	return err
}
