package apperrors

import (
	"errors"
	"fmt"
)

// Common error values for the dashboard.
var (
	// Credential errors
	ErrNotConfigured = errors.New("strava credentials not configured")
	ErrNoAccessToken = errors.New("no access token available")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
