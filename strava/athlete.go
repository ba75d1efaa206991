package strava

import "encoding/json"

// AthleteID extracts the numeric identity from a profile map. JSON decoding
// yields float64 for numbers, so both forms are handled.
func AthleteID(profile map[string]any) (int64, bool) {
	switch v := profile["id"].(type) {
	case float64:
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// AthleteName returns the athlete's first name, or "Athlete" when the profile
// carries none.
func AthleteName(profile map[string]any) string {
	if name, ok := profile["firstname"].(string); ok && name != "" {
		return name
	}
	return "Athlete"
}
