package xquery

import (
	"net/url"
	"time"

	"github.com/topi314/campfire-sync/internal/xstrconv"
)

// dateLayout is the wire format for date query parameters.
const dateLayout = "2006-01-02"

// ParseTime reads a date parameter like ?from=2024-05-01. Missing or
// malformed values yield defaultValue.
func ParseTime(query url.Values, name string, defaultValue time.Time) time.Time {
	value := query.Get(name)
	if value == "" {
		return defaultValue
	}

	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// ParseBool reads a flag parameter. Missing or malformed values yield
// defaultValue.
func ParseBool(query url.Values, name string, defaultValue bool) bool {
	value := query.Get(name)
	if value == "" {
		return defaultValue
	}

	parsed, err := xstrconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
