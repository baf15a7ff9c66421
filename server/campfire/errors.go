package campfire

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyRequests is returned when the API answers with HTTP 429. Such
	// requests are never retried.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrTooManyRetries is returned when a request keeps failing with a
	// retryable condition until all retries are used up.
	ErrTooManyRetries = errors.New("too many retries")

	// ErrNoToken is returned when an authenticated request is attempted but the
	// token supplier has no token available.
	ErrNoToken = errors.New("no campfire token available")

	ErrEventNotFound     = errors.New("event not found")
	ErrUnsupportedMeetup = errors.New("meetup not supported")

	ErrNoDeepLink    = errors.New("no deep link found in URL")
	ErrNotClubLink   = errors.New("not a club deep link")
	ErrMissingClubID = errors.New("club id missing in deep link")
)

// RequestError is returned for non-200 responses which are neither rate limits
// nor retryable gateway failures.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status code: %d, response: %s", e.StatusCode, e.Body)
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}
