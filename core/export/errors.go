package export

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfigNotFound is returned when a specific configuration id was
	// requested but is not attached to the course.
	ErrConfigNotFound = errors.New("export configuration not found")
	// ErrNoConfigs is returned when a course has no enabled export
	// configuration, modern or legacy.
	ErrNoConfigs = errors.New("no enabled export configuration")
)

// RateLimitedError rejects a manual trigger that exceeded the hourly ceiling.
// The rejection is never written to the export log: no send was attempted.
type RateLimitedError struct {
	Limit int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("limit reached: %d exports/hour, try again later", e.Limit)
}

func IsRateLimited(err error) bool {
	_, ok := errors.Cause(err).(*RateLimitedError)
	return ok
}
