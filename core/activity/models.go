package activity

import (
	"context"
	"errors"
	"time"
)

// Entry levels.
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

var ErrNotFound = errors.New("activity log entry not found")

type (
	// Entry is one recorded action of the audit trail. Like export log
	// entries, activity entries are append-only.
	Entry struct {
		ID        string    `json:"id"`
		Level     string    `json:"level"` // debug | info | warning | error
		Action    string    `json:"action"`
		Message   string    `json:"message"`
		UserID    string    `json:"user_id,omitempty"`
		UserEmail string    `json:"user_email,omitempty"`
		IP        string    `json:"ip,omitempty"`
		UserAgent string    `json:"user_agent,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Filter restricts trail queries; zero values mean no restriction.
	// Search matches message, user email or action, case-insensitively.
	Filter struct {
		Level  string
		Action string
		Search string
		Since  time.Time
		Until  time.Time
		Page   int
		Limit  int
	}

	// Page is one page of the trail plus the metadata the audit UI needs to
	// paginate and build its filter dropdown.
	Page struct {
		Logs       []Entry  `json:"logs"`
		Total      int      `json:"total"`
		Page       int      `json:"page"`
		Limit      int      `json:"limit"`
		TotalPages int      `json:"total_pages"`
		Actions    []string `json:"actions"`
	}

	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		// FilterEntries returns the requested page of matching entries, most
		// recent first.
		FilterEntries(ctx context.Context, filter Filter) ([]Entry, error)
		CountEntries(ctx context.Context, filter Filter) (int, error)
		// DistinctActions returns the sorted set of recorded actions.
		DistinctActions(ctx context.Context) ([]string, error)
	}
)
