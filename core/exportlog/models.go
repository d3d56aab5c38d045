package exportlog

import (
	"context"
	"errors"
	"time"
)

// Trigger sources.
const (
	TriggerManual    = "manual"
	TriggerScheduler = "scheduler"
)

var ErrNotFound = errors.New("export log entry not found")

type (
	// Entry is one export attempt, success or failure. Entries are append-only:
	// they are never updated or deleted, and double as the cross-instance
	// de-duplication signal for the scheduler.
	Entry struct {
		ID       string `json:"id"`
		CourseID string `json:"course_id"`
		// CourseName is the display label: the course name, annotated with the
		// sub-audience filter when present, e.g. "form_1 (Hospital North)".
		CourseName     string    `json:"course_name"`
		RecipientCount int       `json:"recipient_count"`
		Recipients     []string  `json:"recipients"`
		TriggeredBy    string    `json:"triggered_by"` // manual | scheduler
		UserID         string    `json:"user_id,omitempty"`
		Username       string    `json:"username,omitempty"`
		Success        bool      `json:"success"`
		ErrorMessage   string    `json:"error_message,omitempty"`
		CreatedAt      time.Time `json:"created_at"`
	}

	// Filter restricts log queries; zero values mean no restriction.
	Filter struct {
		CourseID     string
		CourseName   string
		TriggeredBy  string
		Success      *bool
		CreatedSince time.Time
	}

	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		CountEntries(ctx context.Context, filter Filter) (int, error)
		// LatestEntry returns the most recent matching entry, or ErrNotFound.
		LatestEntry(ctx context.Context, filter Filter) (Entry, error)
		// FilterEntries returns matching entries, most recent first.
		FilterEntries(ctx context.Context, filter Filter) ([]Entry, error)
	}
)
