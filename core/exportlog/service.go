package exportlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core"
)

type Service struct {
	repo   Repository
	logger core.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record appends an export attempt to the audit trail. A persistence failure
// here is logged but never propagated: an export must not fail because its
// trace could not be written.
func (svc *Service) Record(ctx context.Context, e Entry) Entry {
	e.ID = uuid.New().String()
	e.CreatedAt = svc.now().UTC()
	e.RecipientCount = len(e.Recipients)

	created, err := svc.repo.CreateEntry(ctx, e)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("recording export log entry for %s: %v", e.CourseName, err), err)
		return e
	}
	return created
}

// ManualCountSince counts the manual export attempts of a course in the
// trailing window; it backs the manual-trigger rate limiter.
func (svc *Service) ManualCountSince(ctx context.Context, courseID string, since time.Time) (int, error) {
	count, err := svc.repo.CountEntries(ctx, Filter{
		CourseID:     courseID,
		TriggeredBy:  TriggerManual,
		CreatedSince: since,
	})
	return count, errors.Wrap(err, "counting manual exports")
}

// HasRecentScheduledSuccess reports whether a successful scheduled export for
// this course+label was recorded after since. It backs the cross-instance
// de-duplication check.
func (svc *Service) HasRecentScheduledSuccess(ctx context.Context, courseID, label string, since time.Time) (bool, error) {
	success := true
	_, err := svc.repo.LatestEntry(ctx, Filter{
		CourseID:     courseID,
		CourseName:   label,
		TriggeredBy:  TriggerScheduler,
		Success:      &success,
		CreatedSince: since,
	})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding recent scheduled export")
	}
	return true, nil
}

// Query lists entries for the audit UI, most recent first.
func (svc *Service) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	return svc.repo.FilterEntries(ctx, filter)
}
