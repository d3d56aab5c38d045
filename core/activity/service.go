package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type Service struct {
	repo   Repository
	logger core.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record appends an action to the trail. A persistence failure is logged but
// never propagated: no request should fail because its trace could not be
// written.
func (svc *Service) Record(ctx context.Context, e Entry) Entry {
	e.ID = uuid.New().String()
	e.CreatedAt = svc.now().UTC()
	if e.Level == "" {
		e.Level = LevelInfo
	}

	created, err := svc.repo.CreateEntry(ctx, e)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("recording activity %q: %v", e.Action, err), err)
		return e
	}
	return created
}

// Query returns one page of the trail, most recent first, along with the
// distinct actions recorded so far.
func (svc *Service) Query(ctx context.Context, filter Filter) (Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	} else if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	logs, err := svc.repo.FilterEntries(ctx, filter)
	if err != nil {
		return Page{}, errors.Wrap(err, "filtering activity entries")
	}
	if logs == nil {
		logs = []Entry{}
	}

	total, err := svc.repo.CountEntries(ctx, filter)
	if err != nil {
		return Page{}, errors.Wrap(err, "counting activity entries")
	}

	actions, err := svc.repo.DistinctActions(ctx)
	if err != nil {
		return Page{}, errors.Wrap(err, "listing recorded actions")
	}
	if actions == nil {
		actions = []string{}
	}

	return Page{
		Logs:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
		Actions:    actions,
	}, nil
}
