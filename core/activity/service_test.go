package activity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	entries   []Entry
	createErr error
}

func (r *fakeRepo) CreateEntry(_ context.Context, e Entry) (Entry, error) {
	if r.createErr != nil {
		return Entry{}, r.createErr
	}
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *fakeRepo) FilterEntries(_ context.Context, filter Filter) ([]Entry, error) {
	var entries []Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.matches(r.entries[i], filter) {
			entries = append(entries, r.entries[i])
		}
	}
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

func (r *fakeRepo) CountEntries(_ context.Context, filter Filter) (int, error) {
	var count int
	for _, e := range r.entries {
		if r.matches(e, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) DistinctActions(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var actions []string
	for _, e := range r.entries {
		if !seen[e.Action] {
			seen[e.Action] = true
			actions = append(actions, e.Action)
		}
	}
	return actions, nil
}

func (r *fakeRepo) matches(e Entry, filter Filter) bool {
	if filter.Level != "" && e.Level != filter.Level {
		return false
	}
	if filter.Action != "" && e.Action != filter.Action {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(filter.Search)) {
		return false
	}
	if !filter.Since.IsZero() && e.CreatedAt.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && e.CreatedAt.After(filter.Until) {
		return false
	}
	return true
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var trailNow = time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo, nopLogger{})
	svc.now = func() time.Time { return trailNow }
	return svc
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	entry := svc.Record(context.Background(), Entry{
		Action:    "POST /v1/courses",
		Message:   "POST /v1/courses",
		UserID:    "admin-id",
		UserEmail: "admin@test.cd",
	})

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, trailNow, entry.CreatedAt)
	assert.Equal(t, LevelInfo, entry.Level) // defaulted
	if assert.Len(t, repo.entries, 1) {
		assert.Equal(t, entry, repo.entries[0])
	}
}

func TestService_Record_swallowsPersistenceFailure(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("insert failed")}
	svc := newTestService(repo)

	entry := svc.Record(context.Background(), Entry{Action: "POST /v1/courses", Level: LevelWarning})

	// the stamped entry is still returned; nothing was persisted
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, LevelWarning, entry.Level)
	assert.Empty(t, repo.entries)
}

func TestService_Query(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	for i := 0; i < 3; i++ {
		svc.Record(context.Background(), Entry{Action: "POST /v1/courses", Message: "POST /v1/courses"})
	}
	svc.Record(context.Background(), Entry{
		Action:  "DELETE /v1/courses/:id",
		Message: "DELETE /v1/courses/form_9: course not found",
		Level:   LevelWarning,
	})

	t.Run("defaults paging", func(t *testing.T) {
		page, err := svc.Query(context.Background(), Filter{})
		assert.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, defaultPageSize, page.Limit)
		assert.Equal(t, 1, page.TotalPages)
		assert.Len(t, page.Logs, 4)
		assert.Equal(t, []string{"POST /v1/courses", "DELETE /v1/courses/:id"}, page.Actions)
		// most recent first
		assert.Equal(t, LevelWarning, page.Logs[0].Level)
	})

	t.Run("pages", func(t *testing.T) {
		page, err := svc.Query(context.Background(), Filter{Page: 2, Limit: 3})
		assert.NoError(t, err)
		assert.Equal(t, 4, page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Logs, 1)
	})

	t.Run("filters by level", func(t *testing.T) {
		page, err := svc.Query(context.Background(), Filter{Level: LevelWarning})
		assert.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		if assert.Len(t, page.Logs, 1) {
			assert.Equal(t, "DELETE /v1/courses/:id", page.Logs[0].Action)
		}
	})

	t.Run("searches messages", func(t *testing.T) {
		page, err := svc.Query(context.Background(), Filter{Search: "not found"})
		assert.NoError(t, err)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("caps the page size", func(t *testing.T) {
		page, err := svc.Query(context.Background(), Filter{Limit: maxPageSize + 1})
		assert.NoError(t, err)
		assert.Equal(t, maxPageSize, page.Limit)
	})

	t.Run("empty result", func(t *testing.T) {
		page, err := svc.Query(context.Background(), Filter{Action: "PUT /v1/questions/:id"})
		assert.NoError(t, err)
		assert.Equal(t, 0, page.Total)
		assert.Equal(t, 0, page.TotalPages)
		assert.NotNil(t, page.Logs)
		assert.Empty(t, page.Logs)
	})
}
