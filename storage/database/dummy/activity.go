package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/tmalela/mafunzo/core/activity"
)

type activityRepository struct {
	db *activityLogTable
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activityLog}
}

func (repo *activityRepository) CreateEntry(_ context.Context, e activity.Entry) (activity.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.entries = append(repo.db.entries, e)
	return e, nil
}

func (repo *activityRepository) FilterEntries(_ context.Context, filter activity.Filter) ([]activity.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var entries []activity.Entry
	for i := len(repo.db.entries) - 1; i >= 0; i-- {
		if activityMatches(repo.db.entries[i], filter) {
			entries = append(entries, repo.db.entries[i])
		}
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

func (repo *activityRepository) CountEntries(_ context.Context, filter activity.Filter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, e := range repo.db.entries {
		if activityMatches(e, filter) {
			count++
		}
	}
	return count, nil
}

func (repo *activityRepository) DistinctActions(_ context.Context) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	var actions []string
	for _, e := range repo.db.entries {
		if !seen[e.Action] {
			seen[e.Action] = true
			actions = append(actions, e.Action)
		}
	}
	sort.Strings(actions)
	return actions, nil
}

func activityMatches(e activity.Entry, filter activity.Filter) bool {
	if filter.Level != "" && e.Level != filter.Level {
		return false
	}
	if filter.Action != "" && e.Action != filter.Action {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(e.Message), needle) &&
			!strings.Contains(strings.ToLower(e.UserEmail), needle) &&
			!strings.Contains(strings.ToLower(e.Action), needle) {
			return false
		}
	}
	if !filter.Since.IsZero() && e.CreatedAt.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && e.CreatedAt.After(filter.Until) {
		return false
	}
	return true
}
