package dummydb

import (
	"context"

	"github.com/tmalela/mafunzo/core/exportlog"
)

type exportLogRepository struct {
	db *exportLogTable
}

var _ exportlog.Repository = (*exportLogRepository)(nil) // interface compliance check

func NewExportLogRepository(db *DB) exportlog.Repository {
	return &exportLogRepository{db: db.exportLog}
}

func (repo *exportLogRepository) CreateEntry(_ context.Context, e exportlog.Entry) (exportlog.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.entries = append(repo.db.entries, e)
	return e, nil
}

func (repo *exportLogRepository) CountEntries(_ context.Context, filter exportlog.Filter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, e := range repo.db.entries {
		if matches(e, filter) {
			count++
		}
	}
	return count, nil
}

func (repo *exportLogRepository) LatestEntry(_ context.Context, filter exportlog.Filter) (exportlog.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// entries are appended chronologically
	for i := len(repo.db.entries) - 1; i >= 0; i-- {
		if matches(repo.db.entries[i], filter) {
			return repo.db.entries[i], nil
		}
	}
	return exportlog.Entry{}, exportlog.ErrNotFound
}

func (repo *exportLogRepository) FilterEntries(_ context.Context, filter exportlog.Filter) ([]exportlog.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var entries []exportlog.Entry
	for i := len(repo.db.entries) - 1; i >= 0; i-- {
		if matches(repo.db.entries[i], filter) {
			entries = append(entries, repo.db.entries[i])
		}
	}
	return entries, nil
}

func matches(e exportlog.Entry, filter exportlog.Filter) bool {
	if filter.CourseID != "" && e.CourseID != filter.CourseID {
		return false
	}
	if filter.CourseName != "" && e.CourseName != filter.CourseName {
		return false
	}
	if filter.TriggeredBy != "" && e.TriggeredBy != filter.TriggeredBy {
		return false
	}
	if filter.Success != nil && e.Success != *filter.Success {
		return false
	}
	if !filter.CreatedSince.IsZero() && e.CreatedAt.Before(filter.CreatedSince) {
		return false
	}
	return true
}
