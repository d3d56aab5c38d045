package dummydb

import (
	"context"

	"github.com/tmalela/mafunzo/core/attempt"
)

type attemptStore struct {
	db *attemptTables
}

var _ attempt.Store = (*attemptStore)(nil) // interface compliance check

func NewAttemptStore(db *DB) attempt.Store {
	return &attemptStore{db: db.attempt}
}

func (s *attemptStore) ForCourse(scoreTable string) (attempt.Repository, error) {
	return &attemptRepository{db: s.db, table: scoreTable}, nil
}

// SeedAttempts loads attempt fixtures into a score table.
func SeedAttempts(db *DB, scoreTable string, attempts ...attempt.Attempt) {
	db.attempt.Lock()
	defer db.attempt.Unlock()
	db.attempt.tables[scoreTable] = append(db.attempt.tables[scoreTable], attempts...)
}

type attemptRepository struct {
	db    *attemptTables
	table string
}

func (repo *attemptRepository) FilterAttempts(_ context.Context, filter attempt.Filter) ([]attempt.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var attempts []attempt.Attempt
	for _, a := range repo.db.tables[repo.table] {
		if filter.Institution != "" && a.Institution != filter.Institution {
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
