package sqlxrepos

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/attempt"
)

// tableRefRegex constrains score table references to safe identifiers;
// the reference is interpolated into queries as a quoted identifier.
var tableRefRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type attemptStore struct {
	db *sqlx.DB

	mu    sync.Mutex
	repos map[string]attempt.Repository
}

var _ attempt.Store = (*attemptStore)(nil) // interface compliance check

func NewAttemptStore(db *sqlx.DB) attempt.Store {
	return &attemptStore{db: db, repos: make(map[string]attempt.Repository)}
}

func (s *attemptStore) ForCourse(scoreTable string) (attempt.Repository, error) {
	if !tableRefRegex.MatchString(scoreTable) {
		return nil, errors.Errorf("invalid score table reference: %q", scoreTable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if repo, ok := s.repos[scoreTable]; ok {
		return repo, nil
	}
	repo := &attemptRepository{db: s.db, table: scoreTable}
	s.repos[scoreTable] = repo
	return repo, nil
}

// attemptRepository reads one course's attempt table. Attempt tables are
// written by the quiz-taking flow and read-only here.
type attemptRepository struct {
	db    *sqlx.DB
	table string
}

type attemptRow struct {
	ID          string    `db:"id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Institution string    `db:"institution"`
	Service     string    `db:"service"`
	Score       int       `db:"score"`
	Total       int       `db:"total"`
	CourseID    string    `db:"course_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (repo *attemptRepository) FilterAttempts(ctx context.Context, filter attempt.Filter) ([]attempt.Attempt, error) {
	q := fmt.Sprintf(`SELECT id, first_name, last_name, institution, service, score, total, course_id, created_at
		FROM %q`, repo.table)
	args := make([]interface{}, 0, 1)
	if filter.Institution != "" {
		q += ` WHERE institution = $1`
		args = append(args, filter.Institution)
	}
	q += ` ORDER BY created_at, id`

	var rows []attemptRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting attempts")
	}

	attempts := make([]attempt.Attempt, 0, len(rows))
	for _, r := range rows {
		attempts = append(attempts, attempt.Attempt(r))
	}
	return attempts, nil
}
