package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/question"
)

type questionRepository struct {
	db *sqlx.DB
}

var _ question.Repository = (*questionRepository)(nil) // interface compliance check

func NewQuestionRepository(db *sqlx.DB) question.Repository {
	return &questionRepository{db: db}
}

type questionRow struct {
	ID        string         `db:"id"`
	CourseID  string         `db:"course_id"`
	Text      string         `db:"text"`
	Options   pq.StringArray `db:"options"`
	Answer    int            `db:"answer"`
	Position  int            `db:"position"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r questionRow) toQuestion() question.Question {
	return question.Question{
		ID:        r.ID,
		CourseID:  r.CourseID,
		Text:      r.Text,
		Options:   r.Options,
		Answer:    r.Answer,
		Position:  r.Position,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const questionColumns = `id, course_id, "text", options, answer, "position", created_at, updated_at`

func (repo *questionRepository) CreateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	const stmt = `INSERT INTO question (id, course_id, "text", options, answer, "position", created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repo.db.ExecContext(ctx, stmt,
		q.ID, q.CourseID, q.Text, pq.StringArray(q.Options), q.Answer, q.Position, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return question.Question{}, errors.Wrap(err, "inserting question")
	}
	return q, nil
}

func (repo *questionRepository) QueryQuestionsByCourseID(ctx context.Context, courseID string) ([]question.Question, error) {
	var rows []questionRow
	const stmt = `SELECT ` + questionColumns + ` FROM question WHERE course_id = $1 ORDER BY "position", id`
	if err := repo.db.SelectContext(ctx, &rows, stmt, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting questions")
	}

	questions := make([]question.Question, 0, len(rows))
	for _, r := range rows {
		questions = append(questions, r.toQuestion())
	}
	return questions, nil
}

func (repo *questionRepository) GetQuestionByID(ctx context.Context, id string) (question.Question, error) {
	var row questionRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+questionColumns+` FROM question WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, errors.Wrap(err, "selecting question")
	}
	return row.toQuestion(), nil
}

func (repo *questionRepository) UpdateQuestion(ctx context.Context, q question.Question) (question.Question, error) {
	const stmt = `UPDATE question SET "text" = $2, options = $3, answer = $4, "position" = $5, updated_at = $6
		WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, stmt, q.ID, q.Text, pq.StringArray(q.Options), q.Answer, q.Position, q.UpdatedAt)
	if err != nil {
		return question.Question{}, errors.Wrap(err, "updating question")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return question.Question{}, question.ErrNotFound
	}
	return q, nil
}

func (repo *questionRepository) DeleteQuestionsByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM question WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting questions")
}
