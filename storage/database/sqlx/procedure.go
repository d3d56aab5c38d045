package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/procedure"
)

type procedureRepository struct {
	db *sqlx.DB
}

var _ procedure.Repository = (*procedureRepository)(nil) // interface compliance check

func NewProcedureRepository(db *sqlx.DB) procedure.Repository {
	return &procedureRepository{db: db}
}

type procedureRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Position    int       `db:"position"`
	Published   bool      `db:"published"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r procedureRow) toProcedure() procedure.Procedure {
	return procedure.Procedure{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Position:    r.Position,
		Published:   r.Published,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const procedureColumns = `id, title, description, category, "position", published, created_at, updated_at`

func (repo *procedureRepository) CreateProcedure(ctx context.Context, p procedure.Procedure) (procedure.Procedure, error) {
	const stmt = `INSERT INTO procedure (id, title, description, category, "position", published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repo.db.ExecContext(ctx, stmt,
		p.ID, p.Title, p.Description, p.Category, p.Position, p.Published, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23505" {
			return procedure.Procedure{}, procedure.ErrIDExists
		}
		return procedure.Procedure{}, errors.Wrap(err, "inserting procedure")
	}
	return p, nil
}

func (repo *procedureRepository) QueryProcedures(ctx context.Context, filter procedure.Filter) ([]procedure.Procedure, error) {
	q := `SELECT ` + procedureColumns + ` FROM procedure`
	var conds []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "category = $1")
	}
	if filter.PublishedOnly {
		conds = append(conds, "published")
	}
	for i, cond := range conds {
		if i == 0 {
			q += " WHERE " + cond
		} else {
			q += " AND " + cond
		}
	}
	q += ` ORDER BY "position", created_at DESC, id`

	var rows []procedureRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting procedures")
	}

	procedures := make([]procedure.Procedure, 0, len(rows))
	for _, r := range rows {
		procedures = append(procedures, r.toProcedure())
	}
	return procedures, nil
}

func (repo *procedureRepository) GetProcedureByID(ctx context.Context, id string) (procedure.Procedure, error) {
	var row procedureRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+procedureColumns+` FROM procedure WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return procedure.Procedure{}, procedure.ErrNotFound
		}
		return procedure.Procedure{}, errors.Wrap(err, "selecting procedure")
	}
	return row.toProcedure(), nil
}

func (repo *procedureRepository) UpdateProcedure(ctx context.Context, p procedure.Procedure) (procedure.Procedure, error) {
	const stmt = `UPDATE procedure SET title = $2, description = $3, category = $4, "position" = $5,
		published = $6, updated_at = $7 WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, stmt,
		p.ID, p.Title, p.Description, p.Category, p.Position, p.Published, p.UpdatedAt)
	if err != nil {
		return procedure.Procedure{}, errors.Wrap(err, "updating procedure")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return procedure.Procedure{}, procedure.ErrNotFound
	}
	return p, nil
}

func (repo *procedureRepository) DeleteProceduresByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM procedure WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting procedures")
}
