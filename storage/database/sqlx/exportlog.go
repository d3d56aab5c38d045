package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/exportlog"
)

type exportLogRepository struct {
	db *sqlx.DB
}

var _ exportlog.Repository = (*exportLogRepository)(nil) // interface compliance check

func NewExportLogRepository(db *sqlx.DB) exportlog.Repository {
	return &exportLogRepository{db: db}
}

type exportLogRow struct {
	ID             string         `db:"id"`
	CourseID       string         `db:"course_id"`
	CourseName     string         `db:"course_name"`
	RecipientCount int            `db:"recipient_count"`
	Recipients     pq.StringArray `db:"recipients"`
	TriggeredBy    string         `db:"triggered_by"`
	UserID         string         `db:"user_id"`
	Username       string         `db:"username"`
	Success        bool           `db:"success"`
	ErrorMessage   string         `db:"error_message"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r exportLogRow) toEntry() exportlog.Entry {
	return exportlog.Entry{
		ID:             r.ID,
		CourseID:       r.CourseID,
		CourseName:     r.CourseName,
		RecipientCount: r.RecipientCount,
		Recipients:     r.Recipients,
		TriggeredBy:    r.TriggeredBy,
		UserID:         r.UserID,
		Username:       r.Username,
		Success:        r.Success,
		ErrorMessage:   r.ErrorMessage,
		CreatedAt:      r.CreatedAt,
	}
}

const entryColumns = `id, course_id, course_name, recipient_count, recipients, triggered_by,
	user_id, username, success, error_message, created_at`

func (repo *exportLogRepository) CreateEntry(ctx context.Context, e exportlog.Entry) (exportlog.Entry, error) {
	const q = `INSERT INTO export_log (id, course_id, course_name, recipient_count, recipients, triggered_by,
		user_id, username, success, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := repo.db.ExecContext(ctx, q,
		e.ID, e.CourseID, e.CourseName, e.RecipientCount, pq.StringArray(orEmpty(e.Recipients)),
		e.TriggeredBy, e.UserID, e.Username, e.Success, e.ErrorMessage, e.CreatedAt,
	)
	if err != nil {
		return exportlog.Entry{}, errors.Wrap(err, "inserting export log entry")
	}
	return e, nil
}

func (repo *exportLogRepository) CountEntries(ctx context.Context, filter exportlog.Filter) (int, error) {
	q, args := buildWhere(`SELECT COUNT(*) FROM export_log`, filter)

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting export log entries")
	}
	return count, nil
}

func (repo *exportLogRepository) LatestEntry(ctx context.Context, filter exportlog.Filter) (exportlog.Entry, error) {
	q, args := buildWhere(`SELECT `+entryColumns+` FROM export_log`, filter)
	q += ` ORDER BY created_at DESC LIMIT 1`

	var row exportLogRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return exportlog.Entry{}, exportlog.ErrNotFound
		}
		return exportlog.Entry{}, errors.Wrap(err, "selecting export log entry")
	}
	return row.toEntry(), nil
}

func (repo *exportLogRepository) FilterEntries(ctx context.Context, filter exportlog.Filter) ([]exportlog.Entry, error) {
	q, args := buildWhere(`SELECT `+entryColumns+` FROM export_log`, filter)
	q += ` ORDER BY created_at DESC`

	var rows []exportLogRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting export log entries")
	}

	entries := make([]exportlog.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

func buildWhere(q string, filter exportlog.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.CourseID != "" {
		add("course_id = $%d", filter.CourseID)
	}
	if filter.CourseName != "" {
		add("course_name = $%d", filter.CourseName)
	}
	if filter.TriggeredBy != "" {
		add("triggered_by = $%d", filter.TriggeredBy)
	}
	if filter.Success != nil {
		add("success = $%d", *filter.Success)
	}
	if !filter.CreatedSince.IsZero() {
		add("created_at >= $%d", filter.CreatedSince)
	}

	for i, cond := range conds {
		if i == 0 {
			q += " WHERE " + cond
		} else {
			q += " AND " + cond
		}
	}
	return q, args
}
