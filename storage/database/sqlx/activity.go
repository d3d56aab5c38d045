package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core/activity"
)

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

type activityRow struct {
	ID        string    `db:"id"`
	Level     string    `db:"level"`
	Action    string    `db:"action"`
	Message   string    `db:"message"`
	UserID    string    `db:"user_id"`
	UserEmail string    `db:"user_email"`
	IP        string    `db:"ip"`
	UserAgent string    `db:"user_agent"`
	CreatedAt time.Time `db:"created_at"`
}

func (r activityRow) toEntry() activity.Entry {
	return activity.Entry{
		ID:        r.ID,
		Level:     r.Level,
		Action:    r.Action,
		Message:   r.Message,
		UserID:    r.UserID,
		UserEmail: r.UserEmail,
		IP:        r.IP,
		UserAgent: r.UserAgent,
		CreatedAt: r.CreatedAt,
	}
}

const activityColumns = `id, level, action, message, user_id, user_email, ip, user_agent, created_at`

func (repo *activityRepository) CreateEntry(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	const stmt = `INSERT INTO activity_log (id, level, action, message, user_id, user_email, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := repo.db.ExecContext(ctx, stmt,
		e.ID, e.Level, e.Action, e.Message, e.UserID, e.UserEmail, e.IP, e.UserAgent, e.CreatedAt)
	if err != nil {
		return activity.Entry{}, errors.Wrap(err, "inserting activity log entry")
	}
	return e, nil
}

func (repo *activityRepository) FilterEntries(ctx context.Context, filter activity.Filter) ([]activity.Entry, error) {
	q, args := buildActivityWhere(`SELECT `+activityColumns+` FROM activity_log`, filter)
	q += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, (filter.Page-1)*filter.Limit)
	}

	var rows []activityRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting activity log entries")
	}

	entries := make([]activity.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

func (repo *activityRepository) CountEntries(ctx context.Context, filter activity.Filter) (int, error) {
	q, args := buildActivityWhere(`SELECT COUNT(*) FROM activity_log`, filter)

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting activity log entries")
	}
	return count, nil
}

func (repo *activityRepository) DistinctActions(ctx context.Context) ([]string, error) {
	var actions []string
	if err := repo.db.SelectContext(ctx, &actions, `SELECT DISTINCT action FROM activity_log ORDER BY action`); err != nil {
		return nil, errors.Wrap(err, "selecting recorded actions")
	}
	return actions, nil
}

func buildActivityWhere(q string, filter activity.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Level != "" {
		add("level = $%d", filter.Level)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(message ILIKE $%d OR user_email ILIKE $%d OR action ILIKE $%d)", n, n, n))
	}
	if !filter.Since.IsZero() {
		add("created_at >= $%d", filter.Since)
	}
	if !filter.Until.IsZero() {
		add("created_at <= $%d", filter.Until)
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
