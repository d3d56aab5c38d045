package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tmalela/mafunzo/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	ScoreTable        string         `db:"score_table"`
	Position          int            `db:"position"`
	ExportEnabled     bool           `db:"export_enabled"`
	ExportRecipients  pq.StringArray `db:"export_recipients"`
	ExportAPIKey      string         `db:"export_api_key"`
	ExportDay         null.Int       `db:"export_day"`
	ExportHour        null.Int       `db:"export_hour"`
	ExportMinute      null.Int       `db:"export_minute"`
	ExportInstitution string         `db:"export_institution"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:         r.ID,
		Name:       r.Name,
		ScoreTable: r.ScoreTable,
		Position:   r.Position,
		LegacyExport: course.LegacyExport{
			Enabled:     r.ExportEnabled,
			Recipients:  r.ExportRecipients,
			APIKey:      r.ExportAPIKey,
			Day:         r.ExportDay,
			Hour:        r.ExportHour,
			Minute:      r.ExportMinute,
			Institution: r.ExportInstitution,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type exportConfigRow struct {
	ID          string         `db:"id"`
	CourseID    string         `db:"course_id"`
	Enabled     bool           `db:"enabled"`
	Recipients  pq.StringArray `db:"recipients"`
	APIKey      string         `db:"api_key"`
	Day         int            `db:"day"`
	Hour        int            `db:"hour"`
	Minute      int            `db:"minute"`
	Institution string         `db:"institution"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r exportConfigRow) toConfig() course.ExportConfig {
	return course.ExportConfig{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Enabled:     r.Enabled,
		Recipients:  r.Recipients,
		APIKey:      r.APIKey,
		Day:         r.Day,
		Hour:        r.Hour,
		Minute:      r.Minute,
		Institution: r.Institution,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const courseColumns = `id, name, score_table, "position", export_enabled, export_recipients, export_api_key,
	export_day, export_hour, export_minute, export_institution, created_at, updated_at`

const configColumns = `id, course_id, enabled, recipients, api_key, "day", "hour", "minute", institution, created_at, updated_at`

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	const q = `INSERT INTO course (id, name, score_table, "position", export_enabled, export_recipients, export_api_key,
		export_day, export_hour, export_minute, export_institution, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	le := crs.LegacyExport
	_, err := repo.db.ExecContext(ctx, q,
		crs.ID, crs.Name, crs.ScoreTable, crs.Position,
		le.Enabled, pq.StringArray(orEmpty(le.Recipients)), le.APIKey, le.Day, le.Hour, le.Minute, le.Institution,
		crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == "23505" {
			return course.Course{}, course.ErrIDExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+courseColumns+` FROM course ORDER BY "position", id`); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return repo.withConfigs(ctx, rows)
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM course WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}

	courses, err := repo.withConfigs(ctx, []courseRow{row})
	if err != nil {
		return course.Course{}, err
	}
	return courses[0], nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	const q = `UPDATE course SET name = $2, score_table = $3, "position" = $4,
		export_enabled = $5, export_recipients = $6, export_api_key = $7,
		export_day = $8, export_hour = $9, export_minute = $10, export_institution = $11, updated_at = $12
		WHERE id = $1`

	le := crs.LegacyExport
	res, err := repo.db.ExecContext(ctx, q,
		crs.ID, crs.Name, crs.ScoreTable, crs.Position,
		le.Enabled, pq.StringArray(orEmpty(le.Recipients)), le.APIKey, le.Day, le.Hour, le.Minute, le.Institution,
		crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting courses")
}

func (repo *courseRepository) ReorderCourses(ctx context.Context, ids []string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for pos, id := range ids {
		if _, err = tx.ExecContext(ctx, `UPDATE course SET "position" = $2 WHERE id = $1`, id, pos); err != nil {
			return errors.Wrap(err, "reordering courses")
		}
	}
	return errors.Wrap(tx.Commit(), "committing reorder")
}

func (repo *courseRepository) FilterCoursesWithEnabledExport(ctx context.Context) ([]course.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM course c
		WHERE EXISTS (SELECT 1 FROM export_config ec WHERE ec.course_id = c.id AND ec.enabled)
		   OR (c.export_enabled AND cardinality(c.export_recipients) > 0
		       AND NOT EXISTS (SELECT 1 FROM export_config ec WHERE ec.course_id = c.id))
		ORDER BY c."position", c.id`

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting exportable courses")
	}
	return repo.withConfigs(ctx, rows)
}

func (repo *courseRepository) CreateExportConfig(ctx context.Context, cfg course.ExportConfig) (course.ExportConfig, error) {
	const q = `INSERT INTO export_config (id, course_id, enabled, recipients, api_key, "day", "hour", "minute", institution, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := repo.db.ExecContext(ctx, q,
		cfg.ID, cfg.CourseID, cfg.Enabled, pq.StringArray(orEmpty(cfg.Recipients)), cfg.APIKey,
		cfg.Day, cfg.Hour, cfg.Minute, cfg.Institution, cfg.CreatedAt, cfg.UpdatedAt,
	)
	if err != nil {
		return course.ExportConfig{}, errors.Wrap(err, "inserting export config")
	}
	return cfg, nil
}

func (repo *courseRepository) UpdateExportConfig(ctx context.Context, cfg course.ExportConfig) (course.ExportConfig, error) {
	const q = `UPDATE export_config SET enabled = $2, recipients = $3, api_key = $4,
		"day" = $5, "hour" = $6, "minute" = $7, institution = $8, updated_at = $9
		WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		cfg.ID, cfg.Enabled, pq.StringArray(orEmpty(cfg.Recipients)), cfg.APIKey,
		cfg.Day, cfg.Hour, cfg.Minute, cfg.Institution, cfg.UpdatedAt,
	)
	if err != nil {
		return course.ExportConfig{}, errors.Wrap(err, "updating export config")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ExportConfig{}, course.ErrConfigNotFound
	}
	return cfg, nil
}

func (repo *courseRepository) DeleteExportConfig(ctx context.Context, courseID, cfgID string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM export_config WHERE id = $1 AND course_id = $2`, cfgID, courseID)
	if err != nil {
		return errors.Wrap(err, "deleting export config")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrConfigNotFound
	}
	return nil
}

// withConfigs loads the export configurations of the given rows in one query.
func (repo *courseRepository) withConfigs(ctx context.Context, rows []courseRow) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(rows))
	if len(rows) == 0 {
		return courses, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	var cfgRows []exportConfigRow
	const q = `SELECT ` + configColumns + ` FROM export_config WHERE course_id = ANY($1) ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &cfgRows, q, pq.StringArray(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting export configs")
	}

	byCourse := make(map[string][]course.ExportConfig, len(rows))
	for _, cr := range cfgRows {
		byCourse[cr.CourseID] = append(byCourse[cr.CourseID], cr.toConfig())
	}

	for _, r := range rows {
		crs := r.toCourse()
		crs.ExportConfigs = byCourse[r.ID]
		courses = append(courses, crs)
	}
	return courses, nil
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
