package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tmalela/mafunzo/core"
)

var (
	// errors
	ErrNotFound       = errors.New("course not found")
	ErrConfigNotFound = errors.New("export configuration not found")
	ErrIDExists       = errors.New("a course with this id already exists")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// QueryAllCourses returns all courses ordered by position, with their
		// export configurations loaded.
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error
		// ReorderCourses persists positions following the order of ids.
		ReorderCourses(ctx context.Context, ids []string) error
		// FilterCoursesWithEnabledExport returns courses having at least one
		// enabled export configuration, modern or legacy.
		FilterCoursesWithEnabledExport(ctx context.Context) ([]Course, error)

		CreateExportConfig(ctx context.Context, cfg ExportConfig) (ExportConfig, error)
		UpdateExportConfig(ctx context.Context, cfg ExportConfig) (ExportConfig, error)
		DeleteExportConfig(ctx context.Context, courseID, cfgID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		ID:         core.CleanString(nc.ID, true /* lower */),
		Name:       core.CleanString(nc.Name),
		ScoreTable: core.CleanString(nc.ScoreTable, true /* lower */),
		Position:   nc.Position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Name != "" {
		crs.Name = core.CleanString(uc.Name)
	}
	if uc.ScoreTable != "" {
		crs.ScoreTable = core.CleanString(uc.ScoreTable, true /* lower */)
	}
	if uc.Position != nil {
		crs.Position = *uc.Position
	}
	if uc.LegacyExport != nil {
		crs.LegacyExport = *uc.LegacyExport
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

func (svc *Service) Reorder(ctx context.Context, ids []string) error {
	return svc.repo.ReorderCourses(ctx, ids)
}

func (svc *Service) FilterWithEnabledExport(ctx context.Context) ([]Course, error) {
	return svc.repo.FilterCoursesWithEnabledExport(ctx)
}

func (svc *Service) AddExportConfig(ctx context.Context, courseID string, nec NewExportConfig) (ExportConfig, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return ExportConfig{}, err
	}
	now := time.Now().UTC()
	cfg := ExportConfig{
		ID:          uuid.New().String(),
		CourseID:    courseID,
		Enabled:     nec.Enabled,
		Recipients:  cleanRecipients(nec.Recipients),
		APIKey:      core.CleanString(nec.APIKey),
		Day:         nec.Day,
		Hour:        nec.Hour,
		Minute:      nec.Minute,
		Institution: core.CleanString(nec.Institution),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateExportConfig(ctx, cfg)
}

func (svc *Service) UpdateExportConfig(ctx context.Context, courseID, cfgID string, nec NewExportConfig) (ExportConfig, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return ExportConfig{}, err
	}
	var cfg ExportConfig
	var found bool
	for _, c := range crs.ExportConfigs {
		if c.ID == cfgID {
			cfg, found = c, true
			break
		}
	}
	if !found {
		return ExportConfig{}, ErrConfigNotFound
	}
	cfg.Enabled = nec.Enabled
	cfg.Recipients = cleanRecipients(nec.Recipients)
	cfg.APIKey = core.CleanString(nec.APIKey)
	cfg.Day = nec.Day
	cfg.Hour = nec.Hour
	cfg.Minute = nec.Minute
	cfg.Institution = core.CleanString(nec.Institution)
	cfg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateExportConfig(ctx, cfg)
}

func (svc *Service) DeleteExportConfig(ctx context.Context, courseID, cfgID string) error {
	return svc.repo.DeleteExportConfig(ctx, courseID, cfgID)
}

func cleanRecipients(recipients []string) []string {
	cleaned := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = core.CleanString(r, true /* lower */); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	return cleaned
}
