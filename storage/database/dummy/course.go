package dummydb

import (
	"context"
	"sort"

	"github.com/tmalela/mafunzo/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Position != courses[j].Position {
			return courses[i].Position < courses[j].Position
		}
		return courses[i].ID < courses[j].ID
	})
	return courses
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[crs.ID]; ok {
		return course.Course{}, course.ErrIDExists
	}
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(_ context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs.ExportConfigs = orig.ExportConfigs
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *courseRepository) ReorderCourses(_ context.Context, ids []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for pos, id := range ids {
		if crs, ok := repo.db.table[id]; ok {
			crs.Position = pos
		}
	}
	return nil
}

func (repo *courseRepository) FilterCoursesWithEnabledExport(_ context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var courses []course.Course
	for _, crs := range repo.query() {
		if crs.HasEnabledExport() {
			courses = append(courses, crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) CreateExportConfig(_ context.Context, cfg course.ExportConfig) (course.ExportConfig, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.table[cfg.CourseID]
	if !ok {
		return course.ExportConfig{}, course.ErrNotFound
	}
	crs.ExportConfigs = append(crs.ExportConfigs, cfg)
	return cfg, nil
}

func (repo *courseRepository) UpdateExportConfig(_ context.Context, cfg course.ExportConfig) (course.ExportConfig, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.table[cfg.CourseID]
	if !ok {
		return course.ExportConfig{}, course.ErrNotFound
	}
	for i, c := range crs.ExportConfigs {
		if c.ID == cfg.ID {
			crs.ExportConfigs[i] = cfg
			return cfg, nil
		}
	}
	return course.ExportConfig{}, course.ErrConfigNotFound
}

func (repo *courseRepository) DeleteExportConfig(_ context.Context, courseID, cfgID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.table[courseID]
	if !ok {
		return course.ErrNotFound
	}
	for i, c := range crs.ExportConfigs {
		if c.ID == cfgID {
			crs.ExportConfigs = append(crs.ExportConfigs[:i], crs.ExportConfigs[i+1:]...)
			return nil
		}
	}
	return course.ErrConfigNotFound
}
