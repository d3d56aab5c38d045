package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/tmalela/mafunzo/core"
	"github.com/tmalela/mafunzo/core/attempt"
	"github.com/tmalela/mafunzo/core/course"
	"github.com/tmalela/mafunzo/core/user"
)

// NewConfig returns a self-contained test configuration; nothing is read from
// the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:    true,
		TestMode: true,
		Env:      "TEST",
		AppName:  "Mafunzo",
		Build:    "test",

		SecretKey:                 "secret",
		JWTExpirationDelta:        7 * 24 * time.Hour,
		JWTRefreshExpirationDelta: 4 * time.Hour,

		Mail: core.MailConfig{
			FromName:  "Mafunzo",
			FromEmail: "no-reply@test.cd",
		},
		Export: core.ExportSettings{
			ManualHourlyLimit: 10,
			DedupWindow:       5 * time.Minute,
			LockTTL:           2 * time.Minute,
			MaxStartupJitter:  0,
		},
	}
}

// Logger is a no-op core.Logger.
type Logger struct{}

var _ core.Logger = (*Logger)(nil)

func (Logger) Enable(bool)                  {}
func (Logger) Debug(string, ...interface{}) {}
func (Logger) Info(string, ...interface{})  {}
func (Logger) Warn(string, ...interface{})  {}
func (Logger) Error(string, ...interface{}) {}
func (Logger) Fatal(string, ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uname + "-id",
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	id, name, scoreTable string,
	position int,
) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		ID:         id,
		Name:       name,
		ScoreTable: scoreTable,
		Position:   position,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func CreateExportConfig(
	t *testing.T,
	repo course.Repository,
	courseID string,
	cfg course.ExportConfig,
) course.ExportConfig {
	t.Helper()

	now := time.Now().UTC()
	cfg.CourseID = courseID
	if cfg.ID == "" {
		cfg.ID = courseID + "-cfg"
	}
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	cfg, err := repo.CreateExportConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("createExportConfig() failed: %v", err)
	}
	return cfg
}

// NewAttempt builds an attempt fixture.
func NewAttempt(first, last, institution, service string, score, total int, createdAt time.Time) attempt.Attempt {
	return attempt.Attempt{
		ID:          first + "-" + last,
		FirstName:   first,
		LastName:    last,
		Institution: institution,
		Service:     service,
		Score:       score,
		Total:       total,
		CreatedAt:   createdAt,
	}
}
