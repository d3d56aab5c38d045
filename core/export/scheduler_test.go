package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tmalela/mafunzo/core/course"
	"github.com/tmalela/mafunzo/core/exportlog"
	dummydb "github.com/tmalela/mafunzo/storage/database/dummy"
	testutil "github.com/tmalela/mafunzo/tests"
)

func newScheduler(t *testing.T, fix *exportFixture) *Scheduler {
	t.Helper()

	s := NewScheduler(SchedulerDeps{
		Courses:  course.NewService(fix.crsRepo),
		Logs:     exportlog.NewService(fix.logRepo, testutil.Logger{}),
		Executor: fix.executor,
		Logger:   testutil.Logger{},
		Conf:     testutil.NewConfig(),
	})
	s.now = func() time.Time { return testNow }
	return s
}

// seedScheduledCourse creates a course whose single config fires at testNow
// (Monday 08:00).
func seedScheduledCourse(t *testing.T, fix *exportFixture) {
	t.Helper()

	testutil.CreateCourse(t, fix.crsRepo, "form_1", "form_1", "scores_form_1", 0)
	testutil.CreateExportConfig(t, fix.crsRepo, "form_1", course.ExportConfig{
		ID:         "cfg-1",
		Enabled:    true,
		Recipients: []string{"a@test.cd"},
		Day:        1,
		Hour:       8,
		Minute:     0,
	})
	dummydb.SeedAttempts(fix.db, "scores_form_1",
		testutil.NewAttempt("Awa", "Kalala", "HGR", "Pediatrics", 10, 20, testNow.Add(-time.Hour)),
	)
}

func TestScheduler_tick_firesMatchingConfig(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)
	seedScheduledCourse(t, fix)

	s.tick(context.Background())

	assert.Len(t, fix.mailer.messages, 1)
	entries := fix.logEntries(t, exportlog.Filter{TriggeredBy: exportlog.TriggerScheduler})
	if assert.Len(t, entries, 1) {
		assert.True(t, entries[0].Success)
		assert.Equal(t, "form_1", entries[0].CourseName)
		assert.Empty(t, entries[0].Username)
	}
}

func TestScheduler_tick_skipsNonMatchingMinute(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)
	seedScheduledCourse(t, fix)
	s.now = func() time.Time { return testNow.Add(time.Minute) }

	s.tick(context.Background())

	assert.Empty(t, fix.mailer.messages)
	assert.Empty(t, fix.logEntries(t, exportlog.Filter{}))
}

func TestScheduler_tick_localLockPreventsDoubleFire(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)
	seedScheduledCourse(t, fix)

	ctx := context.Background()
	s.tick(ctx)
	s.tick(ctx) // same minute, same process

	assert.Len(t, fix.mailer.messages, 1)
	assert.Len(t, fix.logEntries(t, exportlog.Filter{}), 1)
}

func TestScheduler_acquire(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)

	key := lockKey("form_1", "cfg-1", testNow)
	assert.True(t, s.acquire(key, testNow))
	assert.False(t, s.acquire(key, testNow))

	// expired locks are evicted
	later := testNow.Add(s.lockTTL + time.Second)
	assert.True(t, s.acquire(key, later))
}

func Test_lockKey(t *testing.T) {
	assert.Equal(t, "form_1-cfg-1-2026-08-24-8-0", lockKey("form_1", "cfg-1", testNow))
	assert.NotEqual(t,
		lockKey("form_1", "cfg-1", testNow),
		lockKey("form_1", "cfg-1", testNow.Add(time.Minute)))
}

func TestScheduler_fire_crossInstanceDedup(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)
	seedScheduledCourse(t, fix)

	// another instance already sent this export two minutes ago
	ctx := context.Background()
	_, err := fix.logRepo.CreateEntry(ctx, exportlog.Entry{
		CourseID:    "form_1",
		CourseName:  "form_1",
		TriggeredBy: exportlog.TriggerScheduler,
		Success:     true,
		CreatedAt:   testNow.Add(-2 * time.Minute),
	})
	assert.NoError(t, err)

	s.tick(ctx)

	assert.Empty(t, fix.mailer.messages)
	assert.Len(t, fix.logEntries(t, exportlog.Filter{}), 1)
}

func TestScheduler_fire_dedupIgnoresOldAndFailedEntries(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)
	seedScheduledCourse(t, fix)

	ctx := context.Background()
	// outside the trailing window
	_, err := fix.logRepo.CreateEntry(ctx, exportlog.Entry{
		CourseID:    "form_1",
		CourseName:  "form_1",
		TriggeredBy: exportlog.TriggerScheduler,
		Success:     true,
		CreatedAt:   testNow.Add(-10 * time.Minute),
	})
	assert.NoError(t, err)
	// recent but failed
	_, err = fix.logRepo.CreateEntry(ctx, exportlog.Entry{
		CourseID:    "form_1",
		CourseName:  "form_1",
		TriggeredBy: exportlog.TriggerScheduler,
		CreatedAt:   testNow.Add(-time.Minute),
	})
	assert.NoError(t, err)

	s.tick(ctx)

	assert.Len(t, fix.mailer.messages, 1)
}

func TestScheduler_tick_failureDoesNotRetrySameMinute(t *testing.T) {
	fix := newFixture(t)
	fix.mailer.err = assert.AnError
	s := newScheduler(t, fix)
	seedScheduledCourse(t, fix)

	ctx := context.Background()
	s.tick(ctx)
	s.tick(ctx)

	entries := fix.logEntries(t, exportlog.Filter{})
	if assert.Len(t, entries, 1) {
		assert.False(t, entries[0].Success)
	}
}

func TestScheduler_tick_recoversFromPanic(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)
	seedScheduledCourse(t, fix)
	s.executor = nil

	assert.NotPanics(t, func() { s.tick(context.Background()) })
}

func TestScheduler_Start_stopsOnCancel(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	// nothing fires after cancellation
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, fix.mailer.messages)
}

func TestScheduler_startupJitter(t *testing.T) {
	fix := newFixture(t)
	s := newScheduler(t, fix)

	s.maxJitter = 0
	assert.Equal(t, time.Duration(0), s.startupJitter())

	s.maxJitter = 3 * time.Second
	for i := 0; i < 100; i++ {
		jitter := s.startupJitter()
		assert.True(t, jitter >= 0)
		assert.True(t, jitter < s.maxJitter)
	}

	// each scheduler carries its own seeded source
	assert.NotNil(t, s.rng)
	assert.NotNil(t, newScheduler(t, fix).rng)
}
