package export

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tmalela/mafunzo/core"
	"github.com/tmalela/mafunzo/core/course"
	"github.com/tmalela/mafunzo/core/exportlog"
)

const tickInterval = time.Minute

type (
	// SchedulerDeps wires a Scheduler.
	SchedulerDeps struct {
		Courses  *course.Service
		Logs     *exportlog.Service
		Executor *Executor
		Logger   core.Logger
		Conf     *core.Config
	}

	// Scheduler sweeps every enabled export configuration once per minute and
	// fires the Executor for each whose weekly cadence matches the current
	// minute. Duplicate firing is bounded by an in-process lock set plus a
	// trailing-window export log lookup; the guard is best-effort, not an
	// atomic claim, so rare double-sends across instances are tolerated.
	Scheduler struct {
		courses  *course.Service
		logs     *exportlog.Service
		executor *Executor
		logger   core.Logger

		lockTTL     time.Duration
		dedupWindow time.Duration
		maxJitter   time.Duration

		mu    sync.Mutex
		locks map[string]time.Time // coordination key -> expiry

		rng *rand.Rand
		now func() time.Time
	}
)

func NewScheduler(deps SchedulerDeps) *Scheduler {
	return &Scheduler{
		courses:     deps.Courses,
		logs:        deps.Logs,
		executor:    deps.Executor,
		logger:      deps.Logger,
		lockTTL:     deps.Conf.Export.LockTTL,
		dedupWindow: deps.Conf.Export.DedupWindow,
		maxJitter:   deps.Conf.Export.MaxStartupJitter,
		locks:       make(map[string]time.Time),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// Start runs the timer until ctx is cancelled. The first tick is delayed by a
// random jitter to desynchronize multiple running instances.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.startupJitter()):
	}

	s.tick(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// startupJitter picks the random delay before the first tick. Each Scheduler
// seeds its own source; the global math/rand source is deterministic when
// left unseeded, which would give co-started instances the same delay.
func (s *Scheduler) startupJitter() time.Duration {
	if s.maxJitter <= 0 {
		return 0
	}
	return time.Duration(s.rng.Int63n(int64(s.maxJitter)))
}

// tick is one stateless sweep over the current configurations. It must never
// kill the timer: failures are logged and the next tick proceeds normally.
func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(fmt.Sprintf("export tick panic: %v", r))
		}
	}()

	now := s.now()
	courses, err := s.courses.FilterWithEnabledExport(ctx)
	if err != nil {
		s.logger.Error(fmt.Sprintf("loading exportable courses: %v", err), err)
		return
	}

	for _, crs := range courses {
		for _, cfg := range crs.EffectiveExportConfigs() {
			if !cfg.Enabled || !cfg.MatchesTime(now) {
				continue
			}
			if !s.acquire(lockKey(crs.ID, cfg.ID, now), now) {
				continue // this process already handled the key this minute
			}
			s.fire(ctx, crs, cfg, now)
		}
	}
}

// acquire inserts the coordination key into the in-process lock set, evicting
// expired keys on the way. It returns false when the key is already held.
func (s *Scheduler) acquire(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, expiry := range s.locks {
		if now.After(expiry) {
			delete(s.locks, k)
		}
	}
	if _, held := s.locks[key]; held {
		return false
	}
	s.locks[key] = now.Add(s.lockTTL)
	return true
}

// fire runs one configuration after the cross-instance check: a successful
// scheduled entry for this course+label within the trailing window means
// another instance already sent it.
func (s *Scheduler) fire(ctx context.Context, crs course.Course, cfg course.ExportConfig, now time.Time) {
	label := cfg.Label(crs.Name)

	sent, err := s.logs.HasRecentScheduledSuccess(ctx, crs.ID, label, now.Add(-s.dedupWindow))
	if err != nil {
		s.logger.Error(fmt.Sprintf("checking recent exports for %s: %v", label, err), err)
		return
	}
	if sent {
		s.logger.Info(fmt.Sprintf("export already sent by another instance: %s", label))
		return
	}

	s.logger.Info(fmt.Sprintf("scheduled export: %s - %02d:%02d", label, cfg.Hour, cfg.Minute))

	res, err := s.executor.Run(ctx, crs.ID, Context{TriggeredBy: exportlog.TriggerScheduler}, cfg.ID)
	if err != nil {
		s.logger.Error(fmt.Sprintf("scheduled export %s: %v", label, err), err)
		return
	}
	if res.Success {
		s.logger.Info(fmt.Sprintf("%s: %s", label, res.Message))
	} else {
		// no same-tick retry; the local lock stays until it expires
		s.logger.Error(fmt.Sprintf("%s: %s", label, res.Message))
	}
}

// lockKey buckets a (course, config) pair into the current calendar minute.
func lockKey(courseID, cfgID string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s-%d-%d", courseID, cfgID, now.Format("2006-01-02"), now.Hour(), now.Minute())
}
