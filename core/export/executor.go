package export

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tmalela/mafunzo/core"
	"github.com/tmalela/mafunzo/core/attempt"
	"github.com/tmalela/mafunzo/core/course"
	"github.com/tmalela/mafunzo/core/exportlog"
)

type (
	// Context identifies how and by whom an export was triggered.
	Context struct {
		TriggeredBy string // exportlog.TriggerManual | exportlog.TriggerScheduler
		UserID      string
		Username    string
	}

	// Result is the aggregated outcome of one Run call.
	Result struct {
		Success        bool   `json:"success"`
		Message        string `json:"message"`
		RecipientCount int    `json:"recipient_count,omitempty"`
	}

	// ExecutorDeps wires an Executor.
	ExecutorDeps struct {
		Courses  *course.Service
		Attempts *attempt.Service
		Logs     *exportlog.Service
		Mailer   core.EmailService
		// LegacyMailer builds a delivery channel bound to a per-config API key
		// (the legacy Sendgrid credential); nil disables that path.
		LegacyMailer func(apiKey string) core.EmailService
		Logger       core.Logger
		Conf         *core.Config
	}

	// Executor orchestrates one export: rate-limit check (manual only),
	// aggregate, render, deliver, log.
	Executor struct {
		courses      *course.Service
		attempts     *attempt.Service
		logs         *exportlog.Service
		mailer       core.EmailService
		legacyMailer func(apiKey string) core.EmailService
		logger       core.Logger
		manualLimit  int
		now          func() time.Time
	}
)

func NewExecutor(deps ExecutorDeps) *Executor {
	return &Executor{
		courses:      deps.Courses,
		attempts:     deps.Attempts,
		logs:         deps.Logs,
		mailer:       deps.Mailer,
		legacyMailer: deps.LegacyMailer,
		logger:       deps.Logger,
		manualLimit:  deps.Conf.Export.ManualHourlyLimit,
		now:          time.Now,
	}
}

// Run executes the export of a course. With a configID, exactly that
// configuration runs; otherwise every enabled configuration runs
// independently, and one configuration's failure does not abort its siblings.
//
// Sentinel errors (course.ErrNotFound, ErrConfigNotFound, ErrNoConfigs,
// *RateLimitedError) report conditions under which no send was attempted;
// per-configuration failures are folded into the Result and the export log.
func (ex *Executor) Run(ctx context.Context, courseID string, ectx Context, configID string) (Result, error) {
	crs, err := ex.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return Result{}, err
		}
		return Result{}, errors.Wrap(err, "finding course")
	}

	if ectx.TriggeredBy == exportlog.TriggerManual {
		count, err := ex.logs.ManualCountSince(ctx, crs.ID, ex.now().Add(-time.Hour))
		if err != nil {
			return Result{}, errors.Wrap(err, "checking rate limit")
		}
		if count >= ex.manualLimit {
			return Result{}, &RateLimitedError{Limit: ex.manualLimit}
		}
	}

	configs := crs.EffectiveExportConfigs()
	if len(configs) == 0 {
		return Result{}, ErrNoConfigs
	}

	if configID != "" {
		for _, cfg := range configs {
			if cfg.ID == configID {
				return ex.runConfig(ctx, crs, cfg, ectx), nil
			}
		}
		return Result{}, ErrConfigNotFound
	}

	enabled := configs[:0:0]
	for _, cfg := range configs {
		if cfg.Enabled {
			enabled = append(enabled, cfg)
		}
	}
	if len(enabled) == 0 {
		return Result{}, ErrNoConfigs
	}

	var successCount, totalRecipients int
	var errs []string
	for _, cfg := range enabled {
		res := ex.runConfig(ctx, crs, cfg, ectx)
		if res.Success {
			successCount++
			totalRecipients += res.RecipientCount
		} else {
			errs = append(errs, res.Message)
		}
	}

	if successCount == 0 {
		return Result{Message: strings.Join(errs, "; ")}, nil
	}
	return Result{
		Success:        true,
		Message:        fmt.Sprintf("%d/%d report(s) sent to %d recipient(s)", successCount, len(enabled), totalRecipients),
		RecipientCount: totalRecipients,
	}, nil
}

// runConfig executes a single configuration end to end. Every failure past
// the basic validation checks is recorded in the export log; validation
// rejections are not, since no send was attempted.
func (ex *Executor) runConfig(ctx context.Context, crs course.Course, cfg course.ExportConfig, ectx Context) Result {
	if !cfg.Enabled {
		return Result{Message: "export is disabled"}
	}
	if len(cfg.Recipients) == 0 {
		return Result{Message: "no recipients configured"}
	}

	label := cfg.Label(crs.Name)
	entry := exportlog.Entry{
		CourseID:    crs.ID,
		CourseName:  label,
		Recipients:  cfg.Recipients,
		TriggeredBy: ectx.TriggeredBy,
		UserID:      ectx.UserID,
		Username:    ectx.Username,
	}
	fail := func(msg string) Result {
		e := entry
		e.ErrorMessage = msg
		ex.logs.Record(ctx, e)
		return Result{Message: msg}
	}

	attempts, err := ex.attempts.BestScores(ctx, crs.ScoreTable, cfg.Institution)
	if err != nil {
		return fail(fmt.Sprintf("fetching attempts: %v", err))
	}
	if len(attempts) == 0 {
		msg := "no participants found"
		if cfg.Institution != "" {
			msg = "no participants found for " + cfg.Institution
		}
		return fail(msg)
	}

	now := ex.now()
	doc, err := RenderReport(crs.Name, cfg.Institution, attempts, now)
	if err != nil {
		return fail(fmt.Sprintf("rendering report: %v", err))
	}

	msg := reportEmail(crs.Name, label, cfg, doc, now)
	mailer := ex.mailer
	if cfg.APIKey != "" && ex.legacyMailer != nil {
		mailer = ex.legacyMailer(cfg.APIKey)
	}
	if err = mailer.SendMessage(msg); err != nil {
		return fail(fmt.Sprintf("sending report: %v", err))
	}

	ok := entry
	ok.Success = true
	ex.logs.Record(ctx, ok)

	resMsg := fmt.Sprintf("report sent to %d recipient(s)", len(cfg.Recipients))
	if cfg.Institution != "" {
		resMsg = fmt.Sprintf("report (%s) sent to %d recipient(s)", cfg.Institution, len(cfg.Recipients))
	}
	return Result{Success: true, Message: resMsg, RecipientCount: len(cfg.Recipients)}
}

func reportEmail(courseName, label string, cfg course.ExportConfig, doc *bytes.Buffer, now time.Time) *core.EmailMessage {
	date := FormatDate(now)
	to := make([]mail.Address, 0, len(cfg.Recipients))
	for _, r := range cfg.Recipients {
		to = append(to, mail.Address{Address: r})
	}
	msg := &core.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Participation report: %s - %s", label, date),
		BodyStr: fmt.Sprintf("Please find attached the participation report of %s.\n\nRegards,", date),
	}
	msg.Attachments = append(msg.Attachments, core.Attachment{
		Content:     doc,
		ContentType: "application/pdf",
		Filename:    ReportFilename(courseName, cfg.Institution, now),
	})
	return msg
}
