package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/tmalela/mafunzo/apps/api/echo"
	"github.com/tmalela/mafunzo/core"
	"github.com/tmalela/mafunzo/core/activity"
	"github.com/tmalela/mafunzo/core/attempt"
	"github.com/tmalela/mafunzo/core/course"
	"github.com/tmalela/mafunzo/core/export"
	"github.com/tmalela/mafunzo/core/exportlog"
	"github.com/tmalela/mafunzo/core/procedure"
	"github.com/tmalela/mafunzo/core/question"
	"github.com/tmalela/mafunzo/core/user"
	emailsvc "github.com/tmalela/mafunzo/services/email"
	logsvc "github.com/tmalela/mafunzo/services/logger"
	"github.com/tmalela/mafunzo/storage/database"
	sqlxrepos "github.com/tmalela/mafunzo/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	switch {
	case conf.Debug:
		mailSvc = emailsvc.NewConsoleService(conf)
	case conf.Mail.SendgridApiKey != "":
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	default:
		mailSvc = emailsvc.NewSMTPService(logger, conf)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db))
	questionSvc := question.NewService(sqlxrepos.NewQuestionRepository(db))
	procedureSvc := procedure.NewService(sqlxrepos.NewProcedureRepository(db))
	attemptSvc := attempt.NewService(sqlxrepos.NewAttemptStore(db))
	logSvc := exportlog.NewService(sqlxrepos.NewExportLogRepository(db), logger)
	activitySvc := activity.NewService(sqlxrepos.NewActivityRepository(db), logger)

	executor := export.NewExecutor(export.ExecutorDeps{
		Courses:  courseSvc,
		Attempts: attemptSvc,
		Logs:     logSvc,
		Mailer:   mailSvc,
		LegacyMailer: func(apiKey string) core.EmailService {
			return emailsvc.NewSendgridServiceWithKey(apiKey, logger, conf)
		},
		Logger: logger,
		Conf:   conf,
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Export Scheduler

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	if conf.Export.DisableScheduler {
		logger.Info("export scheduler disabled")
	} else {
		scheduler := export.NewScheduler(export.SchedulerDeps{
			Courses:  courseSvc,
			Logs:     logSvc,
			Executor: executor,
			Logger:   logger,
			Conf:     conf,
		})
		scheduler.Start(schedulerCtx)
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			CourseSvc:    courseSvc,
			QuestionSvc:  questionSvc,
			ProcedureSvc: procedureSvc,
			ExportLogSvc: logSvc,
			ActivitySvc:  activitySvc,
			Exporter:     executor,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stopScheduler()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
