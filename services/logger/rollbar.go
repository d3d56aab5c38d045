package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/tmalela/mafunzo/core"
	"github.com/tmalela/mafunzo/core/user"
)

// RollbarLogger mirrors every message to the standard logger and reports it
// to Rollbar. A user.User passed among the args is attached to the Rollbar
// occurrence as the affected person rather than printed.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// log prints msg and args locally, then forwards them through report
// (one of the leveled rollbar functions). At most one user is attached per
// occurrence.
func (l RollbarLogger) log(report func(...interface{}), msg string, args []interface{}) {
	l.std.Println(msg)

	var personSet bool
	items := make([]interface{}, 0, len(args)+1)
	items = append(items, msg)
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok {
			if !personSet {
				rollbar.SetPerson(usr.ID, usr.Username, usr.Email)
				personSet = true
			}
			continue
		}
		l.std.Printf("%+v\n", arg)
		items = append(items, arg)
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	report(items...)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.Debug, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.Info, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.Warning, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.Error, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.Critical, msg, args)
	l.std.Fatal(msg)
}
