package dummydb

import (
	"sync"

	"github.com/tmalela/mafunzo/core/activity"
	"github.com/tmalela/mafunzo/core/attempt"
	"github.com/tmalela/mafunzo/core/course"
	"github.com/tmalela/mafunzo/core/exportlog"
	"github.com/tmalela/mafunzo/core/procedure"
	"github.com/tmalela/mafunzo/core/question"
	"github.com/tmalela/mafunzo/core/user"
)

type (
	DB struct {
		course      *courseTable
		attempt     *attemptTables
		exportLog   *exportLogTable
		activityLog *activityLogTable
		procedure   *procedureTable
		question    *questionTable
		user        *userTable
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	// attemptTables groups the per-course attempt collections, keyed by score
	// table reference.
	attemptTables struct {
		sync.RWMutex
		tables map[string][]attempt.Attempt
	}

	exportLogTable struct {
		sync.RWMutex
		entries []exportlog.Entry // append-only, chronological
	}

	activityLogTable struct {
		sync.RWMutex
		entries []activity.Entry // append-only, chronological
	}

	procedureTable struct {
		sync.RWMutex
		table map[string]*procedure.Procedure
	}

	questionTable struct {
		sync.RWMutex
		table map[string]*question.Question
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
)

func Open() (*DB, error) {
	db := &DB{
		course:      &courseTable{table: make(map[string]*course.Course)},
		attempt:     &attemptTables{tables: make(map[string][]attempt.Attempt)},
		exportLog:   &exportLogTable{},
		activityLog: &activityLogTable{},
		procedure:   &procedureTable{table: make(map[string]*procedure.Procedure)},
		user:        &userTable{table: make(map[string]*user.User)},
		question:    &questionTable{table: make(map[string]*question.Question)},
	}
	return db, nil
}
