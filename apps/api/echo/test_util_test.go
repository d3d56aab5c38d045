package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tmalela/mafunzo/core/activity"
	"github.com/tmalela/mafunzo/core/attempt"
	"github.com/tmalela/mafunzo/core/course"
	"github.com/tmalela/mafunzo/core/export"
	"github.com/tmalela/mafunzo/core/exportlog"
	"github.com/tmalela/mafunzo/core/procedure"
	"github.com/tmalela/mafunzo/core/question"
	"github.com/tmalela/mafunzo/core/user"
	emailsvc "github.com/tmalela/mafunzo/services/email"
	dummydb "github.com/tmalela/mafunzo/storage/database/dummy"
	testutil "github.com/tmalela/mafunzo/tests"
)

var errMissingToken = `{"error":"missing or malformed jwt"}`

type testEnv struct {
	server  Server
	db      *dummydb.DB
	usrRepo user.Repository
	crsRepo course.Repository
	logRepo exportlog.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conf := testutil.NewConfig()
	conf.Debug = false // exercise production error rendering

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("newTestEnv() failed: %v", err)
	}

	env := &testEnv{
		db:      db,
		usrRepo: dummydb.NewUserRepository(db),
		crsRepo: dummydb.NewCourseRepository(db),
		logRepo: dummydb.NewExportLogRepository(db),
	}

	crsSvc := course.NewService(env.crsRepo)
	logSvc := exportlog.NewService(env.logRepo, testutil.Logger{})
	executor := export.NewExecutor(export.ExecutorDeps{
		Courses:  crsSvc,
		Attempts: attempt.NewService(dummydb.NewAttemptStore(db)),
		Logs:     logSvc,
		Mailer:   emailsvc.NewConsoleServiceMock(conf),
		Logger:   testutil.Logger{},
		Conf:     conf,
	})

	env.server = NewServer(ServerDeps{
		Conf:         conf,
		Logger:       testutil.Logger{},
		UserSvc:      user.NewService(env.usrRepo),
		CourseSvc:    crsSvc,
		QuestionSvc:  question.NewService(dummydb.NewQuestionRepository(db)),
		ProcedureSvc: procedure.NewService(dummydb.NewProcedureRepository(db)),
		ExportLogSvc: logSvc,
		ActivitySvc:  activity.NewService(dummydb.NewActivityRepository(db), testutil.Logger{}),
		Exporter:     executor,
	})

	emailsvc.ClearSentMessages()
	return env
}

func (env *testEnv) createAdmin(t *testing.T) user.User {
	t.Helper()
	return testutil.CreateUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "LeP@ss123", user.AllRoles, true)
}

func (env *testEnv) createTrainer(t *testing.T) user.User {
	t.Helper()
	return testutil.CreateUser(t, env.usrRepo, "Trainer", "train1", "train@test.cd", "LeP@ss123", user.TrainerRoles, true)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decodeBody() failed: %v; body: %s", err, rec.Body.String())
	}
}
