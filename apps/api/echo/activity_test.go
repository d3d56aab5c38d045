package echoapi

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmalela/mafunzo/core/activity"
	"github.com/tmalela/mafunzo/core/course"
)

func Test_activityApi_trail(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	token := getToken(t, admin)

	// a successful create, a failed delete and an unauthenticated create
	body := marshallObj(t, course.NewCourse{ID: "form_1", Name: "Form 1", ScoreTable: "scores_form_1"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/courses/nope", token)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req, rec = newRequest(http.MethodPost, "/v1/courses", body)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	queryTrail := func(t *testing.T, rawQuery string) activity.Page {
		t.Helper()
		path := "/v1/activity-logs"
		if rawQuery != "" {
			path += "?" + rawQuery
		}
		req, rec := newAuthRequest(http.MethodGet, path, token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var page activity.Page
		decodeBody(t, rec, &page)
		return page
	}

	t.Run("records mutating requests most recent first", func(t *testing.T) {
		page := queryTrail(t, "")
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, []string{"DELETE /v1/courses/:id", "POST /v1/courses"}, page.Actions)

		if assert.Len(t, page.Logs, 3) {
			// unauthenticated attempt: warning, nobody attached
			assert.Equal(t, activity.LevelWarning, page.Logs[0].Level)
			assert.Equal(t, "POST /v1/courses", page.Logs[0].Action)
			assert.Empty(t, page.Logs[0].UserID)

			// failed delete: warning, attributed to the admin
			assert.Equal(t, activity.LevelWarning, page.Logs[1].Level)
			assert.Equal(t, "DELETE /v1/courses/:id", page.Logs[1].Action)
			assert.Equal(t, admin.ID, page.Logs[1].UserID)
			assert.Equal(t, admin.Email, page.Logs[1].UserEmail)
			assert.Contains(t, page.Logs[1].Message, "course not found")

			// successful create: info
			assert.Equal(t, activity.LevelInfo, page.Logs[2].Level)
			assert.Equal(t, "POST /v1/courses", page.Logs[2].Action)
			assert.Equal(t, admin.ID, page.Logs[2].UserID)
		}
	})

	t.Run("reads are not recorded", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, 3, queryTrail(t, "").Total)
	})

	t.Run("filters by action", func(t *testing.T) {
		page := queryTrail(t, url.Values{"action": {"POST /v1/courses"}}.Encode())
		assert.Equal(t, 2, page.Total)
	})

	t.Run("filters by level", func(t *testing.T) {
		page := queryTrail(t, url.Values{"level": {activity.LevelInfo}}.Encode())
		assert.Equal(t, 1, page.Total)
		if assert.Len(t, page.Logs, 1) {
			assert.Equal(t, "POST /v1/courses", page.Logs[0].Action)
		}
	})

	t.Run("searches", func(t *testing.T) {
		page := queryTrail(t, url.Values{"search": {"course not found"}}.Encode())
		assert.Equal(t, 1, page.Total)
	})

	t.Run("paginates", func(t *testing.T) {
		page := queryTrail(t, url.Values{"limit": {"1"}, "page": {"2"}}.Encode())
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		if assert.Len(t, page.Logs, 1) {
			assert.Equal(t, "DELETE /v1/courses/:id", page.Logs[0].Action)
		}
	})
}

func Test_activityApi_authz(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/activity-logs")
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, errMissingToken, rec.Body.String())
	})

	t.Run("trainer forbidden", func(t *testing.T) {
		token := getToken(t, env.createTrainer(t))
		req, rec := newAuthRequest(http.MethodGet, "/v1/activity-logs", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
