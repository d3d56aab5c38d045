package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmalela/mafunzo/core/course"
	testutil "github.com/tmalela/mafunzo/tests"
)

func Test_courseApi_create(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	token := getToken(t, admin)

	body := marshallObj(t, course.NewCourse{
		ID:         "form_1",
		Name:       "Form 1",
		ScoreTable: "scores_form_1",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var crs course.Course
	decodeBody(t, rec, &crs)
	assert.Equal(t, "form_1", crs.ID)
	assert.Equal(t, "Form 1", crs.Name)

	t.Run("duplicate id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		body := marshallObj(t, course.NewCourse{ID: "form_2"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("trainer is forbidden", func(t *testing.T) {
		trainer := env.createTrainer(t)
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, trainer), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func Test_courseApi_query(t *testing.T) {
	env := newTestEnv(t)
	token := getToken(t, env.createAdmin(t))
	testutil.CreateCourse(t, env.crsRepo, "form_2", "Form 2", "scores_form_2", 1)
	testutil.CreateCourse(t, env.crsRepo, "form_1", "Form 1", "scores_form_1", 0)

	req, rec := newAuthRequest(http.MethodGet, "/v1/courses", token)
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var courses []course.Course
	decodeBody(t, rec, &courses)
	if assert.Len(t, courses, 2) {
		// ordered by position
		assert.Equal(t, "form_1", courses[0].ID)
		assert.Equal(t, "form_2", courses[1].ID)
	}
}

func Test_courseApi_retrieve(t *testing.T) {
	env := newTestEnv(t)
	token := getToken(t, env.createAdmin(t))
	testutil.CreateCourse(t, env.crsRepo, "form_1", "Form 1", "scores_form_1", 0)

	req, rec := newAuthRequest(http.MethodGet, "/v1/courses/form_1", token)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/nope", token)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"course not found"}`, rec.Body.String())
}

func Test_courseApi_update(t *testing.T) {
	env := newTestEnv(t)
	token := getToken(t, env.createAdmin(t))
	testutil.CreateCourse(t, env.crsRepo, "form_1", "Form 1", "scores_form_1", 0)

	body := marshallObj(t, course.UpdateCourse{Name: "Form One"})
	req, rec := newAuthRequest(http.MethodPut, "/v1/courses/form_1", token, body)
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var crs course.Course
	decodeBody(t, rec, &crs)
	assert.Equal(t, "Form One", crs.Name)
	assert.Equal(t, "scores_form_1", crs.ScoreTable) // untouched
}

func Test_courseApi_destroy(t *testing.T) {
	env := newTestEnv(t)
	token := getToken(t, env.createAdmin(t))
	testutil.CreateCourse(t, env.crsRepo, "form_1", "Form 1", "scores_form_1", 0)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/form_1", token)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/courses/form_1", token)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_courseApi_reorder(t *testing.T) {
	env := newTestEnv(t)
	token := getToken(t, env.createAdmin(t))
	testutil.CreateCourse(t, env.crsRepo, "form_1", "Form 1", "scores_form_1", 0)
	testutil.CreateCourse(t, env.crsRepo, "form_2", "Form 2", "scores_form_2", 1)

	body := marshallObj(t, course.ReorderRequest{IDs: []string{"form_2", "form_1"}})
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/reorder", token, body)
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/courses", token)
	env.server.ServeHTTP(rec, req)
	var courses []course.Course
	decodeBody(t, rec, &courses)
	if assert.Len(t, courses, 2) {
		assert.Equal(t, "form_2", courses[0].ID)
		assert.Equal(t, "form_1", courses[1].ID)
	}
}

func Test_courseApi_exportConfigs(t *testing.T) {
	env := newTestEnv(t)
	token := getToken(t, env.createAdmin(t))
	testutil.CreateCourse(t, env.crsRepo, "form_1", "Form 1", "scores_form_1", 0)

	body := marshallObj(t, course.NewExportConfig{
		Enabled:     true,
		Recipients:  []string{"a@test.cd"},
		Day:         1,
		Hour:        8,
		Minute:      0,
		Institution: "HGR",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/form_1/export-configs", token, body)
	env.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var cfg course.ExportConfig
	decodeBody(t, rec, &cfg)
	assert.NotEmpty(t, cfg.ID)
	assert.Equal(t, "HGR", cfg.Institution)

	t.Run("invalid recipient", func(t *testing.T) {
		body := marshallObj(t, course.NewExportConfig{Enabled: true, Recipients: []string{"lol"}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/form_1/export-configs", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad cadence", func(t *testing.T) {
		body := marshallObj(t, course.NewExportConfig{Enabled: true, Recipients: []string{"a@test.cd"}, Day: 7})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses/form_1/export-configs", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		body := marshallObj(t, course.NewExportConfig{
			Enabled:    false,
			Recipients: []string{"b@test.cd"},
			Day:        2,
			Hour:       9,
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/form_1/export-configs/"+cfg.ID, token, body)
		env.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var updated course.ExportConfig
		decodeBody(t, rec, &updated)
		assert.False(t, updated.Enabled)
		assert.Equal(t, []string{"b@test.cd"}, updated.Recipients)
	})

	t.Run("update unknown config", func(t *testing.T) {
		body := marshallObj(t, course.NewExportConfig{Enabled: true, Recipients: []string{"a@test.cd"}})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/form_1/export-configs/nope", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/form_1/export-configs/"+cfg.ID, token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
