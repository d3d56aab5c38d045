package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmalela/mafunzo/core/procedure"
)

func Test_procedureApi_crud(t *testing.T) {
	env := newTestEnv(t)
	token := getToken(t, env.createAdmin(t))

	t.Run("create", func(t *testing.T) {
		body := marshallObj(t, procedure.NewProcedure{
			ID:          "hand_hygiene",
			Title:       "Hand hygiene",
			Description: "Wash hands before and after each patient contact.",
			Position:    1,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/procedures", token, body)
		env.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var p procedure.Procedure
		decodeBody(t, rec, &p)
		assert.Equal(t, "hand_hygiene", p.ID)
		assert.Equal(t, procedure.DefaultCategory, p.Category) // defaulted
		assert.True(t, p.Published)                            // defaulted
	})

	t.Run("duplicate id", func(t *testing.T) {
		body := marshallObj(t, procedure.NewProcedure{
			ID:          "hand_hygiene",
			Title:       "Hand hygiene bis",
			Description: "Duplicate.",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/procedures", token, body)
		env.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"a procedure with this id already exists"}`, rec.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		body := marshallObj(t, procedure.NewProcedure{ID: "incomplete"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/procedures", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("trainer forbidden", func(t *testing.T) {
		trainerToken := getToken(t, env.createTrainer(t))
		req, rec := newAuthRequest(http.MethodGet, "/v1/procedures", trainerToken)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("query ordered by position", func(t *testing.T) {
		body := marshallObj(t, procedure.NewProcedure{
			ID:          "triage",
			Title:       "Emergency triage",
			Description: "Sort patients by severity on arrival.",
			Category:    "emergency",
			Position:    0,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/procedures", token, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/procedures", token)
		env.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var procedures []procedure.Procedure
		decodeBody(t, rec, &procedures)
		if assert.Len(t, procedures, 2) {
			assert.Equal(t, "triage", procedures[0].ID)
			assert.Equal(t, "hand_hygiene", procedures[1].ID)
		}
	})

	t.Run("query filters by category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/procedures?category=emergency", token)
		env.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var procedures []procedure.Procedure
		decodeBody(t, rec, &procedures)
		if assert.Len(t, procedures, 1) {
			assert.Equal(t, "triage", procedures[0].ID)
		}
	})

	t.Run("update unpublishes", func(t *testing.T) {
		published := false
		body := marshallObj(t, procedure.UpdateProcedure{Published: &published})
		req, rec := newAuthRequest(http.MethodPut, "/v1/procedures/triage", token, body)
		env.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var p procedure.Procedure
		decodeBody(t, rec, &p)
		assert.False(t, p.Published)
		assert.Equal(t, "Emergency triage", p.Title) // untouched
	})

	t.Run("query published only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/procedures?published=true", token)
		env.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var procedures []procedure.Procedure
		decodeBody(t, rec, &procedures)
		if assert.Len(t, procedures, 1) {
			assert.Equal(t, "hand_hygiene", procedures[0].ID)
		}
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/procedures/nope", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"procedure not found"}`, rec.Body.String())
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/procedures/triage", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/procedures/triage", token)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
