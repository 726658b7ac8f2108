package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aylalah/ag-rms-sub000/internal/db/bunx"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	appmiddleware "github.com/aylalah/ag-rms-sub000/internal/middleware"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/aylalah/ag-rms-sub000/internal/services/audit"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/aylalah/ag-rms-sub000/internal/services/record"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	router  chi.Router
	decoder *iam.Decoder
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 0)
	require.NoError(t, err)
	require.NoError(t, repository.InitSchema(context.Background(), db))
	t.Cleanup(func() { _ = bunx.Close(db) })

	decoder, err := iam.NewDecoder("router-test-secret", time.Hour, 16)
	require.NoError(t, err)
	policy, err := iam.NewPolicy()
	require.NoError(t, err)

	auditRepo := repository.NewBunAuditRepository(db)
	recorder := audit.NewRecorder(auditRepo)
	industryRepo := repository.NewBunRecordRepository[models.Industry](db)

	industries, err := record.NewIndustryService(industryRepo, policy, recorder)
	require.NoError(t, err)

	router, err := NewRouter(RouterOptions{
		Industries: industries,
		Audits:     auditRepo,
		Policy:     policy,
		Middleware: []func(http.Handler) http.Handler{appmiddleware.Authn(decoder)},
	})
	require.NoError(t, err)

	return &routerFixture{router: router, decoder: decoder}
}

func (f *routerFixture) request(t *testing.T, method, path, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		token, err := f.decoder.Sign(&iam.Principal{ID: "u-" + role, Role: role})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.request(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouter_UnauthenticatedListIs401(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.request(t, http.MethodGet, "/api/industries", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	assert.Contains(t, envelope, "error")
}

func TestRouter_EntityLifecycle(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.request(t, http.MethodPost, "/api/industries", iam.RoleAdmin,
		`{"name":"Banking","description":"retail and commercial"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"message":"industry created successfully"}`, rr.Body.String())

	rr = f.request(t, http.MethodGet, "/api/industries?page=1&limit=5", iam.RoleClient, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var listBody struct {
		Industries struct {
			TotalDocs int               `json:"totalDocs"`
			Docs      []models.Industry `json:"docs"`
		} `json:"industries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listBody))
	require.Equal(t, 1, listBody.Industries.TotalDocs)
	id := listBody.Industries.Docs[0].ID

	// A partial update touches only the keys present in the body.
	rr = f.request(t, http.MethodPut, "/api/industries/"+id, iam.RoleHOD, `{"name":"Power"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = f.request(t, http.MethodGet, "/api/industries/"+id, iam.RoleAnalyst, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var oneBody struct {
		Industry models.Industry `json:"industry"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &oneBody))
	assert.Equal(t, "Power", oneBody.Industry.Name)
	assert.Equal(t, "retail and commercial", oneBody.Industry.Description)

	rr = f.request(t, http.MethodDelete, "/api/industries/"+id, iam.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.request(t, http.MethodGet, "/api/industries/"+id, iam.RoleAdmin, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_MutationRoleGates(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.request(t, http.MethodPost, "/api/industries", iam.RoleClient, `{"name":"Banking"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.request(t, http.MethodPost, "/api/industries", iam.RoleAdmin, `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_FormObject(t *testing.T) {
	f := newRouterFixture(t)

	rr := f.request(t, http.MethodGet, "/api/industries/form", iam.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		FormObject []struct {
			Field string `json:"field"`
			Type  string `json:"type"`
		} `json:"formObject"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotEmpty(t, body.FormObject)
	assert.Equal(t, "name", body.FormObject[0].Field)
}

func TestRouter_AuditsGatedToAdminAndHOD(t *testing.T) {
	f := newRouterFixture(t)

	// Seed one entry through a real mutation.
	rr := f.request(t, http.MethodPost, "/api/industries", iam.RoleAdmin, `{"name":"Banking"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.request(t, http.MethodGet, "/api/audits", iam.RoleClient, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.request(t, http.MethodGet, "/api/audits", iam.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Audits struct {
			TotalDocs int `json:"totalDocs"`
		} `json:"audits"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Audits.TotalDocs)
}
