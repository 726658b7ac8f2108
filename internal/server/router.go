// Package server assembles the HTTP router for the ratings backend.
package server

import (
	"context"
	"net/http"

	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/aylalah/ag-rms-sub000/internal/services/record"
	"github.com/aylalah/ag-rms-sub000/internal/services/upload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// auditLister is the read-only slice of the audit repository the router needs.
type auditLister interface {
	List(ctx context.Context, req pagination.Request) (*pagination.Result[models.AuditRecord], error)
}

// RouterOptions controls the construction of the API router. Entity services
// that are nil are simply not mounted, which keeps tests small.
type RouterOptions struct {
	Clients        *record.Service[models.Client]
	Contacts       *record.Service[models.Contact]
	Industries     *record.Service[models.Industry]
	Methodologies  *record.Service[models.Methodology]
	Questionnaires *record.Service[models.Questionnaire]
	Ratings        *record.Service[models.Rating]

	Logins  *iam.LoginService
	Uploads *upload.Pipeline
	Audits  auditLister
	Policy  *iam.Policy

	CORSOptions *cors.Options
	Middleware  []func(http.Handler) http.Handler
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles a chi.Router with shared middleware, the entity routes,
// login, uploads, audits, and the operational endpoints mounted.
func NewRouter(opts RouterOptions) (chi.Router, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Route("/api", func(r chi.Router) {
		if opts.Clients != nil {
			mountEntity(r, opts.Clients)
		}
		if opts.Contacts != nil {
			mountEntity(r, opts.Contacts)
		}
		if opts.Industries != nil {
			mountEntity(r, opts.Industries)
		}
		if opts.Methodologies != nil {
			mountEntity(r, opts.Methodologies)
		}
		if opts.Questionnaires != nil {
			mountEntity(r, opts.Questionnaires)
		}
		if opts.Ratings != nil {
			mountEntity(r, opts.Ratings)
		}

		if opts.Logins != nil {
			r.Post("/login", handleLogin(opts.Logins))
		}
		if opts.Uploads != nil {
			r.Post("/uploads", handleUploads(opts.Uploads))
		}
		if opts.Audits != nil && opts.Policy != nil {
			r.Get("/audits", handleAudits(opts.Audits, opts.Policy))
		}
	})

	if opts.Audits != nil && opts.Policy != nil {
		if err := opts.Policy.Register("audits", "read", iam.Allow(iam.RoleAdmin, iam.RoleHOD)); err != nil {
			return nil, err
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r, nil
}
