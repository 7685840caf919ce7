package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/mindengage-labrank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-labrank/internal/eventlog"
	"github.com/mind-engage/mindengage-labrank/internal/lab"
	"github.com/mind-engage/mindengage-labrank/internal/logging"
	"github.com/mind-engage/mindengage-labrank/internal/metrics"
	"github.com/mind-engage/mindengage-labrank/internal/rbac"
)

// EventLog records and lists audit events; *eventlog.Repo satisfies it.
type EventLog interface {
	eventlog.Recorder
	EventLister
}

// Deps is everything the router mounts.
type Deps struct {
	Store     lab.Store
	Standings StandingsService
	Events    EventLog
	Auth      *auth.AuthService
	Policy    *rbac.AllowListPolicy
	Login     auth.LoginOptions
	Log       *slog.Logger

	EnableLocalAuth bool
	EnableMetrics   bool
	CORSOrigins     []string
	Majors          []string

	// Ready reports whether backing services are reachable; nil means always.
	Ready func(ctx context.Context) error
}

func NewRouter(d Deps) chi.Router {
	log := orDefault(d.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.Middleware(log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if d.EnableMetrics {
		r.Use(metrics.InstrumentHandler)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if d.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	if d.EnableLocalAuth {
		opts := d.Login
		if opts.Admins == nil {
			opts.Admins = d.Policy
		}
		r.Post("/auth/login", auth.LoginHandler(d.Auth, opts))
	}

	// Protected API (JWT → principal in context → policy)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))
		p := d.Policy

		pr.With(rbac.Require(p, rbac.PermLabView)).
			Get("/labs", ListLabsHandler(d.Standings, log))
		pr.With(rbac.Require(p, rbac.PermLabView)).
			Get("/labs/{labID}", GetLabStandingsHandler(d.Standings, log))

		pr.With(rbac.Require(p, rbac.PermApplicationViewOwn)).
			Get("/me/application", GetMyApplicationHandler(d.Store, log))
		pr.With(rbac.Require(p, rbac.PermApplicationWrite)).
			Put("/me/application", RegisterHandler(d.Store, d.Events, log))
		pr.With(rbac.Require(p, rbac.PermApplicationWrite)).
			Delete("/me/application", WithdrawHandler(d.Store, d.Events, log))

		pr.Route("/admin", func(ar chi.Router) {
			ar.With(rbac.Require(p, rbac.PermApplicantsViewAll)).
				Get("/applicants", RosterHandler(d.Standings, log))
			ar.With(rbac.Require(p, rbac.PermLabCapacity)).
				Patch("/labs/{labID}/capacity", UpdateCapacityHandler(d.Store, d.Events, log))
			ar.With(rbac.Require(p, rbac.PermLabImport)).
				Post("/labs/import", ImportLabsHandler(d.Store, d.Events, d.Majors, log))
			ar.With(rbac.RequireAny(p, rbac.PermEventsView, rbac.PermApplicantsViewAll)).
				Get("/events", EventsHandler(d.Events, log))
		})
	})

	return r
}
