// Package server wires handlers, controllers and middleware into one router.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/auth"
	"github.com/unclebandit/mailto-campaigns/internal/controller"
	"github.com/unclebandit/mailto-campaigns/internal/handler"
	"github.com/unclebandit/mailto-campaigns/internal/metrics"
)

type Deps struct {
	Campaigns   *controller.CampaignController
	Submissions *controller.SubmissionController
	Auth        *controller.AuthController
	Export      *controller.ExportController
	Pages       *handler.CampaignHandler
	Admin       *handler.AdminHandler
	Gate        *auth.Gate
	// Metrics may be nil; /metrics is then not mounted.
	Metrics *metrics.Metrics
	DB      handler.Pinger
	Log     logrus.FieldLogger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(d.Metrics.Middleware)

	if d.DB != nil {
		r.Get("/healthz", handler.Health(d.DB))
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/log-request", d.Submissions.LogRequest)
		r.Get("/campaigns", d.Campaigns.SearchCampaigns)
		r.Post("/admin-login", d.Auth.Login)
		r.Post("/admin-logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(d.Gate.RequireAdmin)
			r.Post("/create-campaign", d.Campaigns.CreateCampaign)
			r.Post("/toggle-campaign", d.Campaigns.ToggleCampaign)
			r.Get("/export-csv", d.Export.CSV)
			r.Get("/export-xlsx", d.Export.XLSX)
		})
	})

	r.Get("/admin/login", d.Admin.Login)
	r.Group(func(r chi.Router) {
		r.Use(d.Gate.RequireAdmin)
		r.Get("/admin", d.Admin.Dashboard)
		r.Get("/admin/campaign/{id}", d.Admin.CampaignDetail)
		r.Get("/create-campaign", d.Admin.CreateCampaign)
	})

	r.Get("/", d.Pages.Home)
	r.Get("/{slug}", d.Pages.Campaign)
	r.Get("/{slug}/thanks", d.Pages.Thanks)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		d.Pages.Renderer.NotFound(w)
	})
	return r
}

// RequestLogger writes one logrus line per request.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request completed")
				return
			}
			entry.Info("request completed")
		})
	}
}
