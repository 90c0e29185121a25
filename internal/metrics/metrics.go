package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	SubmissionsLogged    *prometheus.CounterVec
	SubmissionRejections *prometheus.CounterVec
	AdminLogins          *prometheus.CounterVec
	CampaignToggles      *prometheus.CounterVec
	CampaignsCreated     prometheus.Counter
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		SubmissionsLogged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "submissions_logged_total",
				Help: "Visitor submissions stored",
			},
			[]string{"traffic_source"},
		),
		SubmissionRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "submission_rejections_total",
				Help: "Visitor submissions refused before or at the store",
			},
			[]string{"reason"}, // validation, store
		),
		AdminLogins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_logins_total",
				Help: "Admin login attempts",
			},
			[]string{"result"}, // success, failed
		),
		CampaignToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaign_toggles_total",
				Help: "Active flag changes by outcome",
			},
			[]string{"result"}, // committed, rolled_back
		),
		CampaignsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "campaigns_created_total",
			Help: "Campaigns created",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records count and latency per route pattern, not raw path, so
// slugs do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) SubmissionLogged(trafficSource string) {
	if m == nil {
		return
	}
	m.SubmissionsLogged.WithLabelValues(trafficSource).Inc()
}

func (m *Metrics) SubmissionRejected(reason string) {
	if m == nil {
		return
	}
	m.SubmissionRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) AdminLogin(ok bool) {
	if m == nil {
		return
	}
	result := "failed"
	if ok {
		result = "success"
	}
	m.AdminLogins.WithLabelValues(result).Inc()
}

func (m *Metrics) CampaignToggled(result string) {
	if m == nil {
		return
	}
	m.CampaignToggles.WithLabelValues(result).Inc()
}

func (m *Metrics) CampaignCreated() {
	if m == nil {
		return
	}
	m.CampaignsCreated.Inc()
}
