package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailto-campaigns/internal/auth"
	"github.com/unclebandit/mailto-campaigns/internal/controller"
	"github.com/unclebandit/mailto-campaigns/internal/handler"
	"github.com/unclebandit/mailto-campaigns/internal/metrics"
	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/repository/repositorytest"
	"github.com/unclebandit/mailto-campaigns/internal/server"
	"github.com/unclebandit/mailto-campaigns/internal/service"
)

type okPinger struct{}

func (okPinger) PingContext(ctx context.Context) error { return nil }

func newRouter(t *testing.T) (http.Handler, *auth.Gate, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	m := metrics.New()
	renderer, err := handler.NewRenderer(log)
	require.NoError(t, err)
	gate, err := auth.NewGate(auth.Options{Password: "s3cret", Secret: "k"}, log)
	require.NoError(t, err)

	campaigns := repositorytest.NewCampaignRepo(&model.Campaign{
		ID: 1, Name: "Save Trees", Slug: "save-trees", ToEmail: []string{"x@y.com"},
		Subject: "S", Body: "B", StartDate: model.MustDate("2000-01-01"), IsActive: true,
	})
	subs := &repositorytest.SubmissionRepo{}
	campaignSvc := &service.CampaignService{CampaignRepo: campaigns, Metrics: m, Log: log}
	dashboardSvc := &service.DashboardService{CampaignRepo: campaigns, SubmissionRepo: subs, TopN: 5, ExportLimit: 5000}

	r := server.NewRouter(server.Deps{
		Campaigns:   &controller.CampaignController{CampaignService: campaignSvc, Log: log},
		Submissions: &controller.SubmissionController{SubmissionService: &service.SubmissionService{SubmissionRepo: subs, CampaignRepo: campaigns, Metrics: m, Log: log}, Log: log},
		Auth:        &controller.AuthController{Gate: gate, Metrics: m, Log: log},
		Export:      &controller.ExportController{DashboardService: dashboardSvc, Log: log},
		Pages:       &handler.CampaignHandler{Service: campaignSvc, Renderer: renderer},
		Admin:       &handler.AdminHandler{DashboardService: dashboardSvc, CampaignService: campaignSvc, Gate: gate, Renderer: renderer},
		Gate:        gate,
		Metrics:     m,
		DB:          okPinger{},
		Log:         log,
	})
	return r, gate, hook
}

func TestAdminRoutesAreGated(t *testing.T) {
	r, _, _ := newRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/create-campaign"},
		{http.MethodPost, "/api/toggle-campaign"},
		{http.MethodGet, "/api/export-csv"},
		{http.MethodGet, "/api/export-xlsx"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, w.Body.String())
	}

	for _, path := range []string{"/admin", "/admin/campaign/1", "/create-campaign"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/admin/login", w.Header().Get("Location"))
	}
}

func TestLoginThenDashboard(t *testing.T) {
	r, _, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin-login", strings.NewReader(`{"password":"s3cret"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Save Trees")
}

func TestPublicRoutes(t *testing.T) {
	r, _, hook := newRouter(t)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, "Search campaigns"},
		{"/save-trees", http.StatusOK, `id="campaign-form"`},
		{"/save-trees/thanks?name=Raj", http.StatusOK, "Thank you, Raj!"},
		{"/unknown-slug", http.StatusOK, "Campaign Not Found"},
		{"/healthz", http.StatusOK, `"ok"`},
		{"/metrics", http.StatusOK, "http_requests_total"},
		{"/a/b/c", http.StatusNotFound, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request completed", entry.Message)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "/a/b/c", entry.Data["path"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])
}

func TestLogRequestThroughRouter(t *testing.T) {
	r, _, _ := newRouter(t)

	body := `{"campaign_id":1,"name":"Raj","place":"Pune","email":"raj@x.com"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/log-request", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"thanks_url":"/save-trees/thanks?`)
}
