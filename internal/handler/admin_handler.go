package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailto-campaigns/internal/auth"
	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/service"
)

// AdminHandler serves the admin pages. Every route except Login sits behind
// Gate.RequireAdmin.
type AdminHandler struct {
	DashboardService *service.DashboardService
	CampaignService  *service.CampaignService
	Gate             *auth.Gate
	Renderer         *Renderer
}

// Login sends an already authenticated admin straight to the dashboard.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Gate.IsAdmin(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.Renderer.Render(w, http.StatusOK, "login.html", nil)
}

type dashboardPage struct {
	Dashboard *service.Dashboard
	Campaigns []model.CampaignCount
	Filter    service.CampaignFilter
}

// Dashboard takes ?q=, ?sort=name|count|start|end|status and ?dir=asc|desc
// for the campaigns table. With no sort the store order is kept.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.DashboardService.Load(r.Context())
	if err != nil {
		h.Renderer.ServerError(w, r, err)
		return
	}
	q := r.URL.Query()
	f := service.CampaignFilter{
		Query:  strings.TrimSpace(q.Get("q")),
		SortBy: q.Get("sort"),
		Desc:   q.Get("dir") == "desc",
	}
	h.Renderer.Render(w, http.StatusOK, "dashboard.html", dashboardPage{
		Dashboard: d,
		Campaigns: service.FilterCampaigns(d.Campaigns, f),
		Filter:    f,
	})
}

type detailPage struct {
	Detail *service.CampaignDetail
	Filter service.SubmissionFilter
}

// CampaignDetail takes ?q=, ?country=, ?sort=name|country|date and ?dir=asc|desc.
func (h *AdminHandler) CampaignDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.Renderer.NotFound(w)
		return
	}

	q := r.URL.Query()
	f := service.SubmissionFilter{
		Query:   strings.TrimSpace(q.Get("q")),
		Country: q.Get("country"),
		SortBy:  q.Get("sort"),
		Desc:    q.Get("dir") != "asc",
	}
	if f.SortBy == "" {
		f.SortBy = "date"
	}

	detail, err := h.DashboardService.CampaignDetail(r.Context(), id, f)
	if err != nil {
		if appErrors.IsNotFound(err) {
			h.Renderer.NotFound(w)
			return
		}
		h.Renderer.ServerError(w, r, err)
		return
	}
	h.Renderer.Render(w, http.StatusOK, "campaign_detail.html", detailPage{Detail: detail, Filter: f})
}

type createPage struct {
	Today string
}

func (h *AdminHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	h.Renderer.Render(w, http.StatusOK, "create_campaign.html", createPage{Today: h.CampaignService.Today().String()})
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports whether the datastore answers within two seconds.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if err := db.PingContext(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
