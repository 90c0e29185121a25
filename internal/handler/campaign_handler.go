// internal/handler/campaign_handler.go
package handler

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/service"
)

const (
	defaultThanksName     = "Friend"
	defaultThanksCampaign = "our campaign"
	homeResultLimit       = 5
)

// CampaignHandler serves the public pages.
type CampaignHandler struct {
	Service  *service.CampaignService
	Renderer *Renderer
}

type homePage struct {
	Query   string
	Results []*model.Campaign
}

// Home lists up to five campaigns whose name matches ?q=.
func (h *CampaignHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := homePage{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if data.Query != "" {
		campaigns, err := h.Service.ListCampaigns(r.Context())
		if err != nil {
			h.Renderer.ServerError(w, r, err)
			return
		}
		data.Results = service.SearchCampaigns(campaigns, data.Query, homeResultLimit)
	}
	h.Renderer.Render(w, http.StatusOK, "home.html", data)
}

type campaignPage struct {
	Resolution service.Resolution
}

// Campaign renders the form for an open campaign and an informational page
// for every other state.
func (h *CampaignHandler) Campaign(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(chi.URLParam(r, "slug"))
	res, err := h.Service.Resolve(r.Context(), slug, h.Service.Today())
	if err != nil {
		h.Renderer.ServerError(w, r, err)
		return
	}
	h.Renderer.Render(w, http.StatusOK, "campaign.html", campaignPage{Resolution: res})
}

type thanksPage struct {
	Name     string
	Campaign string
	RetryURL template.URL
}

// Thanks is the landing page after the mail client opened. It rebuilds the
// mailto link from the query so the visitor can retry.
func (h *CampaignHandler) Thanks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := thanksPage{
		Name:     orDefault(q.Get("name"), defaultThanksName),
		Campaign: orDefault(q.Get("campaign"), defaultThanksCampaign),
	}
	if to := service.SplitAddrs(q.Get("to")); len(to) > 0 {
		// MailtoURL only emits percent-encoded text after the scheme.
		data.RetryURL = template.URL(service.MailtoURL(to, service.SplitAddrs(q.Get("cc")), q.Get("subject"), q.Get("body")))
	}
	h.Renderer.Render(w, http.StatusOK, "thanks.html", data)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
