package controller

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/service"
)

// searchResultLimit matches the home page suggestion list.
const searchResultLimit = 5

type CampaignController struct {
	CampaignService *service.CampaignService
	Log             logrus.FieldLogger
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CreateCampaignInput
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), body)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"campaign": campaign,
	})
}

func (c *CampaignController) ToggleCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       *int  `json:"id"`
		IsActive *bool `json:"is_active"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	if body.ID == nil || body.IsActive == nil {
		writeError(w, r, c.Log, errMalformed)
		return
	}

	res, err := c.CampaignService.ToggleCampaign(r.Context(), *body.ID, *body.IsActive)
	if err != nil {
		// The row must still learn which value to show again.
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			logFor(c.Log).WithError(err).WithField("campaign_id", *body.ID).Error("toggle campaign failed")
		}
		writeJSON(w, status, map[string]any{
			"success":   false,
			"error":     msg,
			"state":     res.State,
			"is_active": res.IsActive,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"state":     res.State,
		"is_active": res.IsActive,
	})
}

// SearchCampaigns backs the home page search box.
func (c *CampaignController) SearchCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := c.CampaignService.ListCampaigns(r.Context())
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	type result struct {
		Name string `json:"campaign_name"`
		Slug string `json:"slug"`
	}
	results := []result{}
	for _, m := range service.SearchCampaigns(campaigns, r.URL.Query().Get("q"), searchResultLimit) {
		results = append(results, result{Name: m.Name, Slug: m.Slug})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"campaigns": results,
	})
}
