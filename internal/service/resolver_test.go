package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/repository/repositorytest"
	"github.com/unclebandit/mailto-campaigns/internal/service"
)

func campaignWindow(active bool, start string, end *model.Date) *model.Campaign {
	return &model.Campaign{ID: 1, Name: "Save Trees", Slug: "save-trees", IsActive: active, StartDate: model.MustDate(start), EndDate: end}
}

func TestClassify(t *testing.T) {
	today := model.MustDate("2024-06-01")

	tests := []struct {
		name string
		c    *model.Campaign
		want service.CampaignState
	}{
		{"paused wins over dates", campaignWindow(false, "2024-01-01", datep("2024-12-31")), service.StatePaused},
		{"paused even when expired", campaignWindow(false, "2020-01-01", datep("2020-02-01")), service.StatePaused},
		{"not started", campaignWindow(true, "2099-01-01", nil), service.StateNotStarted},
		{"expired", campaignWindow(true, "2024-01-01", datep("2024-05-01")), service.StateExpired},
		{"open without end", campaignWindow(true, "2024-01-01", nil), service.StateOpen},
		{"open on start day", campaignWindow(true, "2024-06-01", nil), service.StateOpen},
		{"open on end day", campaignWindow(true, "2024-01-01", datep("2024-06-01")), service.StateOpen},
		{"nil campaign", nil, service.StateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.Classify(tt.c, today))
		})
	}
}

func TestResolve(t *testing.T) {
	repo := repositorytest.NewCampaignRepo(campaignWindow(true, "2024-01-01", datep("2024-05-01")))
	svc := &service.CampaignService{CampaignRepo: repo}
	today := model.MustDate("2024-06-01")

	res, err := svc.Resolve(context.Background(), "save-trees", today)
	require.NoError(t, err)
	assert.Equal(t, service.StateExpired, res.State)
	assert.Equal(t, "Campaign Expired", res.Title())
	assert.Equal(t, "This campaign ended on 2024-05-01.", res.Message())

	res, err = svc.Resolve(context.Background(), "missing", today)
	require.NoError(t, err)
	assert.Equal(t, service.StateNotFound, res.State)
	assert.Nil(t, res.Campaign)
	assert.Equal(t, "Campaign Not Found", res.Title())
}

func TestResolveStoreFailure(t *testing.T) {
	repo := repositorytest.NewCampaignRepo()
	repo.GetErr = errors.New("connection refused")
	svc := &service.CampaignService{CampaignRepo: repo}

	_, err := svc.Resolve(context.Background(), "save-trees", model.MustDate("2024-06-01"))
	assert.Error(t, err)
}

func TestResolutionMessages(t *testing.T) {
	c := campaignWindow(true, "2099-01-01", nil)
	r := service.Resolution{State: service.StateNotStarted, Campaign: c}
	assert.Equal(t, "This campaign will start on 2099-01-01.", r.Message())

	r = service.Resolution{State: service.StatePaused, Campaign: c}
	assert.Equal(t, "This campaign is currently inactive.", r.Message())

	r = service.Resolution{State: service.StateOpen, Campaign: c}
	assert.True(t, r.Open())
	assert.Equal(t, "Save Trees", r.Title())
}
