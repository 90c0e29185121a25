package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
	"github.com/unclebandit/mailto-campaigns/internal/metrics"
	"github.com/unclebandit/mailto-campaigns/internal/queue"
	"github.com/unclebandit/mailto-campaigns/internal/repository/repositorytest"
	"github.com/unclebandit/mailto-campaigns/internal/service"
)

func validCreateInput() service.CreateCampaignInput {
	return service.CreateCampaignInput{
		Name:        "Save Trees",
		Description: "Write to the council",
		Slug:        "save-trees",
		ToEmail:     []string{"council@city.gov"},
		CCEmail:     []string{"press@city.gov"},
		Subject:     "Support Us",
		Body:        "Please help",
		StartDate:   "2024-01-01",
		EndDate:     "2024-12-31",
	}
}

func newCampaignService(repo *repositorytest.CampaignRepo) (*service.CampaignService, *recordingQueue, *metrics.Metrics) {
	log, _ := test.NewNullLogger()
	q := &recordingQueue{}
	m := metrics.New()
	return &service.CampaignService{CampaignRepo: repo, Queue: q, Metrics: m, Log: log}, q, m
}

func TestCreateCampaign(t *testing.T) {
	repo := repositorytest.NewCampaignRepo()
	svc, q, m := newCampaignService(repo)

	c, err := svc.CreateCampaign(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, 1, c.ID)
	assert.True(t, c.IsActive)
	assert.Equal(t, "2024-01-01", c.StartDate.String())
	require.NotNil(t, c.EndDate)
	assert.Equal(t, "2024-12-31", c.EndDate.String())
	assert.Equal(t, []string{queue.TopicCampaignCreated}, q.topics)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CampaignsCreated))
}

func TestCreateCampaignGeneratesSlug(t *testing.T) {
	repo := repositorytest.NewCampaignRepo()
	svc, _, _ := newCampaignService(repo)
	svc.RandIntN = func(n int) int { return 2 }

	in := validCreateInput()
	in.Slug = ""
	in.EndDate = ""
	c, err := svc.CreateCampaign(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "cccccc", c.Slug)
	assert.Nil(t, c.EndDate)
}

func TestCreateCampaignValidation(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*service.CreateCampaignInput)
		field string
	}{
		{"missing name", func(in *service.CreateCampaignInput) { in.Name = "  " }, "campaign_name"},
		{"no recipients", func(in *service.CreateCampaignInput) { in.ToEmail = nil }, "to_email"},
		{"blank recipients", func(in *service.CreateCampaignInput) { in.ToEmail = []string{" "} }, "to_email"},
		{"bad recipient", func(in *service.CreateCampaignInput) { in.ToEmail = []string{"ok@x.io", "name@gmail"} }, "to_email"},
		{"bad cc", func(in *service.CreateCampaignInput) { in.CCEmail = []string{"nope"} }, "cc_email"},
		{"missing subject", func(in *service.CreateCampaignInput) { in.Subject = "" }, "subject"},
		{"missing body", func(in *service.CreateCampaignInput) { in.Body = "" }, "body_text"},
		{"missing start", func(in *service.CreateCampaignInput) { in.StartDate = "" }, "start_date"},
		{"non iso start", func(in *service.CreateCampaignInput) { in.StartDate = "01/06/2024" }, "start_date"},
		{"end before start", func(in *service.CreateCampaignInput) { in.EndDate = "2023-12-31" }, "end_date"},
		{"bad slug", func(in *service.CreateCampaignInput) { in.Slug = "no spaces" }, "slug"},
		{"reserved slug", func(in *service.CreateCampaignInput) { in.Slug = "admin" }, "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repositorytest.NewCampaignRepo()
			svc, q, _ := newCampaignService(repo)

			in := validCreateInput()
			tt.mod(&in)
			_, err := svc.CreateCampaign(context.Background(), in)

			ve, ok := appErrors.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.NotEmpty(t, ve.Message)
			assert.Empty(t, q.topics)

			list, _ := repo.List(context.Background())
			assert.Empty(t, list)
		})
	}
}

func TestCreateCampaignSlugTaken(t *testing.T) {
	repo := repositorytest.NewCampaignRepo()
	svc, _, _ := newCampaignService(repo)

	_, err := svc.CreateCampaign(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = svc.CreateCampaign(context.Background(), validCreateInput())
	assert.ErrorIs(t, err, appErrors.ErrSlugTaken)
}

func TestCreateCampaignStoreFailure(t *testing.T) {
	repo := repositorytest.NewCampaignRepo()
	repo.CreateErr = errors.New("disk full")
	svc, q, _ := newCampaignService(repo)

	_, err := svc.CreateCampaign(context.Background(), validCreateInput())
	require.Error(t, err)
	_, isValidation := appErrors.AsValidation(err)
	assert.False(t, isValidation)
	assert.Empty(t, q.topics)
}

func TestToggleCampaignCommits(t *testing.T) {
	repo := repositorytest.NewCampaignRepo(campaignWindow(true, "2024-01-01", nil))
	svc, q, m := newCampaignService(repo)

	res, err := svc.ToggleCampaign(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, service.ToggleCommitted, res.State)
	assert.False(t, res.IsActive)

	c, _ := repo.GetByID(context.Background(), 1)
	assert.False(t, c.IsActive)
	assert.Equal(t, []string{queue.TopicCampaignToggled}, q.topics)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CampaignToggles.WithLabelValues("committed")))
}

func TestToggleCampaignRollsBack(t *testing.T) {
	repo := repositorytest.NewCampaignRepo(campaignWindow(true, "2024-01-01", nil))
	repo.SetActiveErr = errors.New("timeout")
	svc, q, m := newCampaignService(repo)

	res, err := svc.ToggleCampaign(context.Background(), 1, false)
	require.Error(t, err)
	assert.Equal(t, service.ToggleRolledBack, res.State)
	assert.True(t, res.IsActive, "row shows the previous value again")
	assert.Empty(t, q.topics)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CampaignToggles.WithLabelValues("rolled_back")))
}

func TestToggleCampaignUnknownID(t *testing.T) {
	svc, _, _ := newCampaignService(repositorytest.NewCampaignRepo())

	res, err := svc.ToggleCampaign(context.Background(), 7, true)
	assert.True(t, appErrors.IsNotFound(err))
	assert.Equal(t, service.ToggleRolledBack, res.State)
	assert.False(t, res.IsActive)
}
