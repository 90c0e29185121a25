package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/repository/repositorytest"
	"github.com/unclebandit/mailto-campaigns/internal/service"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func seedCampaigns() []*model.Campaign {
	return []*model.Campaign{
		{ID: 1, Name: "Oldest", IsActive: true, CreatedAt: base.Add(-72 * time.Hour)},
		{ID: 2, Name: "Newest", IsActive: false, CreatedAt: base},
		{ID: 3, Name: "Middle", IsActive: true, CreatedAt: base.Add(-24 * time.Hour)},
	}
}

func sub(campaignID int, visitor, country, city string) *model.Submission {
	s := &model.Submission{CampaignID: intp(campaignID), VisitorID: visitor, TrafficSource: "direct", CreatedAt: base}
	if country != "" {
		s.Country = strp(country)
	}
	if city != "" {
		s.City = strp(city)
	}
	return s
}

func TestAggregateEmpty(t *testing.T) {
	d := service.Aggregate(nil, nil, 5)
	assert.Zero(t, d.TotalCampaigns)
	assert.Zero(t, d.UniqueVisitors)
	assert.Empty(t, d.CountsByCampaign)
	assert.Empty(t, d.TopCampaigns)
	assert.Empty(t, d.TopCountries)

	d = service.Aggregate(seedCampaigns(), nil, 5)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0}, d.CountsByCampaign)
	assert.Zero(t, d.UniqueVisitors)
	assert.Equal(t, 2, d.ActiveCampaigns)
}

func TestAggregateCountsAndOrdering(t *testing.T) {
	subs := []*model.Submission{
		sub(3, "v1", "India", "Pune"),
		sub(3, "v2", "India", "Mumbai"),
		sub(1, "v1", "Germany", "Berlin"),
		sub(3, "", "", ""),
		sub(99, "v3", "India", "Pune"),
	}

	d := service.Aggregate(seedCampaigns(), subs, 2)

	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 3}, d.CountsByCampaign)
	require.Len(t, d.TopCampaigns, 2)
	assert.Equal(t, 3, d.TopCampaigns[0].Campaign.ID)
	assert.Equal(t, 1, d.TopCampaigns[1].Campaign.ID)

	require.Len(t, d.RecentCampaigns, 2)
	assert.Equal(t, "Newest", d.RecentCampaigns[0].Campaign.Name)
	assert.Equal(t, "Middle", d.RecentCampaigns[1].Campaign.Name)

	assert.Equal(t, []model.LabelCount{{Label: "India", Count: 3}, {Label: "Germany", Count: 1}}, d.TopCountries)
	assert.Equal(t, []model.LabelCount{{Label: "Pune", Count: 2}, {Label: "Mumbai", Count: 1}}, d.TopCities)
	assert.Equal(t, 3, d.UniqueVisitors)
}

func TestAggregateTopCampaignsStableOnTies(t *testing.T) {
	d := service.Aggregate(seedCampaigns(), nil, 0)
	require.Len(t, d.TopCampaigns, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{d.TopCampaigns[0].Campaign.ID, d.TopCampaigns[1].Campaign.ID, d.TopCampaigns[2].Campaign.ID})
}

func TestCountByDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	subs := []*model.Submission{
		{CreatedAt: time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)}, // 2 June in IST
		{CreatedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)},
	}
	assert.Equal(t, []model.LabelCount{
		{Label: "2024-06-01", Count: 2},
		{Label: "2024-06-02", Count: 1},
	}, service.CountByDay(subs, ist))
}

func TestFilterSubmissions(t *testing.T) {
	rows := []*model.Submission{
		{Name: "zed", Email: "z@x.io", Place: "Pune", Country: strp("India"), CreatedAt: base},
		{Name: "Amy", Email: "amy@x.io", Place: "Berlin", Country: strp("Germany"), CreatedAt: base.Add(time.Hour)},
		{Name: "bob", Email: "bob@x.io", Place: "Goa", Country: strp("India"), CreatedAt: base.Add(-time.Hour)},
	}

	got := service.FilterSubmissions(rows, service.SubmissionFilter{Country: "India", SortBy: "name"})
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Name)
	assert.Equal(t, "zed", got[1].Name)

	got = service.FilterSubmissions(rows, service.SubmissionFilter{Query: "BERLIN"})
	require.Len(t, got, 1)
	assert.Equal(t, "Amy", got[0].Name)

	got = service.FilterSubmissions(rows, service.SubmissionFilter{SortBy: "date", Desc: true})
	assert.Equal(t, []string{"Amy", "zed", "bob"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.Equal(t, "zed", rows[0].Name, "input order untouched")

	assert.Equal(t, []string{"Germany", "India"}, service.Countries(rows))
}

func TestFilterCampaigns(t *testing.T) {
	rows := []model.CampaignCount{
		{Campaign: &model.Campaign{Name: "save Trees", StartDate: model.MustDate("2024-03-01"), EndDate: datep("2024-12-31"), IsActive: true}, Count: 4},
		{Campaign: &model.Campaign{Name: "Clean Rivers", StartDate: model.MustDate("2024-01-01"), IsActive: false}, Count: 9},
		{Campaign: &model.Campaign{Name: "Plant Trees", StartDate: model.MustDate("2024-02-01"), EndDate: datep("2024-06-30"), IsActive: true}, Count: 1},
	}
	names := func(cs []model.CampaignCount) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Campaign.Name
		}
		return out
	}

	tests := []struct {
		name string
		f    service.CampaignFilter
		want []string
	}{
		{"store order", service.CampaignFilter{}, []string{"save Trees", "Clean Rivers", "Plant Trees"}},
		{"search", service.CampaignFilter{Query: " TREES "}, []string{"save Trees", "Plant Trees"}},
		{"name", service.CampaignFilter{SortBy: "name"}, []string{"Clean Rivers", "Plant Trees", "save Trees"}},
		{"count desc", service.CampaignFilter{SortBy: "count", Desc: true}, []string{"Clean Rivers", "save Trees", "Plant Trees"}},
		{"start", service.CampaignFilter{SortBy: "start"}, []string{"Clean Rivers", "Plant Trees", "save Trees"}},
		{"end puts open last", service.CampaignFilter{SortBy: "end"}, []string{"Plant Trees", "save Trees", "Clean Rivers"}},
		{"status", service.CampaignFilter{SortBy: "status"}, []string{"Clean Rivers", "save Trees", "Plant Trees"}},
		{"no match", service.CampaignFilter{Query: "oceans"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(service.FilterCampaigns(rows, tt.f)))
		})
	}
	assert.Equal(t, "save Trees", rows[0].Campaign.Name, "input order untouched")
}

func TestSearchCampaigns(t *testing.T) {
	cs := seedCampaigns()
	assert.Nil(t, service.SearchCampaigns(cs, "  ", 5))
	got := service.SearchCampaigns(cs, "EST", 5)
	require.Len(t, got, 2)
	assert.Equal(t, "Oldest", got[0].Name)
	assert.Len(t, service.SearchCampaigns(cs, "e", 1), 1)
}

func TestDashboardServiceLoad(t *testing.T) {
	campaigns := repositorytest.NewCampaignRepo(seedCampaigns()...)
	subs := &repositorytest.SubmissionRepo{}
	for i := 0; i < 4; i++ {
		require.NoError(t, subs.Create(context.Background(), sub(1, "v", "India", "Pune")))
	}

	svc := &service.DashboardService{CampaignRepo: campaigns, SubmissionRepo: subs, AggregateLimit: 2, TopN: 5}
	d, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, d.TotalSubmissions, "totals ignore the aggregate cap")
	assert.Equal(t, 2, d.CountsByCampaign[1])
	assert.Equal(t, 3, d.TotalCampaigns)
	assert.Len(t, d.ByDay, 1)
}

func TestDashboardServiceCampaignDetail(t *testing.T) {
	campaigns := repositorytest.NewCampaignRepo(seedCampaigns()...)
	subs := &repositorytest.SubmissionRepo{}
	require.NoError(t, subs.Create(context.Background(), sub(1, "v1", "India", "Pune")))
	require.NoError(t, subs.Create(context.Background(), sub(2, "v2", "Germany", "Berlin")))

	svc := &service.DashboardService{CampaignRepo: campaigns, SubmissionRepo: subs, TopN: 5}
	detail, err := svc.CampaignDetail(context.Background(), 1, service.SubmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, detail.Submissions, 1)
	assert.Equal(t, []string{"India"}, detail.Countries)
	assert.Equal(t, 1, detail.UniqueVisitors)

	_, err = svc.CampaignDetail(context.Background(), 42, service.SubmissionFilter{})
	assert.Error(t, err)
}
