package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/repository"
)

// Dashboard is derived on every read; nothing here is stored.
type Dashboard struct {
	TotalCampaigns   int
	ActiveCampaigns  int
	TotalSubmissions int
	UniqueVisitors   int

	// CountsByCampaign has an entry for every campaign, zero when unused.
	CountsByCampaign map[int]int
	// Campaigns keeps the input order with counts attached.
	Campaigns       []model.CampaignCount
	TopCampaigns    []model.CampaignCount
	RecentCampaigns []model.CampaignCount
	TopCountries    []model.LabelCount
	TopCities       []model.LabelCount
	TrafficSources  []model.LabelCount
	ByDay           []model.LabelCount
}

// Aggregate groups submissions against campaigns. Empty inputs give a zero
// dashboard.
func Aggregate(campaigns []*model.Campaign, submissions []*model.Submission, topN int) Dashboard {
	d := Dashboard{
		TotalCampaigns:   len(campaigns),
		TotalSubmissions: len(submissions),
		CountsByCampaign: make(map[int]int, len(campaigns)),
		Campaigns:        make([]model.CampaignCount, 0, len(campaigns)),
	}

	for _, c := range campaigns {
		d.CountsByCampaign[c.ID] = 0
		if c.IsActive {
			d.ActiveCampaigns++
		}
	}
	for _, s := range submissions {
		if s.CampaignID != nil {
			if _, ok := d.CountsByCampaign[*s.CampaignID]; ok {
				d.CountsByCampaign[*s.CampaignID]++
			}
		}
	}
	for _, c := range campaigns {
		d.Campaigns = append(d.Campaigns, model.CampaignCount{Campaign: c, Count: d.CountsByCampaign[c.ID]})
	}

	top := append([]model.CampaignCount(nil), d.Campaigns...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	d.TopCampaigns = limit(top, topN)

	recent := append([]model.CampaignCount(nil), d.Campaigns...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Campaign.CreatedAt.After(recent[j].Campaign.CreatedAt)
	})
	d.RecentCampaigns = limit(recent, topN)

	d.TopCountries = limit(countLabels(submissions, func(s *model.Submission) string { return deref(s.Country) }), topN)
	d.TopCities = limit(countLabels(submissions, func(s *model.Submission) string { return deref(s.City) }), topN)
	d.TrafficSources = countLabels(submissions, func(s *model.Submission) string { return s.TrafficSource })
	d.UniqueVisitors = UniqueVisitors(submissions)
	return d
}

// UniqueVisitors counts distinct non-empty client visitor ids.
func UniqueVisitors(submissions []*model.Submission) int {
	seen := make(map[string]struct{})
	for _, s := range submissions {
		if s.VisitorID != "" {
			seen[s.VisitorID] = struct{}{}
		}
	}
	return len(seen)
}

// CountByDay buckets submissions by calendar date in loc, oldest first.
func CountByDay(submissions []*model.Submission, loc *time.Location) []model.LabelCount {
	counts := make(map[string]int)
	for _, s := range submissions {
		counts[model.DateOf(s.CreatedAt.In(loc)).String()]++
	}
	out := make([]model.LabelCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, model.LabelCount{Label: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// countLabels orders by count desc, ties by first appearance. Blank labels
// are skipped.
func countLabels(submissions []*model.Submission, label func(*model.Submission) string) []model.LabelCount {
	index := make(map[string]int)
	out := []model.LabelCount{}
	for _, s := range submissions {
		l := strings.TrimSpace(label(s))
		if l == "" {
			continue
		}
		if i, ok := index[l]; ok {
			out[i].Count++
			continue
		}
		index[l] = len(out)
		out = append(out, model.LabelCount{Label: l, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SubmissionFilter drives the admin submissions table.
type SubmissionFilter struct {
	Query   string
	Country string
	SortBy  string // name, country or date
	Desc    bool
}

// FilterSubmissions returns a new slice; the input is not reordered.
func FilterSubmissions(rows []*model.Submission, f SubmissionFilter) []*model.Submission {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]*model.Submission, 0, len(rows))
	for _, s := range rows {
		if f.Country != "" && deref(s.Country) != f.Country {
			continue
		}
		if q != "" {
			hay := strings.ToLower(s.Name + " " + s.Email + " " + s.Place)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, s)
	}

	var less func(a, b *model.Submission) bool
	switch f.SortBy {
	case "name":
		less = func(a, b *model.Submission) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "country":
		less = func(a, b *model.Submission) bool { return deref(a.Country) < deref(b.Country) }
	case "date":
		less = func(a, b *model.Submission) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// CampaignFilter drives the admin campaigns table.
type CampaignFilter struct {
	Query  string
	SortBy string // name, count, start, end or status
	Desc   bool
}

// FilterCampaigns matches names case-insensitively and sorts a copy of rows.
// An open-ended campaign sorts after every dated one on "end".
func FilterCampaigns(rows []model.CampaignCount, f CampaignFilter) []model.CampaignCount {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.CampaignCount, 0, len(rows))
	for _, r := range rows {
		if q != "" && !strings.Contains(strings.ToLower(r.Campaign.Name), q) {
			continue
		}
		out = append(out, r)
	}

	var less func(a, b model.CampaignCount) bool
	switch f.SortBy {
	case "name":
		less = func(a, b model.CampaignCount) bool {
			return strings.ToLower(a.Campaign.Name) < strings.ToLower(b.Campaign.Name)
		}
	case "count":
		less = func(a, b model.CampaignCount) bool { return a.Count < b.Count }
	case "start":
		less = func(a, b model.CampaignCount) bool { return a.Campaign.StartDate.Before(b.Campaign.StartDate) }
	case "end":
		less = func(a, b model.CampaignCount) bool {
			ae, be := a.Campaign.EndDate, b.Campaign.EndDate
			if ae == nil || be == nil {
				return ae != nil && be == nil
			}
			return ae.Before(*be)
		}
	case "status":
		less = func(a, b model.CampaignCount) bool { return !a.Campaign.IsActive && b.Campaign.IsActive }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// Countries lists distinct non-empty countries, sorted.
func Countries(rows []*model.Submission) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, s := range rows {
		if c := deref(s.Country); c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// SearchCampaigns matches names case-insensitively, keeping input order.
func SearchCampaigns(campaigns []*model.Campaign, q string, n int) []*model.Campaign {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []*model.Campaign
	for _, c := range campaigns {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
			if n > 0 && len(out) == n {
				break
			}
		}
	}
	return out
}

type DashboardService struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	SubmissionRepo repository.SubmissionRepositoryInterface
	// AggregateLimit caps how many recent submissions feed the groupings;
	// zero means all of them.
	AggregateLimit int
	ExportLimit    int
	TopN           int
	Location       *time.Location
}

// Load builds the admin dashboard. Totals come from COUNT queries so the
// aggregate cap only affects the groupings.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	campaigns, err := s.CampaignRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	subs, err := s.SubmissionRepo.ListRecent(ctx, s.AggregateLimit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	total, err := s.SubmissionRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	d := Aggregate(campaigns, subs, s.TopN)
	d.TotalSubmissions = total
	d.ByDay = CountByDay(subs, s.location())
	return &d, nil
}

// CampaignDetail is the per-campaign analysis page.
type CampaignDetail struct {
	Campaign       *model.Campaign
	Submissions    []*model.Submission
	UniqueVisitors int
	TopCountries   []model.LabelCount
	TopCities      []model.LabelCount
	TrafficSources []model.LabelCount
	ByDay          []model.LabelCount
	Countries      []string
}

func (s *DashboardService) CampaignDetail(ctx context.Context, id int, f SubmissionFilter) (*CampaignDetail, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subs, err := s.SubmissionRepo.ListByCampaign(ctx, id, s.AggregateLimit)
	if err != nil {
		return nil, fmt.Errorf("list submissions for campaign %d: %w", id, err)
	}

	agg := Aggregate([]*model.Campaign{c}, subs, s.TopN)
	return &CampaignDetail{
		Campaign:       c,
		Submissions:    FilterSubmissions(subs, f),
		UniqueVisitors: agg.UniqueVisitors,
		TopCountries:   agg.TopCountries,
		TopCities:      agg.TopCities,
		TrafficSources: agg.TrafficSources,
		ByDay:          CountByDay(subs, s.location()),
		Countries:      Countries(subs),
	}, nil
}

// ExportRows returns the newest submissions up to the export cap.
func (s *DashboardService) ExportRows(ctx context.Context) ([]*model.Submission, error) {
	return s.SubmissionRepo.ListRecent(ctx, s.ExportLimit)
}

func (s *DashboardService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}
