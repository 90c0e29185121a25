// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/repository"
)

// CampaignRepo stores campaigns in memory. Err fields, when set, are
// returned by the matching method.
type CampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	nextID    int

	CreateErr    error
	SetActiveErr error
	GetErr       error
}

func NewCampaignRepo(campaigns ...*model.Campaign) *CampaignRepo {
	m := &CampaignRepo{campaigns: map[int]*model.Campaign{}, nextID: 1}
	for _, c := range campaigns {
		m.campaigns[c.ID] = c
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
	return m
}

func (m *CampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.campaigns {
		if existing.Slug == c.Slug {
			return appErrors.ErrSlugTaken
		}
	}
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.nextID++
	m.campaigns[c.ID] = c
	return nil
}

func (m *CampaignRepo) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *CampaignRepo) GetBySlug(ctx context.Context, slug string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, c := range m.campaigns {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, appErrors.NewCampaignSlugNotFound(slug)
}

func (m *CampaignRepo) List(ctx context.Context) ([]*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Campaign{}
	for id := m.nextID - 1; id > 0; id-- {
		if c, ok := m.campaigns[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *CampaignRepo) SetActive(ctx context.Context, id int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetActiveErr != nil {
		return m.SetActiveErr
	}
	c, ok := m.campaigns[id]
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	c.IsActive = active
	return nil
}

func (m *CampaignRepo) Count(ctx context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for _, c := range m.campaigns {
		if c.IsActive {
			active++
		}
	}
	return len(m.campaigns), active, nil
}

// SubmissionRepo keeps submissions newest first and counts Create calls,
// failed ones included.
type SubmissionRepo struct {
	mu      sync.Mutex
	rows    []*model.Submission
	Creates int

	CreateErr error
	ListErr   error
}

// NewSubmissionRepo seeds rows as given; pass them newest first.
func NewSubmissionRepo(rows ...*model.Submission) *SubmissionRepo {
	return &SubmissionRepo{rows: append([]*model.Submission(nil), rows...)}
}

func (m *SubmissionRepo) Create(ctx context.Context, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	s.ID = len(m.rows) + 1
	s.CreatedAt = time.Now()
	m.rows = append([]*model.Submission{s}, m.rows...)
	return nil
}

func (m *SubmissionRepo) ListRecent(ctx context.Context, limit int) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return capRows(m.rows, limit), nil
}

func (m *SubmissionRepo) ListByCampaign(ctx context.Context, campaignID, limit int) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Submission
	for _, s := range m.rows {
		if s.CampaignID != nil && *s.CampaignID == campaignID {
			out = append(out, s)
		}
	}
	return capRows(out, limit), nil
}

func (m *SubmissionRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

// Rows returns the stored submissions, newest first.
func (m *SubmissionRepo) Rows() []*model.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Submission(nil), m.rows...)
}

func capRows(rows []*model.Submission, limit int) []*model.Submission {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

var (
	_ repository.CampaignRepositoryInterface   = (*CampaignRepo)(nil)
	_ repository.SubmissionRepositoryInterface = (*SubmissionRepo)(nil)
)
