// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
	"github.com/unclebandit/mailto-campaigns/internal/metrics"
	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/queue"
	"github.com/unclebandit/mailto-campaigns/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Queue        queue.Queue
	Metrics      *metrics.Metrics
	Log          logrus.FieldLogger
	// Location fixes what "today" means for every campaign window.
	Location *time.Location
	// RandIntN picks slug letters; nil uses math/rand/v2.
	RandIntN func(n int) int
}

// ReservedSlugs collide with fixed routes.
var ReservedSlugs = map[string]bool{
	"admin":           true,
	"api":             true,
	"create-campaign": true,
	"static":          true,
	"metrics":         true,
	"healthz":         true,
}

const autoSlugLength = 6

// CreateCampaignInput is the body of POST /api/create-campaign.
type CreateCampaignInput struct {
	Name         string   `json:"campaign_name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required,max=5000"`
	Slug         string   `json:"slug" validate:"omitempty,slug"`
	CustomDomain string   `json:"custom_domain" validate:"omitempty,max=253"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,url"`
	ToEmail      []string `json:"to_email" validate:"min=1,dive,mailbox"`
	CCEmail      []string `json:"cc_email" validate:"dive,mailbox"`
	Subject      string   `json:"subject" validate:"required,max=500"`
	Body         string   `json:"body_text" validate:"required,max=20000"`
	StartDate    string   `json:"start_date" validate:"required,isodate"`
	EndDate      string   `json:"end_date" validate:"omitempty,isodate"`
}

func (in *CreateCampaignInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.CustomDomain = strings.TrimSpace(in.CustomDomain)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	in.ToEmail = trimAll(in.ToEmail)
	in.CCEmail = trimAll(in.CCEmail)
	in.Subject = strings.TrimSpace(in.Subject)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
}

// CreateCampaign validates the input and stores a new, active campaign.
func (s *CampaignService) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*model.Campaign, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Slug == "" {
		in.Slug = s.generateSlug()
	}
	if ReservedSlugs[in.Slug] {
		return nil, appErrors.NewValidation("slug", fmt.Sprintf("%q is reserved", in.Slug))
	}

	start, _ := parseDateField(in.StartDate)
	c := &model.Campaign{
		Name:         in.Name,
		Description:  in.Description,
		Slug:         in.Slug,
		CustomDomain: optional(in.CustomDomain),
		ThumbnailURL: optional(in.ThumbnailURL),
		ToEmail:      in.ToEmail,
		CCEmail:      in.CCEmail,
		Subject:      in.Subject,
		Body:         in.Body,
		StartDate:    start,
		IsActive:     true,
	}
	if c.CCEmail == nil {
		c.CCEmail = []string{}
	}
	if in.EndDate != "" {
		end, _ := parseDateField(in.EndDate)
		if end.Before(start) {
			return nil, appErrors.NewValidation("end_date", "end date cannot be before start date")
		}
		c.EndDate = &end
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		if errors.Is(err, appErrors.ErrSlugTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	s.Metrics.CampaignCreated()
	s.log().WithFields(logrus.Fields{"campaign_id": c.ID, "slug": c.Slug}).Info("campaign created")
	queue.PublishBestEffort(s.Queue, s.log(), queue.TopicCampaignCreated, queue.CampaignCreated{
		CampaignID: c.ID,
		Slug:       c.Slug,
	})
	return c, nil
}

// Today is the current calendar date in the configured zone.
func (s *CampaignService) Today() model.Date {
	return model.Today(s.location())
}

// Resolve looks up a public slug and classifies the campaign. An unknown slug
// is a state, not an error; only store failures are returned as errors.
func (s *CampaignService) Resolve(ctx context.Context, slug string, today model.Date) (Resolution, error) {
	c, err := s.CampaignRepo.GetBySlug(ctx, slug)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return Resolution{State: StateNotFound}, nil
		}
		return Resolution{}, fmt.Errorf("resolve %q: %w", slug, err)
	}
	return Resolution{State: Classify(c, today), Campaign: c}, nil
}

// ToggleResult reports where the row's toggle ended and the value the row
// should now display.
type ToggleResult struct {
	State    ToggleState `json:"state"`
	IsActive bool        `json:"is_active"`
}

// ToggleCampaign sets the active flag. On failure the result carries the
// rolled-back value alongside the error.
func (s *CampaignService) ToggleCampaign(ctx context.Context, id int, desired bool) (ToggleResult, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		s.Metrics.CampaignToggled(string(ToggleRolledBack))
		return ToggleResult{State: ToggleRolledBack, IsActive: !desired}, err
	}

	t := NewRowToggle(c.IsActive)
	if err := t.Begin(desired); err != nil {
		return ToggleResult{State: t.State(), IsActive: t.Value()}, err
	}

	if err := s.CampaignRepo.SetActive(ctx, id, desired); err != nil {
		_ = t.Rollback()
		s.Metrics.CampaignToggled(string(ToggleRolledBack))
		s.log().WithError(err).WithField("campaign_id", id).Warn("campaign toggle rolled back")
		return ToggleResult{State: t.State(), IsActive: t.Value()}, err
	}
	_ = t.Commit()

	s.Metrics.CampaignToggled(string(ToggleCommitted))
	s.log().WithFields(logrus.Fields{"campaign_id": id, "is_active": desired}).Info("campaign toggled")
	queue.PublishBestEffort(s.Queue, s.log(), queue.TopicCampaignToggled, queue.CampaignToggled{
		CampaignID: id,
		IsActive:   desired,
	})
	return ToggleResult{State: t.State(), IsActive: t.Value()}, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}

// ListCampaigns returns every campaign, newest first.
func (s *CampaignService) ListCampaigns(ctx context.Context) ([]*model.Campaign, error) {
	return s.CampaignRepo.List(ctx)
}

func (s *CampaignService) generateSlug() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	intn := s.RandIntN
	if intn == nil {
		intn = rand.Intn
	}
	b := make([]byte, autoSlugLength)
	for i := range b {
		b[i] = letters[intn(len(letters))]
	}
	return string(b)
}

func (s *CampaignService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *CampaignService) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func parseDateField(s string) (model.Date, error) {
	return model.ParseDate(s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
