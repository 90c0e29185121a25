package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
	"github.com/unclebandit/mailto-campaigns/internal/metrics"
	"github.com/unclebandit/mailto-campaigns/internal/model"
	"github.com/unclebandit/mailto-campaigns/internal/queue"
	"github.com/unclebandit/mailto-campaigns/internal/repository"
	"github.com/unclebandit/mailto-campaigns/internal/visitor"
)

// LogRequestInput is the body of POST /api/log-request.
type LogRequestInput struct {
	CampaignID   *int   `json:"campaign_id"`
	Name         string `json:"name" validate:"required,max=200"`
	Place        string `json:"place" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,max=320,mailbox"`
	VisitorID    string `json:"visitor_id" validate:"max=128"`
	Platform     string `json:"platform" validate:"max=128"`
	DeviceType   string `json:"device_type" validate:"max=64"`
	ScreenWidth  *int   `json:"screen_width" validate:"omitempty,min=0"`
	ScreenHeight *int   `json:"screen_height" validate:"omitempty,min=0"`
	Language     string `json:"language" validate:"max=35"`
	Referrer     string `json:"referrer" validate:"max=2048"`
}

// normalize leaves Email untouched; surrounding whitespace fails the pattern.
func (in *LogRequestInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Place = strings.TrimSpace(in.Place)
	in.VisitorID = strings.TrimSpace(in.VisitorID)
}

type SubmissionService struct {
	SubmissionRepo repository.SubmissionRepositoryInterface
	CampaignRepo   repository.CampaignRepositoryInterface
	// Geo is consulted only when the edge sent no geography headers.
	Geo        visitor.GeoLocator
	GeoTimeout time.Duration
	Queue      queue.Queue
	Metrics    *metrics.Metrics
	Log        logrus.FieldLogger
	Location   *time.Location
}

// LogResult is a stored submission plus, when it targets a campaign, the
// composed message the visitor's mail client should open.
type LogResult struct {
	Submission *model.Submission
	Campaign   *model.Campaign
	Mailto     *Mailto
	ThanksURL  string
}

// Log validates, enriches and stores one submission. Validation failures
// never reach the store; a store failure is returned once and not retried.
func (s *SubmissionService) Log(ctx context.Context, in LogRequestInput, info visitor.Info) (*LogResult, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		s.Metrics.SubmissionRejected("validation")
		return nil, err
	}

	var campaign *model.Campaign
	if in.CampaignID != nil {
		c, err := s.CampaignRepo.GetByID(ctx, *in.CampaignID)
		if err != nil {
			if appErrors.IsNotFound(err) {
				s.Metrics.SubmissionRejected("validation")
				return nil, appErrors.NewValidation("campaign_id", "campaign does not exist")
			}
			s.Metrics.SubmissionRejected("store")
			return nil, fmt.Errorf("load campaign %d: %w", *in.CampaignID, err)
		}
		if Classify(c, model.Today(s.location())) != StateOpen {
			s.Metrics.SubmissionRejected("validation")
			return nil, appErrors.NewValidation("campaign_id", "campaign is not accepting submissions")
		}
		campaign = c
	}

	geo := s.locate(ctx, info)
	sub := &model.Submission{
		CampaignID:    in.CampaignID,
		Name:          in.Name,
		Place:         in.Place,
		Email:         in.Email,
		VisitorID:     in.VisitorID,
		DeviceType:    in.DeviceType,
		Platform:      in.Platform,
		ScreenWidth:   in.ScreenWidth,
		ScreenHeight:  in.ScreenHeight,
		Language:      in.Language,
		Referrer:      in.Referrer,
		Browser:       info.Browser,
		OS:            info.OS,
		TrafficSource: info.TrafficSource,
		IPAddress:     info.IPAddress,
		UserAgent:     info.UserAgent,
		City:          geo.City,
		Region:        geo.Region,
		Country:       geo.Country,
	}

	if err := s.SubmissionRepo.Create(ctx, sub); err != nil {
		s.Metrics.SubmissionRejected("store")
		return nil, fmt.Errorf("log submission: %w", err)
	}

	s.Metrics.SubmissionLogged(sub.TrafficSource)
	s.log().WithFields(logrus.Fields{
		"submission_id":  sub.ID,
		"campaign_id":    sub.CampaignID,
		"traffic_source": sub.TrafficSource,
	}).Info("submission logged")
	queue.PublishBestEffort(s.Queue, s.log(), queue.TopicSubmissionLogged, queue.SubmissionLogged{
		SubmissionID:  sub.ID,
		CampaignID:    sub.CampaignID,
		Country:       sub.Country,
		TrafficSource: sub.TrafficSource,
	})

	res := &LogResult{Submission: sub, Campaign: campaign}
	if campaign != nil {
		m := ComposeMailto(TemplateOf(campaign), Answers{Name: sub.Name, Place: sub.Place, Email: sub.Email})
		res.Mailto = &m
		res.ThanksURL = ThanksURL(campaign.Slug, sub.Name, campaign.Name, m)
	}
	return res, nil
}

// locate prefers edge headers and falls back to the lookup service. A failed
// lookup leaves every field nil.
func (s *SubmissionService) locate(ctx context.Context, info visitor.Info) visitor.Geo {
	if !info.Geo.Empty() || s.Geo == nil || info.IPAddress == visitor.Unknown {
		return info.Geo
	}
	timeout := s.GeoTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, err := s.Geo.Locate(ctx, info.IPAddress)
	if err != nil {
		s.log().WithError(err).Debug("geo lookup skipped")
		return visitor.Geo{}
	}
	return g
}

func (s *SubmissionService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *SubmissionService) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}
