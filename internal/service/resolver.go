package service

import (
	"fmt"

	"github.com/unclebandit/mailto-campaigns/internal/model"
)

// CampaignState is what a visitor sees at /{slug}.
type CampaignState int

const (
	StateNotFound CampaignState = iota
	StatePaused
	StateNotStarted
	StateExpired
	StateOpen
)

func (s CampaignState) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateNotStarted:
		return "not_started"
	case StateExpired:
		return "expired"
	case StateOpen:
		return "open"
	}
	return "not_found"
}

// Classify is a pure function of the active flag, the window and today.
// Paused wins over the dates, then NotStarted, then Expired.
func Classify(c *model.Campaign, today model.Date) CampaignState {
	switch {
	case c == nil:
		return StateNotFound
	case !c.IsActive:
		return StatePaused
	case today.Before(c.StartDate):
		return StateNotStarted
	case c.EndDate != nil && today.After(*c.EndDate):
		return StateExpired
	}
	return StateOpen
}

// Resolution is the outcome of looking up a public slug.
type Resolution struct {
	State    CampaignState
	Campaign *model.Campaign
}

func (r Resolution) Open() bool { return r.State == StateOpen }

// Title and Message are the fixed copy shown for closed states.
func (r Resolution) Title() string {
	switch r.State {
	case StatePaused:
		return "Campaign Paused"
	case StateNotStarted:
		return "Campaign Not Started"
	case StateExpired:
		return "Campaign Expired"
	case StateOpen:
		return r.Campaign.Name
	}
	return "Campaign Not Found"
}

func (r Resolution) Message() string {
	switch r.State {
	case StatePaused:
		return "This campaign is currently inactive."
	case StateNotStarted:
		return fmt.Sprintf("This campaign will start on %s.", r.Campaign.StartDate)
	case StateExpired:
		return fmt.Sprintf("This campaign ended on %s.", r.Campaign.EndDate)
	case StateOpen:
		return ""
	}
	return "This campaign link is invalid or expired."
}
