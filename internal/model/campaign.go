// internal/model/campaign.go
package model

import "time"

type Campaign struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"campaign_name" json:"campaign_name"`
	Description  string    `db:"description" json:"description"`
	Slug         string    `db:"slug" json:"slug"`
	CustomDomain *string   `db:"custom_domain" json:"custom_domain,omitempty"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	ToEmail      []string  `db:"to_email" json:"to_email"`
	CCEmail      []string  `db:"cc_email" json:"cc_email"`
	Subject      string    `db:"subject" json:"subject"`
	Body         string    `db:"body" json:"body"`
	StartDate    Date      `db:"start_date" json:"start_date"`
	EndDate      *Date     `db:"end_date" json:"end_date"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CampaignCount pairs a campaign with its number of logged submissions.
type CampaignCount struct {
	Campaign *Campaign `json:"campaign"`
	Count    int       `json:"count"`
}

// LabelCount is a grouping bucket such as a country or a city.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
