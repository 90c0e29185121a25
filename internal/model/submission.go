// internal/model/submission.go
package model

import "time"

// Submission is one visitor form entry. Enrichment fields are best effort and
// may be empty, "unknown" or nil.
type Submission struct {
	ID         int    `db:"id" json:"id"`
	CampaignID *int   `db:"campaign_id" json:"campaign_id"`
	Name       string `db:"name" json:"name"`
	Place      string `db:"place" json:"place"`
	Email      string `db:"email" json:"email"`

	VisitorID     string `db:"visitor_id" json:"visitor_id,omitempty"`
	DeviceType    string `db:"device_type" json:"device_type,omitempty"`
	Platform      string `db:"platform" json:"platform,omitempty"`
	ScreenWidth   *int   `db:"screen_width" json:"screen_width,omitempty"`
	ScreenHeight  *int   `db:"screen_height" json:"screen_height,omitempty"`
	Language      string `db:"language" json:"language,omitempty"`
	Referrer      string `db:"referrer" json:"referrer,omitempty"`
	Browser       string `db:"browser" json:"browser"`
	OS            string `db:"os" json:"os"`
	TrafficSource string `db:"traffic_source" json:"traffic_source"`
	IPAddress     string `db:"ip_address" json:"ip_address"`
	UserAgent     string `db:"user_agent" json:"user_agent"`

	City    *string `db:"city" json:"city"`
	Region  *string `db:"region" json:"region"`
	Country *string `db:"country" json:"country"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
