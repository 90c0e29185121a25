// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for any failed admin check. It never says which
// check failed.
var ErrUnauthorized = errors.New("unauthorized")

// ErrSlugTaken reports a unique-slug violation on campaign creation.
var ErrSlugTaken = errors.New("slug is already in use")

// ErrCampaignNotFound is returned when a campaign lookup matches no row.
type ErrCampaignNotFound struct {
	CampaignID int
	Slug       string
}

func (e *ErrCampaignNotFound) Error() string {
	if e.Slug != "" {
		return fmt.Sprintf("campaign with slug %q not found", e.Slug)
	}
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructors
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

func NewCampaignSlugNotFound(slug string) error {
	return &ErrCampaignNotFound{Slug: slug}
}

// ValidationError is a caller mistake. Message is safe to show to end users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsNotFound(err error) bool {
	var nf *ErrCampaignNotFound
	return errors.As(err, &nf)
}

// AsValidation unwraps err into a ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
