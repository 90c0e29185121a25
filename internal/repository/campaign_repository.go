package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
	"github.com/unclebandit/mailto-campaigns/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id int) (*model.Campaign, error)
	GetBySlug(ctx context.Context, slug string) (*model.Campaign, error)
	List(ctx context.Context) ([]*model.Campaign, error)
	SetActive(ctx context.Context, id int, active bool) error
	Count(ctx context.Context) (total, active int, err error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, campaign_name, description, slug, custom_domain, thumbnail_url,
        to_email, cc_email, subject, body, start_date, end_date, is_active, created_at`

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	query := `
        INSERT INTO email_campaigns
        (campaign_name, description, slug, custom_domain, thumbnail_url,
         to_email, cc_email, subject, body, start_date, end_date, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at
    `
	var end any
	if c.EndDate != nil {
		end = c.EndDate.String()
	}
	cc := c.CCEmail
	if cc == nil {
		cc = []string{}
	}

	err := r.DB.QueryRowContext(ctx, query,
		c.Name, c.Description, c.Slug, c.CustomDomain, c.ThumbnailURL,
		pq.Array(c.ToEmail), pq.Array(cc), c.Subject, c.Body,
		c.StartDate.String(), end, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return appErrors.ErrSlugTaken
		}
		return err
	}
	c.CCEmail = cc
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*model.Campaign, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM email_campaigns WHERE id=$1`, id)
	c, err := scanCampaign(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) GetBySlug(ctx context.Context, slug string) (*model.Campaign, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM email_campaigns WHERE slug=$1`, slug)
	c, err := scanCampaign(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignSlugNotFound(slug)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context) ([]*model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+campaignColumns+` FROM email_campaigns ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// SetActive is a single-field update; concurrent toggles are last-write-wins.
func (r *CampaignRepository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE email_campaigns SET is_active=$1 WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewCampaignNotFound(id)
	}
	return nil
}

func (r *CampaignRepository) Count(ctx context.Context) (total, active int, err error) {
	err = r.DB.QueryRowContext(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active)
        FROM email_campaigns
    `).Scan(&total, &active)
	return total, active, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var (
		c      model.Campaign
		domain sql.NullString
		thumb  sql.NullString
		end    model.Date
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Slug, &domain, &thumb,
		pq.Array(&c.ToEmail), pq.Array(&c.CCEmail), &c.Subject, &c.Body,
		&c.StartDate, &end, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if domain.Valid {
		c.CustomDomain = &domain.String
	}
	if thumb.Valid {
		c.ThumbnailURL = &thumb.String
	}
	if !end.IsZero() {
		c.EndDate = &end
	}
	if c.CCEmail == nil {
		c.CCEmail = []string{}
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
