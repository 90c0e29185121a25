package repository

import (
	"context"
	"database/sql"

	"github.com/unclebandit/mailto-campaigns/internal/model"
)

// SubmissionRepositoryInterface defines methods used by services
type SubmissionRepositoryInterface interface {
	Create(ctx context.Context, s *model.Submission) error
	ListRecent(ctx context.Context, limit int) ([]*model.Submission, error)
	ListByCampaign(ctx context.Context, campaignID, limit int) ([]*model.Submission, error)
	Count(ctx context.Context) (int, error)
}

// SubmissionRepository is the concrete implementation
type SubmissionRepository struct {
	DB *sql.DB
}

const submissionColumns = `id, campaign_id, name, place, email, visitor_id, device_type, platform,
        screen_width, screen_height, language, referrer, browser, os, traffic_source,
        ip_address, user_agent, city, region, country, created_at`

// Create inserts one submission. It is the only write a form submission makes.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	query := `
        INSERT INTO email_requests
        (campaign_id, name, place, email, visitor_id, device_type, platform,
         screen_width, screen_height, language, referrer, browser, os, traffic_source,
         ip_address, user_agent, city, region, country)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
        RETURNING id, created_at
    `
	return r.DB.QueryRowContext(ctx, query,
		s.CampaignID, s.Name, s.Place, s.Email,
		nullIfEmpty(s.VisitorID), nullIfEmpty(s.DeviceType), nullIfEmpty(s.Platform),
		s.ScreenWidth, s.ScreenHeight,
		nullIfEmpty(s.Language), nullIfEmpty(s.Referrer),
		s.Browser, s.OS, s.TrafficSource, s.IPAddress, s.UserAgent,
		s.City, s.Region, s.Country,
	).Scan(&s.ID, &s.CreatedAt)
}

// ListRecent returns the newest submissions first. A limit <= 0 means no cap.
func (r *SubmissionRepository) ListRecent(ctx context.Context, limit int) ([]*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM email_requests ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *SubmissionRepository) ListByCampaign(ctx context.Context, campaignID, limit int) ([]*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM email_requests WHERE campaign_id=$1 ORDER BY created_at DESC, id DESC`
	args := []any{campaignID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *SubmissionRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM email_requests`).Scan(&total)
	return total, err
}

func (r *SubmissionRepository) query(ctx context.Context, query string, args ...any) ([]*model.Submission, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []*model.Submission{}
	for rows.Next() {
		var (
			s                                        model.Submission
			campaignID, width, height                sql.NullInt64
			visitor, device, platform, lang, referer sql.NullString
			browser, os, source, ip, ua              sql.NullString
			city, region, country                    sql.NullString
		)
		if err := rows.Scan(
			&s.ID, &campaignID, &s.Name, &s.Place, &s.Email, &visitor, &device, &platform,
			&width, &height, &lang, &referer, &browser, &os, &source,
			&ip, &ua, &city, &region, &country, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.CampaignID = intPtr(campaignID)
		s.ScreenWidth = intPtr(width)
		s.ScreenHeight = intPtr(height)
		s.VisitorID = visitor.String
		s.DeviceType = device.String
		s.Platform = platform.String
		s.Language = lang.String
		s.Referrer = referer.String
		s.Browser = browser.String
		s.OS = os.String
		s.TrafficSource = source.String
		s.IPAddress = ip.String
		s.UserAgent = ua.String
		s.City = strPtr(city)
		s.Region = strPtr(region)
		s.Country = strPtr(country)
		submissions = append(submissions, &s)
	}
	return submissions, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

var _ SubmissionRepositoryInterface = (*SubmissionRepository)(nil)
