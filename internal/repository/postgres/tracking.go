package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/tracking"
)

// TrackingRepo implements tracking.Repository against PostgreSQL.
type TrackingRepo struct{ db *sql.DB }

// NewTrackingRepo creates a Postgres-backed tracking repository.
func NewTrackingRepo(db *sql.DB) *TrackingRepo { return &TrackingRepo{db: db} }

func (r *TrackingRepo) CreateSession(ctx context.Context, s *domain.TrackingSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracking_sessions
			(tracking_id, sender_email, recipient_email, banner_id, click_count, created_at)
		VALUES ($1, $2, $3, $4, 0, NOW())
	`, s.TrackingID, s.SenderEmail, s.RecipientEmail, s.BannerID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *TrackingRepo) GetSession(ctx context.Context, trackingID string) (*domain.TrackingSession, error) {
	s := &domain.TrackingSession{}
	err := r.db.QueryRowContext(ctx, `
		SELECT tracking_id, sender_email, recipient_email, banner_id,
		       click_count, last_clicked_at, created_at
		FROM tracking_sessions
		WHERE tracking_id = $1
	`, trackingID).Scan(
		&s.TrackingID, &s.SenderEmail, &s.RecipientEmail, &s.BannerID,
		&s.ClickCount, &s.LastClickedAt, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, tracking.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *TrackingRepo) TouchSessionClick(ctx context.Context, trackingID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tracking_sessions
		SET click_count = click_count + 1, last_clicked_at = NOW()
		WHERE tracking_id = $1
	`, trackingID)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *TrackingRepo) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM tracking_sessions WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *TrackingRepo) InsertEvent(ctx context.Context, e *domain.AnalyticsEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analytics_events
			(id, event_type, banner_id, campaign_id, email_recipient,
			 user_agent, ip_address, referrer, metadata, created_at)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8, $9, NOW())
	`, e.ID, e.EventType, e.BannerID, e.CampaignID, e.Recipient,
		e.UserAgent, e.IPAddress, e.Referrer, e.Metadata)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *TrackingRepo) GetBanner(ctx context.Context, id string) (*domain.Banner, error) {
	b := &domain.Banner{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, html, COALESCE(click_url,''), max_clicks, current_clicks,
		       is_active, created_at
		FROM banners
		WHERE id = $1
	`, id).Scan(
		&b.ID, &b.Name, &b.HTML, &b.ClickURL, &b.MaxClicks, &b.CurrentClicks,
		&b.IsActive, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, tracking.ErrBannerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get banner: %w", err)
	}
	return b, nil
}

// IncrementBannerClicks bumps the counter inside the database so concurrent
// clicks never lose an increment to a read-modify-write race.
func (r *TrackingRepo) IncrementBannerClicks(ctx context.Context, id string) (int, int, error) {
	var current, max int
	err := r.db.QueryRowContext(ctx, `
		UPDATE banners
		SET current_clicks = current_clicks + 1
		WHERE id = $1
		RETURNING current_clicks, max_clicks
	`, id).Scan(&current, &max)
	if err == sql.ErrNoRows {
		return 0, 0, tracking.ErrBannerNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("increment clicks: %w", err)
	}
	return current, max, nil
}

func (r *TrackingRepo) DeactivateBanner(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE banners SET is_active = false WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate banner: %w", err)
	}
	return nil
}

func (r *TrackingRepo) BannerStats(ctx context.Context, bannerID string) (*domain.BannerStats, error) {
	st := &domain.BannerStats{BannerID: bannerID}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE event_type = 'view'),
		       COUNT(*) FILTER (WHERE event_type = 'click'),
		       COUNT(DISTINCT email_recipient) FILTER (WHERE email_recipient <> ''),
		       MAX(created_at)
		FROM analytics_events
		WHERE banner_id = $1
	`, bannerID).Scan(&st.Views, &st.Clicks, &st.UniqueRecipients, &st.LastEventAt)
	if err != nil {
		return nil, fmt.Errorf("banner stats: %w", err)
	}
	return st, nil
}
