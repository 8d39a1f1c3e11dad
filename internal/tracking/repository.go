package tracking

import (
	"context"
	"time"

	"github.com/ignite/signature-relay/internal/domain"
)

// Repository defines the data access contract for tracking state.
// Implementations must be safe for concurrent use.
type Repository interface {
	// CreateSession inserts a new tracking session.
	CreateSession(ctx context.Context, s *domain.TrackingSession) error

	// GetSession returns a session by tracking id. Returns ErrSessionNotFound
	// if it doesn't exist.
	GetSession(ctx context.Context, trackingID string) (*domain.TrackingSession, error)

	// TouchSessionClick increments the session's click counter and stamps
	// last_clicked_at. A missing session is not an error.
	TouchSessionClick(ctx context.Context, trackingID string) error

	// DeleteSessionsBefore purges sessions created before the cutoff and
	// returns the number removed.
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// InsertEvent appends an analytics event. Rows are never updated.
	InsertEvent(ctx context.Context, e *domain.AnalyticsEvent) error

	// GetBanner returns a banner by id. Returns ErrBannerNotFound if it
	// doesn't exist.
	GetBanner(ctx context.Context, id string) (*domain.Banner, error)

	// IncrementBannerClicks atomically increments the banner's click counter
	// server-side (never read-modify-write) and returns the new counter and
	// the banner's max_clicks.
	IncrementBannerClicks(ctx context.Context, id string) (current, max int, err error)

	// DeactivateBanner flips is_active off.
	DeactivateBanner(ctx context.Context, id string) error

	// BannerStats returns the aggregate event counts for a banner.
	BannerStats(ctx context.Context, bannerID string) (*domain.BannerStats, error)
}
