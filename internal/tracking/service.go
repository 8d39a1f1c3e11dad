package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// Service implements tracking business logic for both the outbound rewrite
// path and the async pixel/redirect path.
type Service struct {
	repo     Repository
	rewriter *Rewriter
}

// NewService creates a tracking service. baseURL is the public origin the
// rewritten links and pixel point at.
func NewService(repo Repository, baseURL string) *Service {
	return &Service{repo: repo, rewriter: &Rewriter{BaseURL: baseURL}}
}

// PrepareBanner creates the tracking session for one outbound message and
// returns the banner HTML with links rewritten and the pixel appended.
// A session-store failure degrades to the unrewritten banner: losing
// attribution must not block the send.
func (s *Service) PrepareBanner(ctx context.Context, senderEmail, recipientEmail string, b *domain.Banner) string {
	tid := uuid.New().String()
	sess := &domain.TrackingSession{
		TrackingID:     tid,
		SenderEmail:    senderEmail,
		RecipientEmail: recipientEmail,
		BannerID:       b.ID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		logger.Error("create tracking session", "error", err, "banner_id", b.ID, "sender", senderEmail)
		return b.HTML
	}
	return s.rewriter.Rewrite(b.HTML, tid)
}

// ViewInput is one view-pixel hit. Either TrackingID or BannerID identifies
// the banner.
type ViewInput struct {
	TrackingID string
	BannerID   string
	Recipient  string
	UserAgent  string
	IPAddress  string
	Referrer   string
}

// RecordView records a view event. All failures are logged and swallowed;
// the caller serves the pixel regardless.
func (s *Service) RecordView(ctx context.Context, in ViewInput) {
	bannerID, recipient := s.resolveContext(ctx, in.TrackingID, in.BannerID, in.Recipient)
	if bannerID == "" {
		logger.Warn("view event without banner context", "tid", in.TrackingID)
		return
	}
	evt := &domain.AnalyticsEvent{
		ID:        uuid.New().String(),
		EventType: domain.EventView,
		BannerID:  bannerID,
		Recipient: recipient,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		Referrer:  in.Referrer,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertEvent(ctx, evt); err != nil {
		logger.Error("record view event", "error", err, "banner_id", bannerID)
	}
}

// ClickInput is one click-redirect hit.
type ClickInput struct {
	TrackingID  string
	BannerID    string
	CampaignID  string
	Recipient   string
	Metadata    string
	OriginalURL string
	UserAgent   string
	IPAddress   string
	Referrer    string
}

// RecordClick records a click event, atomically increments the banner's
// click counter, deactivates the banner once the budget is spent, and
// returns the redirect target. The click that crosses the limit still gets a
// valid redirect; only later injections stop using the banner.
//
// Returns ErrBannerNotFound when no banner can be resolved and ErrNoRedirect
// when the banner has no click-through URL. Analytics failures never
// propagate.
func (s *Service) RecordClick(ctx context.Context, in ClickInput) (string, error) {
	bannerID, recipient := s.resolveContext(ctx, in.TrackingID, in.BannerID, in.Recipient)
	if bannerID == "" {
		return "", ErrBannerNotFound
	}

	b, err := s.repo.GetBanner(ctx, bannerID)
	if errors.Is(err, ErrBannerNotFound) {
		return "", ErrBannerNotFound
	}
	if err != nil {
		// Degraded store: still try to get the recipient somewhere useful.
		logger.Error("fetch banner for click", "error", err, "banner_id", bannerID)
		if in.OriginalURL != "" {
			return in.OriginalURL, nil
		}
		return "", fmt.Errorf("fetch banner: %w", err)
	}

	evt := &domain.AnalyticsEvent{
		ID:         uuid.New().String(),
		EventType:  domain.EventClick,
		BannerID:   bannerID,
		CampaignID: in.CampaignID,
		Recipient:  recipient,
		UserAgent:  in.UserAgent,
		IPAddress:  in.IPAddress,
		Referrer:   in.Referrer,
		Metadata:   in.Metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.InsertEvent(ctx, evt); err != nil {
		logger.Error("record click event", "error", err, "banner_id", bannerID)
	}

	cur, max, err := s.repo.IncrementBannerClicks(ctx, bannerID)
	if err != nil {
		logger.Error("increment banner clicks", "error", err, "banner_id", bannerID)
	} else if max > 0 && cur >= max {
		if err := s.repo.DeactivateBanner(ctx, bannerID); err != nil {
			logger.Error("deactivate banner", "error", err, "banner_id", bannerID)
		} else {
			logger.Info("banner click budget spent, deactivated", "banner_id", bannerID, "clicks", cur)
		}
	}

	if in.TrackingID != "" {
		if err := s.repo.TouchSessionClick(ctx, in.TrackingID); err != nil {
			logger.Error("touch tracking session", "error", err, "tid", in.TrackingID)
		}
	}

	redirect := in.OriginalURL
	if redirect == "" {
		redirect = b.ClickURL
	}
	if redirect == "" {
		return "", ErrNoRedirect
	}
	return redirect, nil
}

// resolveContext recovers the banner and recipient from the tracking session
// when the request carries only a tid.
func (s *Service) resolveContext(ctx context.Context, trackingID, bannerID, recipient string) (string, string) {
	if trackingID == "" {
		return bannerID, recipient
	}
	sess, err := s.repo.GetSession(ctx, trackingID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			logger.Error("lookup tracking session", "error", err, "tid", trackingID)
		}
		return bannerID, recipient
	}
	if bannerID == "" {
		bannerID = sess.BannerID
	}
	if recipient == "" {
		recipient = sess.RecipientEmail
	}
	return bannerID, recipient
}

// Stats returns the event aggregates for a banner.
func (s *Service) Stats(ctx context.Context, bannerID string) (*domain.BannerStats, error) {
	return s.repo.BannerStats(ctx, bannerID)
}

// PurgeExpiredSessions deletes sessions older than the retention window and
// returns the number removed.
func (s *Service) PurgeExpiredSessions(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteSessionsBefore(ctx, time.Now().UTC().Add(-retention))
}

// StartSessionSweeper purges expired sessions on the given interval until
// ctx is cancelled. Sessions would otherwise accumulate forever.
func (s *Service) StartSessionSweeper(ctx context.Context, every, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.PurgeExpiredSessions(ctx, retention)
				if err != nil {
					logger.Error("session sweep", "error", err)
				} else if n > 0 {
					logger.Info("session sweep", "purged", n)
				}
			}
		}
	}()
}
