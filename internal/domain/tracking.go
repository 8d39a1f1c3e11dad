package domain

import "time"

// AnalyticsEventType enumerates the recipient engagement events the relay records.
type AnalyticsEventType string

const (
	EventView  AnalyticsEventType = "view"
	EventClick AnalyticsEventType = "click"
)

// AnalyticsEvent is one recorded engagement event. Rows are append-only and
// drive the dashboard aggregates; they are never mutated after insert.
type AnalyticsEvent struct {
	ID         string             `json:"id"`
	EventType  AnalyticsEventType `json:"event_type"`
	BannerID   string             `json:"banner_id"`
	CampaignID string             `json:"campaign_id,omitempty"`
	Recipient  string             `json:"email_recipient,omitempty"`
	UserAgent  string             `json:"user_agent,omitempty"`
	IPAddress  string             `json:"ip_address,omitempty"`
	Referrer   string             `json:"referrer,omitempty"`
	Metadata   string             `json:"metadata,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// TrackingSession correlates a tracking id embedded in an outgoing message
// with the sender/recipient/banner context a later pixel or redirect request
// cannot carry itself. One session is created per outbound message that
// carries a banner.
type TrackingSession struct {
	TrackingID     string     `json:"tracking_id" db:"tracking_id"`
	SenderEmail    string     `json:"sender_email" db:"sender_email"`
	RecipientEmail string     `json:"recipient_email" db:"recipient_email"`
	BannerID       string     `json:"banner_id" db:"banner_id"`
	ClickCount     int        `json:"click_count" db:"click_count"`
	LastClickedAt  *time.Time `json:"last_clicked_at,omitempty" db:"last_clicked_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// BannerStats is the aggregate the dashboard reads for a single banner.
type BannerStats struct {
	BannerID         string     `json:"banner_id"`
	Views            int        `json:"views"`
	Clicks           int        `json:"clicks"`
	UniqueRecipients int        `json:"unique_recipients"`
	LastEventAt      *time.Time `json:"last_event_at,omitempty"`
}
