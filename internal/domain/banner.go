package domain

import "time"

// Banner is a promotional HTML snippet prepended above the message body,
// with an optional click-through URL and click budget. The click counter is
// the only field the relay mutates: the tracking subsystem increments it
// atomically on every recorded click and flips IsActive off once the budget
// is spent.
type Banner struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	HTML          string    `json:"html" db:"html"`
	ClickURL      string    `json:"click_url" db:"click_url"`
	MaxClicks     int       `json:"max_clicks" db:"max_clicks"`
	CurrentClicks int       `json:"current_clicks" db:"current_clicks"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Exhausted reports whether the banner's click budget is spent.
// MaxClicks <= 0 means unlimited.
func (b *Banner) Exhausted() bool {
	return b.MaxClicks > 0 && b.CurrentClicks >= b.MaxClicks
}
