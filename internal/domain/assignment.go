package domain

import "time"

// Profile is the sender identity the dashboard manages. The relay only reads
// it: the email address keys assignment lookups and the remaining fields feed
// signature template rendering.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	JobTitle  string    `json:"job_title" db:"job_title"`
	Phone     string    `json:"phone" db:"phone"`
	Company   string    `json:"company" db:"company"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TemplateVars returns the profile fields as Liquid template bindings for
// signature rendering.
func (p *Profile) TemplateVars() map[string]interface{} {
	return map[string]interface{}{
		"email":      p.Email,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"full_name":  p.FirstName + " " + p.LastName,
		"job_title":  p.JobTitle,
		"phone":      p.Phone,
		"company":    p.Company,
	}
}

// Assignment links a profile to the signature and ordered banner set injected
// into its outgoing mail. At most one active assignment exists per profile;
// reassignment deactivates the old row rather than deleting it.
type Assignment struct {
	ID          string    `json:"id" db:"id"`
	ProfileID   string    `json:"profile_id" db:"profile_id"`
	SignatureID string    `json:"signature_id" db:"signature_id"`
	BannerIDs   []string  `json:"banner_ids"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Signature is a fixed HTML snippet appended below a sender's outgoing mail.
// Content is read-only to the injector; it may contain Liquid placeholders
// resolved from the sender's profile.
type Signature struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	HTML      string    `json:"html" db:"html"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
