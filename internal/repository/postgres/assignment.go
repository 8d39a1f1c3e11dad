package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/service/assignment"
)

// AssignmentRepo implements assignment.Repository against PostgreSQL.
type AssignmentRepo struct{ db *sql.DB }

// NewAssignmentRepo creates a Postgres-backed assignment repository.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

func (r *AssignmentRepo) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(first_name,''), COALESCE(last_name,''),
		       COALESCE(job_title,''), COALESCE(phone,''), COALESCE(company,''), created_at
		FROM profiles
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(
		&p.ID, &p.Email, &p.FirstName, &p.LastName,
		&p.JobTitle, &p.Phone, &p.Company, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, assignment.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *AssignmentRepo) GetActiveAssignment(ctx context.Context, profileID string) (*domain.Assignment, error) {
	a := &domain.Assignment{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, profile_id, signature_id, is_active, created_at
		FROM assignments
		WHERE profile_id = $1 AND is_active = true
	`, profileID).Scan(&a.ID, &a.ProfileID, &a.SignatureID, &a.IsActive, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT banner_id
		FROM assignment_banners
		WHERE assignment_id = $1
		ORDER BY position ASC
	`, a.ID)
	if err != nil {
		return nil, fmt.Errorf("get assignment banners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan banner id: %w", err)
		}
		a.BannerIDs = append(a.BannerIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banner ids: %w", err)
	}
	return a, nil
}

func (r *AssignmentRepo) GetSignature(ctx context.Context, id string) (*domain.Signature, error) {
	s := &domain.Signature{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, html, COALESCE(owner_id,''), is_active, created_at
		FROM signatures
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.HTML, &s.OwnerID, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, assignment.ErrSignatureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get signature: %w", err)
	}
	return s, nil
}

func (r *AssignmentRepo) GetBanner(ctx context.Context, id string) (*domain.Banner, error) {
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
		return nil, assignment.ErrBannerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get banner: %w", err)
	}
	return b, nil
}
