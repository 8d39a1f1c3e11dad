package assignment

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ignite/signature-relay/internal/domain"
	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// Resolution is the outcome of resolving a sender address. Signature may be
// nil when the assigned signature record has gone missing or inactive;
// BannerIDs preserves assignment order.
type Resolution struct {
	Profile   *domain.Profile
	Signature *domain.Signature
	BannerIDs []string
}

// Service resolves sender addresses against the assignment store.
type Service struct {
	repo Repository
}

// NewService creates an assignment resolver backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve maps a raw From header value to the sender's active assignment.
// Returns (nil, nil) when the sender has no profile or no active assignment:
// absence is a valid, common state and the caller forwards unmodified.
func (s *Service) Resolve(ctx context.Context, rawFrom string) (*Resolution, error) {
	addr := ExtractAddress(rawFrom)
	if addr == "" {
		return nil, nil
	}

	profile, err := s.repo.GetProfileByEmail(ctx, addr)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup profile: %w", err)
	}

	asg, err := s.repo.GetActiveAssignment(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup assignment: %w", err)
	}
	if asg == nil {
		return nil, nil
	}

	res := &Resolution{Profile: profile, BannerIDs: asg.BannerIDs}

	sig, err := s.repo.GetSignature(ctx, asg.SignatureID)
	switch {
	case errors.Is(err, ErrSignatureNotFound):
		// Assignment points at a deleted signature. Degrade to banner-only.
		logger.Warn("assigned signature missing", "signature_id", asg.SignatureID, "profile_id", profile.ID)
	case err != nil:
		return nil, fmt.Errorf("lookup signature: %w", err)
	case sig.IsActive:
		res.Signature = sig
	}

	return res, nil
}

// ActiveBanner fetches a banner by id, treating a missing or inactive record
// as "no banner" rather than an error.
func (s *Service) ActiveBanner(ctx context.Context, id string) (*domain.Banner, error) {
	b, err := s.repo.GetBanner(ctx, id)
	if errors.Is(err, ErrBannerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup banner: %w", err)
	}
	if !b.IsActive || b.Exhausted() {
		return nil, nil
	}
	return b, nil
}

// ExtractAddress normalizes a From header value to a bare lowercase address.
// Handles display-name forms like `"Jane Doe" <jane@co.com>`. Returns ""
// when no address can be extracted.
func ExtractAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if a, err := mail.ParseAddress(raw); err == nil {
		return strings.ToLower(a.Address)
	}
	// Malformed display name; fall back to the angle-bracket content.
	if i := strings.LastIndex(raw, "<"); i >= 0 {
		if j := strings.Index(raw[i:], ">"); j > 0 {
			return strings.ToLower(strings.TrimSpace(raw[i+1 : i+j]))
		}
	}
	if strings.Contains(raw, "@") {
		return strings.ToLower(raw)
	}
	return ""
}
