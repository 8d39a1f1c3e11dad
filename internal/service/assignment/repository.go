package assignment

import (
	"context"

	"github.com/ignite/signature-relay/internal/domain"
)

// Repository defines the data access contract for assignment resolution.
// Implementations must be safe for concurrent use.
type Repository interface {
	// GetProfileByEmail returns the profile owning the given (bare) address.
	// Returns ErrProfileNotFound if no profile exists.
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)

	// GetActiveAssignment returns the profile's single active assignment with
	// its banner ids in assignment order, or nil if none is active.
	GetActiveAssignment(ctx context.Context, profileID string) (*domain.Assignment, error)

	// GetSignature returns a signature by id. Returns ErrSignatureNotFound
	// if it doesn't exist.
	GetSignature(ctx context.Context, id string) (*domain.Signature, error)

	// GetBanner returns a banner by id. Returns ErrBannerNotFound if it
	// doesn't exist.
	GetBanner(ctx context.Context, id string) (*domain.Banner, error)
}
