package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// RelayConfigRepo reads the relay_configs table, which holds the shared
// secrets the ingress webhook may present. Implements relay.SecretStore.
type RelayConfigRepo struct{ db *sql.DB }

// NewRelayConfigRepo creates a Postgres-backed relay config repository.
func NewRelayConfigRepo(db *sql.DB) *RelayConfigRepo { return &RelayConfigRepo{db: db} }

// IsActiveSecret reports whether the secret matches any active relay config.
func (r *RelayConfigRepo) IsActiveSecret(ctx context.Context, secret string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM relay_configs WHERE secret = $1 AND is_active = true
		)
	`, secret).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check relay secret: %w", err)
	}
	return exists, nil
}
