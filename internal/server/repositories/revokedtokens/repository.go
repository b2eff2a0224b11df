// Package revokedtokens stores the identifiers (jti) of tokens that were
// revoked before their natural expiry. PostgreSQL and Redis implementations
// are provided.
package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

type Repository interface {
	// Revoke records the token. Revoking the same jti twice is not an error.
	Revoke(ctx context.Context, token *models.RevokedToken) error
	// IsRevoked reports whether jti was recorded.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Prune removes entries whose ExpiresAt is before the given moment and
	// returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
