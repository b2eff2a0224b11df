package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/server/models"
)

type RevokedTokenRepository struct {
	s *Store
}

func (r *RevokedTokenRepository) Revoke(ctx context.Context, token *models.RevokedToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.revoked[token.JTI]; ok {
		return nil
	}
	entry := *token
	if entry.RevokedAt.IsZero() {
		entry.RevokedAt = r.s.now()
	}
	r.s.revoked[token.JTI] = entry

	return nil
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.revoked[jti]
	return ok, nil
}

func (r *RevokedTokenRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for jti, entry := range r.s.revoked {
		if entry.ExpiresAt.Before(before) {
			delete(r.s.revoked, jti)
			n++
		}
	}
	return n, nil
}
