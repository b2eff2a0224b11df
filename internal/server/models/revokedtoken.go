package models

import "time"

// RevokedToken marks a JWT identifier that must no longer be honoured.
// ExpiresAt is the natural expiry of the revoked token; once it has passed
// the entry can be pruned, since expired tokens are rejected anyway.
type RevokedToken struct {
	JTI       string
	TokenType string
	ExpiresAt time.Time
	RevokedAt time.Time
}
