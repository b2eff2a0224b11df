package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/auth"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is the caller resolved from a validated token.
type Identity struct {
	User   *models.User
	Claims *auth.Claims
}

// TokenService issues JWTs and checks presented ones against the revocation
// store.
type TokenService struct {
	db                           dbx.Runner
	repomanager                  repomanager.RepositoryManager
	users                        *UserService
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewTokenService(db dbx.Runner, m repomanager.RepositoryManager, users *UserService, cfg *config.Config) *TokenService {
	return &TokenService{
		db:                           db,
		repomanager:                  m,
		users:                        users,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// IssuePair mints an access and a refresh token for username, each with its
// own jti.
func (s *TokenService) IssuePair(username string) (*TokenPair, error) {
	access, err := s.IssueAccess(username)
	if err != nil {
		return nil, err
	}

	refresh, _, err := auth.GenerateToken(username, auth.TokenTypeRefresh, s.jwtSecret, s.now(), s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) IssueAccess(username string) (string, error) {
	access, _, err := auth.GenerateToken(username, auth.TokenTypeAccess, s.jwtSecret, s.now(), s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating access token: %w", err)
	}
	return access, nil
}

// parse checks signature, expiry and type, without touching any store.
func (s *TokenService) parse(token string, expected auth.TokenType) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret, s.now())
	if err != nil {
		return nil, err
	}
	if claims.Type != expected {
		return nil, common.ErrWrongTokenType
	}
	return claims, nil
}

// Validate accepts token only if it is well signed, unexpired, of the
// expected type, not revoked, and its subject is still a known user.
// Rejections match common.ErrorUnauthorized.
func (s *TokenService) Validate(ctx context.Context, token string, expected auth.TokenType) (*Identity, error) {
	claims, err := s.parse(token, expected)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repomanager.RevokedTokens(s.db.Conn()).IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking revocation: %w", err)
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	user, err := s.users.Lookup(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownIdentity
		}
		return nil, err
	}

	return &Identity{User: user, Claims: claims}, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself stays valid.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	identity, err := s.Validate(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return s.IssueAccess(identity.User.UserName)
}

// Logout revokes token after checking its signature, expiry and type.
// Logging out an already revoked token succeeds.
func (s *TokenService) Logout(ctx context.Context, token string, expected auth.TokenType) error {
	claims, err := s.parse(token, expected)
	if err != nil {
		return err
	}
	return s.Revoke(ctx, claims)
}

// Revoke records claims' jti until the token's natural expiry.
func (s *TokenService) Revoke(ctx context.Context, claims *auth.Claims) error {
	entry := &models.RevokedToken{
		JTI:       claims.ID,
		TokenType: string(claims.Type),
		RevokedAt: s.now(),
	}
	if claims.ExpiresAt != nil {
		entry.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := s.repomanager.RevokedTokens(s.db.Conn()).Revoke(ctx, entry); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}
