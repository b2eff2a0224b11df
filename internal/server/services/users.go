// Package services contains server-side business logic: credential checks,
// token issuance and validation, and owner-scoped task operations.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserService stores user credentials and verifies them.
type UserService struct {
	db          dbx.Runner
	repomanager repomanager.RepositoryManager
	hashCost    int
	dummyHash   func() []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db dbx.Runner, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	cost := cfg.PasswordHashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{
		db:          db,
		repomanager: m,
		hashCost:    cost,
		dummyHash: sync.OnceValue(func() []byte {
			h, _ := bcrypt.GenerateFromPassword([]byte("gotodo-dummy-password"), cost)
			return h
		}),
	}
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username can not be blank", common.ErrInvalidInput)
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		return fmt.Errorf("%w: username must be at most %d characters", common.ErrInvalidInput, models.MaxUsernameLength)
	}
	if password == "" {
		return fmt.Errorf("%w: password can not be blank", common.ErrInvalidInput)
	}
	return nil
}

// Register creates a user with a bcrypt hash of password. An existing
// username yields common.ErrConflict.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db.Conn())

	_, err := repo.GetUserByLogin(ctx, username)
	if err == nil {
		return nil, common.ErrConflict
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Verify checks the password of username. An unknown user yields
// common.ErrUserNotFound and a wrong password common.ErrUnauthenticated;
// both match common.ErrUnauthenticated.
func (s *UserService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep timing close to the known-user path
			_ = bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(password))
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrUnauthenticated
	}

	return user, nil
}

// Lookup returns the user named username or common.ErrorNotFound.
func (s *UserService) Lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db.Conn()).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	return user, nil
}
