package memory

import (
	"context"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.UserName]; ok {
		return nil, common.ErrConflict
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()

	stored := *user
	stored.PasswordHash = append([]byte(nil), user.PasswordHash...)
	r.s.users[user.UserName] = &stored

	return user, nil
}

func (r *UserRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	out.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &out, nil
}
