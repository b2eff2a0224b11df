package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/dbx"
	"github.com/dmitrijs2005/gotodo/internal/server/auth"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/models"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: 24 * time.Hour,
		PasswordHashCost:             bcrypt.MinCost,
	}
}

type testEnv struct {
	store  *memory.Store
	users  *UserService
	tokens *TokenService
	tasks  *TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	m := repomanager.NewMemoryRepositoryManager(store)
	cfg := testConfig()

	us := NewUserService(store, m, cfg)
	return &testEnv{
		store:  store,
		users:  us,
		tokens: NewTokenService(store, m, us, cfg),
		tasks:  NewTaskService(store, m),
	}
}

// identity registers username and returns its validated access identity.
func (e *testEnv) identity(t *testing.T, username string) *Identity {
	t.Helper()
	ctx := context.Background()
	_, err := e.users.Register(ctx, username, "pw")
	require.NoError(t, err)
	pair, err := e.tokens.IssuePair(username)
	require.NoError(t, err)
	id, err := e.tokens.Validate(ctx, pair.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	return id
}

// fakeRepoManager hands out the configured fakes, falling back to nil.
type fakeRepoManager struct {
	u users.Repository
	t tasks.Repository
	r revokedtokens.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository                 { return m.t }
func (m *fakeRepoManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository { return m.r }

type fakeUsersRepo struct {
	getOut    *models.User
	getErr    error
	createErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u1"
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRevokedRepo struct {
	revokeErr  error
	checkErr   error
	pruneOut   int64
	pruneErr   error
	pruneCalls int
	revoked    []*models.RevokedToken
}

func (f *fakeRevokedRepo) Revoke(ctx context.Context, token *models.RevokedToken) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeRevokedRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, f.checkErr
}

func (f *fakeRevokedRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	f.pruneCalls++
	return f.pruneOut, f.pruneErr
}

type fakeTasksRepo struct {
	getOut    *models.Task
	getErr    error
	updateErr error
	updated   *models.Task
	lockCalls int
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	return task, nil
}

func (f *fakeTasksRepo) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	return nil, nil
}

func (f *fakeTasksRepo) GetByUser(ctx context.Context, userID string, id int64) (*models.Task, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeTasksRepo) GetForUpdate(ctx context.Context, userID string, id int64) (*models.Task, error) {
	f.lockCalls++
	return f.GetByUser(ctx, userID, id)
}

func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = task
	return nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, userID string, id int64) error {
	return nil
}
