package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/common"
	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/auth"
	"github.com/dmitrijs2005/gotodo/internal/server/config"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gotodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gotodo/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClient struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestAPI(t *testing.T, ready ReadyChecker) (*API, *services.TokenService) {
	t.Helper()
	store := memory.NewStore()
	m := repomanager.NewMemoryRepositoryManager(store)
	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: time.Hour,
		PasswordHashCost:             bcrypt.MinCost,
	}
	users := services.NewUserService(store, m, cfg)
	tokens := services.NewTokenService(store, m, users, cfg)
	tasks := services.NewTaskService(store, m)
	if ready == nil {
		ready = store.PingContext
	}
	return NewAPI(users, tokens, tasks, ready, logging.Nop{}), tokens
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	api, _ := newTestAPI(t, nil)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &testClient{t: t, srv: srv}
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.body, &out), string(r.body))
	return out
}

func (r response) message(t *testing.T) string {
	t.Helper()
	msg, _ := r.json(t)["message"].(string)
	return msg
}

func (c *testClient) do(method, path, token string, body any) response {
	c.t.Helper()

	var rd io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case url.Values:
		rd = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequest(method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: raw}
}

type session struct {
	access  string
	refresh string
}

func (c *testClient) register(username string) session {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/registration", "", map[string]string{"username": username, "password": "pw-" + username})
	require.Equal(c.t, http.StatusCreated, resp.status, string(resp.body))
	body := resp.json(c.t)
	return session{access: body["access_token"].(string), refresh: body["refresh_token"].(string)}
}

func (c *testClient) createTask(token string, body any) map[string]any {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/todos", token, body)
	require.Equal(c.t, http.StatusCreated, resp.status, string(resp.body))
	return resp.json(c.t)
}

func taskPath(task map[string]any) string {
	return fmt.Sprintf("/todos/%d", int64(task["id"].(float64)))
}

func TestRegistration(t *testing.T) {
	c := newTestClient(t)

	resp := c.do(http.MethodPost, "/registration", "", map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusCreated, resp.status)
	body := resp.json(t)
	assert.Equal(t, "User alice is created", body["message"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.NotEqual(t, body["access_token"], body["refresh_token"])

	resp = c.do(http.MethodPost, "/registration", "", map[string]string{"username": "alice", "password": "other"})
	assert.Equal(t, http.StatusConflict, resp.status)
	assert.Equal(t, "User alice already exists", resp.message(t))

	resp = c.do(http.MethodPost, "/registration", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.message(t), "password can not be blank")

	resp = c.do(http.MethodPost, "/registration", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = c.do(http.MethodPost, "/registration", "", map[string]string{"username": strings.Repeat("u", 81), "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.message(t), "username must be at most 80 characters")
}

func TestRegistration_MalformedJSON(t *testing.T) {
	c := newTestClient(t)

	req, err := http.NewRequest(http.MethodPost, c.srv.URL+"/registration", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t)
	c.register("alice")

	resp := c.do(http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "pw-alice"})
	require.Equal(t, http.StatusOK, resp.status)
	body := resp.json(t)
	assert.Equal(t, "Logged in as alice", body["message"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	resp = c.do(http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "Wrong credentials", resp.message(t))

	resp = c.do(http.MethodPost, "/login", "", map[string]string{"username": "bob", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, resp.status)
	assert.Equal(t, "User bob doesn't exist", resp.message(t))
}

func TestLogin_FormEncoded(t *testing.T) {
	c := newTestClient(t)
	c.register("alice")

	resp := c.do(http.MethodPost, "/login", "", url.Values{"username": {"alice"}, "password": {"pw-alice"}})
	assert.Equal(t, http.StatusOK, resp.status, string(resp.body))
}

func TestBearerRequired(t *testing.T) {
	c := newTestClient(t)

	resp := c.do(http.MethodGet, "/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "missing authorization header", resp.message(t))
	assert.Equal(t, "Bearer", resp.header.Get("WWW-Authenticate"))

	req, _ := http.NewRequest(http.MethodGet, c.srv.URL+"/todos", nil)
	req.Header.Set("Authorization", "Token abc")
	raw, err := c.srv.Client().Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, raw.StatusCode)

	resp = c.do(http.MethodGet, "/todos", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "invalid token", resp.message(t))
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	resp := c.do(http.MethodGet, "/todos", s.refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = c.do(http.MethodPost, "/token/refresh", s.access, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = c.do(http.MethodPost, "/logout/access", s.refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = c.do(http.MethodPost, "/logout/refresh", s.access, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestLogoutAccess_RevokesIndefinitely(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	resp := c.do(http.MethodPost, "/logout/access", s.access, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Access token has been revoked", resp.message(t))

	for i := 0; i < 3; i++ {
		resp = c.do(http.MethodGet, "/todos", s.access, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.status)
		assert.Equal(t, "token has been revoked", resp.message(t))
	}

	resp = c.do(http.MethodPost, "/logout/access", s.access, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	// the refresh token of the same session is untouched
	resp = c.do(http.MethodPost, "/token/refresh", s.refresh, nil)
	require.Equal(t, http.StatusOK, resp.status)
	fresh := resp.json(t)["access_token"].(string)

	resp = c.do(http.MethodGet, "/todos", fresh, nil)
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestLogoutRefresh(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	resp := c.do(http.MethodPost, "/logout/refresh", s.refresh, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Refresh token has been revoked", resp.message(t))

	resp = c.do(http.MethodPost, "/token/refresh", s.refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "token has been revoked", resp.message(t))

	resp = c.do(http.MethodGet, "/todos", s.access, nil)
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestLogoutHandlers_CheckTokenType(t *testing.T) {
	api, tokens := newTestAPI(t, nil)
	pair, err := tokens.IssuePair("alice")
	require.NoError(t, err)

	call := func(h http.HandlerFunc, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	rec := call(api.logoutAccess, pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "wrong token type")

	rec = call(api.logoutRefresh, pair.RefreshToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Refresh token has been revoked")

	_, err = tokens.Validate(context.Background(), pair.RefreshToken, auth.TokenTypeRefresh)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestTokenRefresh(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	resp := c.do(http.MethodPost, "/token/refresh", s.refresh, nil)
	require.Equal(t, http.StatusOK, resp.status)
	body := resp.json(t)
	access := body["access_token"].(string)
	assert.NotEqual(t, s.access, access)
	assert.NotContains(t, body, "refresh_token")

	resp = c.do(http.MethodGet, "/todos", access, nil)
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestTaskCRUD(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	task := c.createTask(s.access, map[string]any{"name": "buy milk", "due_date": "2025-06-01"})
	assert.Equal(t, "buy milk", task["name"])
	assert.Equal(t, false, task["is_done"])
	assert.Equal(t, "2025-06-01", task["due_date"])
	assert.Nil(t, task["completed_date"])
	assert.NotEmpty(t, task["created_at"])

	path := taskPath(task)

	resp := c.do(http.MethodGet, path, s.access, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "buy milk", resp.json(t)["name"])

	resp = c.do(http.MethodPut, path, s.access, map[string]any{"is_done": true})
	require.Equal(t, http.StatusOK, resp.status)
	updated := resp.json(t)
	assert.Equal(t, true, updated["is_done"])
	assert.Equal(t, "buy milk", updated["name"])
	assert.NotNil(t, updated["completed_date"])

	resp = c.do(http.MethodPut, path, s.access, map[string]any{"name": "buy oat milk"})
	require.Equal(t, http.StatusOK, resp.status)
	renamed := resp.json(t)
	assert.Equal(t, "buy oat milk", renamed["name"])
	assert.Equal(t, updated["completed_date"], renamed["completed_date"])

	resp = c.do(http.MethodPut, path, s.access, map[string]any{"is_done": false})
	require.Equal(t, http.StatusOK, resp.status)
	assert.Nil(t, resp.json(t)["completed_date"])

	resp = c.do(http.MethodGet, "/todos", s.access, nil)
	require.Equal(t, http.StatusOK, resp.status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(resp.body, &list))
	require.Len(t, list, 1)

	resp = c.do(http.MethodDelete, path, s.access, nil)
	assert.Equal(t, http.StatusNoContent, resp.status)
	assert.Empty(t, resp.body)

	resp = c.do(http.MethodGet, path, s.access, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.message(t), "doesn't exist")

	resp = c.do(http.MethodDelete, path, s.access, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestCreateTask_FormEncoded(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	task := c.createTask(s.access, url.Values{"name": {"water plants"}, "is_done": {"true"}})
	assert.Equal(t, true, task["is_done"])
	assert.NotNil(t, task["completed_date"])

	resp := c.do(http.MethodPost, "/todos", s.access, url.Values{"name": {"x"}, "is_done": {"maybe"}})
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestCreateTask_DoneTimestampsOrdered(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	start := time.Now()
	task := c.createTask(s.access, map[string]any{"name": "already done", "is_done": true})
	end := time.Now()

	created, err := time.Parse(time.RFC3339Nano, task["created_at"].(string))
	require.NoError(t, err)
	completedRaw, ok := task["completed_date"].(string)
	require.True(t, ok, "completed_date must be set")
	completed, err := time.Parse(time.RFC3339Nano, completedRaw)
	require.NoError(t, err)

	assert.False(t, created.Before(start), "created_at before request start")
	assert.False(t, completed.Before(created), "completed_date before created_at")
	assert.False(t, completed.After(end), "completed_date after response")
}

func TestCreateTask_Validation(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	resp := c.do(http.MethodPost, "/todos", s.access, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = c.do(http.MethodPost, "/todos", s.access, map[string]any{"is_done": true})
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = c.do(http.MethodPost, "/todos", s.access, map[string]any{"name": strings.Repeat("x", 141)})
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = c.do(http.MethodPost, "/todos", s.access, map[string]any{"name": "x", "due_date": "2025-13-40"})
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = c.do(http.MethodGet, "/todos", s.access, nil)
	assert.JSONEq(t, "[]", string(resp.body))
}

func TestCrossTenantIsolation(t *testing.T) {
	c := newTestClient(t)
	alice := c.register("alice")
	bob := c.register("bob")

	task := c.createTask(alice.access, map[string]any{"name": "alice's secret"})
	path := taskPath(task)

	resp := c.do(http.MethodGet, path, bob.access, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = c.do(http.MethodPut, path, bob.access, map[string]any{"name": "pwned"})
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = c.do(http.MethodDelete, path, bob.access, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)

	resp = c.do(http.MethodGet, "/todos", bob.access, nil)
	assert.JSONEq(t, "[]", string(resp.body))

	// indistinguishable from a missing id
	missing := c.do(http.MethodGet, "/todos/999999", bob.access, nil)
	assert.Equal(t, http.StatusNotFound, missing.status)

	resp = c.do(http.MethodGet, path, alice.access, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "alice's secret", resp.json(t)["name"])
}

func TestTaskID_NonNumericIsNotFound(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")

	for _, path := range []string{"/todos/abc", "/todos/-1", "/todos/0", "/todos/99999999999999999999"} {
		resp := c.do(http.MethodGet, path, s.access, nil)
		assert.Equal(t, http.StatusNotFound, resp.status, path)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	c := newTestClient(t)

	resp := c.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "not found", resp.message(t))

	resp = c.do(http.MethodPatch, "/todos", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.status)
}

func TestOperationalEndpoints(t *testing.T) {
	c := newTestClient(t)
	s := c.register("alice")
	c.do(http.MethodGet, "/todos", s.access, nil)

	resp := c.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = c.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)

	resp = c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, string(resp.body), `http_requests_total{code="200",method="GET",path="/todos"}`)
	assert.Contains(t, string(resp.body), `path="/registration"`)
}

func TestReadyz_Unavailable(t *testing.T) {
	api, _ := newTestAPI(t, func(context.Context) error { return errors.New("db down") })
	srv := httptest.NewServer(api.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	c := newTestClient(t)

	resp := c.do(http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, resp.header.Get("X-Request-ID"))

	req, _ := http.NewRequest(http.MethodGet, c.srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	raw, err := c.srv.Client().Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, "abc-123", raw.Header.Get("X-Request-ID"))
}
