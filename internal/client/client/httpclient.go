package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/client/models"
	"github.com/dmitrijs2005/gotodo/internal/common"
)

const maxResponseBytes = 1 << 20

type tokenKind int

const (
	noToken tokenKind = iota
	accessToken
	refreshToken
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokensResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	store   SessionStore

	mu      sync.Mutex
	session models.Session
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http = &http.Client{Timeout: d} }
}

// NewHTTPClient returns a client for the API at baseURL, restoring any
// session kept in store.
func NewHTTPClient(baseURL string, store SessionStore, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	sess, err := store.Load()
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		store:   store,
		session: *sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Username
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.LoggedIn()
}

func (c *HTTPClient) token(kind tokenKind) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case accessToken:
		return c.session.AccessToken
	case refreshToken:
		return c.session.RefreshToken
	}
	return ""
}

func (c *HTTPClient) saveSession(sess models.Session) error {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	return c.store.Save(&sess)
}

func (c *HTTPClient) clearSession() error {
	c.mu.Lock()
	c.session = models.Session{}
	c.mu.Unlock()
	return c.store.Clear()
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/healthz", nil, "", nil)
}

// Register creates the account. The server signs the new user in right
// away, so the returned token pair becomes the current session.
func (c *HTTPClient) Register(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/registration", username, password)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/login", username, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, username, password string) (string, error) {
	var resp tokensResponse
	err := c.send(ctx, http.MethodPost, path, credentialsRequest{Username: username, Password: password}, "", &resp)
	if err != nil {
		return "", err
	}

	err = c.saveSession(models.Session{
		Username:     username,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Refresh trades the refresh token for a new access token. A rejected
// refresh token ends the session.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	rt := c.token(refreshToken)
	if rt == "" {
		return ErrNotLoggedIn
	}

	var resp tokensResponse
	err := c.send(ctx, http.MethodPost, "/token/refresh", nil, rt, &resp)
	if err != nil {
		if isUnauthorized(err) {
			return errors.Join(err, c.clearSession())
		}
		return err
	}

	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	sess.AccessToken = resp.AccessToken

	return c.saveSession(sess)
}

// Logout revokes both tokens and forgets the session. Tokens the server
// already rejects are not reported as errors.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if !c.LoggedIn() {
		return ErrNotLoggedIn
	}

	var errs []error
	if at := c.token(accessToken); at != "" {
		if err := c.send(ctx, http.MethodPost, "/logout/access", nil, at, nil); err != nil && !isUnauthorized(err) {
			errs = append(errs, err)
		}
	}
	if rt := c.token(refreshToken); rt != "" {
		if err := c.send(ctx, http.MethodPost, "/logout/refresh", nil, rt, nil); err != nil && !isUnauthorized(err) {
			errs = append(errs, err)
		}
	}

	errs = append(errs, c.clearSession())
	return errors.Join(errs...)
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	if err := c.authorized(ctx, http.MethodGet, "/todos", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	task := &models.Task{}
	if err := c.authorized(ctx, http.MethodPost, "/todos", in, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task := &models.Task{}
	if err := c.authorized(ctx, http.MethodGet, taskPath(id), nil, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error) {
	task := &models.Task{}
	if err := c.authorized(ctx, http.MethodPut, taskPath(id), in, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id int64) error {
	return c.authorized(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

// authorized sends the request with the access token. When the server
// answers "token expired" and a refresh token is at hand, the access token
// is refreshed and the request replayed once.
func (c *HTTPClient) authorized(ctx context.Context, method, path string, body, out any) error {
	at := c.token(accessToken)
	if at == "" && c.token(refreshToken) == "" {
		return ErrNotLoggedIn
	}

	err := c.send(ctx, method, path, body, at, out)
	if !tokenExpired(err) || c.token(refreshToken) == "" {
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	return c.send(ctx, method, path, body, c.token(accessToken), out)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any, token string, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("request encode error: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("response decode error: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var msg messageResponse
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return &APIError{StatusCode: status, Message: msg.Message}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}
