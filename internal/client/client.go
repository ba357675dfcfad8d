// Package client talks to the postfeed backend over HTTP. A Client is the
// auth provider, identity store, post store and feed source of a client
// process.
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
	"sync"
	"time"

	"postfeed/internal/common"
	"postfeed/internal/config"
	"postfeed/internal/logging"
	"postfeed/internal/models"
	"postfeed/internal/session"
)

type tokens struct {
	user    session.AuthUser
	access  string
	refresh string
}

type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	logger  logging.Logger

	// refreshMu serializes token refreshes. The server rotates the refresh
	// token on use, so only one refresh may be in flight.
	refreshMu sync.Mutex

	mu        sync.Mutex
	session   *tokens
	observers map[int]func(*session.AuthUser)
	nextID    int
}

func New(cfg *config.ClientConfig, logger logging.Logger) *Client {
	return &Client{
		baseURL:   cfg.APIURL,
		http:      &http.Client{Timeout: cfg.RequestTimeout},
		stream:    &http.Client{},
		logger:    logger.With("module", "client"),
		observers: make(map[int]func(*session.AuthUser)),
	}
}

// wire types of the backend API

type sessionResponse struct {
	User         models.Identity `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type callableRequest struct {
	Data any `json:"data"`
}

type callableResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// request describes one API call. Authenticated requests carry the access
// token and are retried once after a token refresh.
type request struct {
	method string
	path   string
	body   any
	auth   bool
}

func (c *Client) current() *tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// accessToken returns the current access token, or "" when signed out.
func (c *Client) accessToken() string {
	if t := c.current(); t != nil {
		return t.access
	}
	return ""
}

func (c *Client) send(ctx context.Context, req request, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s %s: %w: %v", req.method, req.path, ErrUnavailable, err)
	}
	return resp, nil
}

// roundTrip sends req and refreshes the session once on 401.
func (c *Client) roundTrip(ctx context.Context, req request) (*http.Response, error) {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	token := ""
	if req.auth {
		token = c.accessToken()
	}

	resp, err := c.send(ctx, req, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || token == "" {
		return resp, nil
	}
	drain(resp)

	if err := c.refresh(ctx, token); err != nil {
		return nil, err
	}
	return c.send(ctx, req, payload, c.accessToken())
}

// do performs a REST call and decodes the JSON answer into out.
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return statusError(resp.StatusCode, body.Error)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// call invokes a server function with the callable envelope.
func (c *Client) call(ctx context.Context, name string, data any) error {
	resp, err := c.roundTrip(ctx, request{
		method: http.MethodPost,
		path:   "/api/functions/" + url.PathEscape(name),
		body:   callableRequest{Data: data},
		auth:   true,
	})
	if err != nil {
		return err
	}
	defer drain(resp)

	var body callableResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return statusError(resp.StatusCode, "")
	}
	if body.Error != nil {
		return callableError(body.Error.Status, body.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp.StatusCode, "")
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, email, password, name string) (*session.AuthUser, error) {
	var out sessionResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   map[string]string{"email": email, "password": password, "name": name},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return c.signedIn(out), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*session.AuthUser, error) {
	var out sessionResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	return c.signedIn(out), nil
}

// SignOut revokes the refresh token on a best-effort basis and drops the
// local session.
func (c *Client) SignOut(ctx context.Context) error {
	if c.current() == nil {
		return nil
	}

	err := c.do(ctx, request{method: http.MethodPost, path: "/api/auth/logout", auth: true}, nil)
	if err != nil && !errors.Is(err, common.ErrUnauthenticated) {
		c.logger.Warn(ctx, "logout request failed", "error", err)
	}

	c.setSession(nil)
	return nil
}

// refresh rotates the session tokens after stale was rejected. When another
// caller already replaced stale, the new tokens are used as they are.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	t := c.current()
	if t == nil {
		return common.ErrUnauthenticated
	}
	if t.access != stale {
		return nil
	}

	var out sessionResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/refresh-token",
		body:   map[string]string{"refreshToken": t.refresh},
	}, &out)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			c.logger.Info(ctx, "session expired")
			c.dropSession(t)
		}
		return fmt.Errorf("refresh session: %w", err)
	}

	c.mu.Lock()
	if c.session == t {
		c.session = &tokens{user: t.user, access: out.AccessToken, refresh: out.RefreshToken}
	}
	c.mu.Unlock()
	return nil
}

// dropSession signs out unless t was already replaced by a newer sign-in.
func (c *Client) dropSession(t *tokens) {
	c.mu.Lock()
	same := c.session == t
	c.mu.Unlock()

	if same {
		c.setSession(nil)
	}
}

func (c *Client) signedIn(out sessionResponse) *session.AuthUser {
	user := session.AuthUser{
		UID:         out.User.ID,
		Email:       out.User.Email,
		DisplayName: out.User.Name,
	}
	c.setSession(&tokens{user: user, access: out.AccessToken, refresh: out.RefreshToken})
	return &user
}

// setSession swaps the session and notifies observers outside the lock.
func (c *Client) setSession(t *tokens) {
	c.mu.Lock()
	c.session = t
	observers := make([]func(*session.AuthUser), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	var user *session.AuthUser
	if t != nil {
		u := t.user
		user = &u
	}
	for _, fn := range observers {
		fn(user)
	}
}

// OnAuthStateChanged calls fn with the current state right away and then on
// every sign-in and sign-out until the returned function is called.
func (c *Client) OnAuthStateChanged(fn func(user *session.AuthUser)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	var user *session.AuthUser
	if c.session != nil {
		u := c.session.user
		user = &u
	}
	c.mu.Unlock()

	fn(user)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

// SaveIdentity writes users/{id} in full.
func (c *Client) SaveIdentity(ctx context.Context, identity models.Identity) error {
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/api/users/" + url.PathEscape(identity.ID),
		body:   identity,
		auth:   true,
	}, nil)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (c *Client) GetIdentity(ctx context.Context, userID string) (models.Identity, error) {
	var out models.Identity
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/users/" + url.PathEscape(userID),
		auth:   true,
	}, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	var out models.Post
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/posts",
		body:   map[string]any{"content": post.Content, "tags": post.Tags},
		auth:   true,
	}, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, postID string) (models.Post, error) {
	var out models.Post
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/posts/" + url.PathEscape(postID),
		auth:   true,
	}, &out)
	return out, err
}

// List reads the whole posts collection.
func (c *Client) List(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/posts", auth: true}, &out)
	return out, err
}

func (c *Client) UpdatePostContent(ctx context.Context, postID, content string) error {
	return c.call(ctx, "editPost", map[string]string{"postId": postID, "newContent": content})
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.call(ctx, "deletePost", map[string]string{"postId": postID})
}

// Ping reports whether the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.do(ctx, request{method: http.MethodGet, path: "/health"}, nil)
}
