// Package gateway implements the authenticated HTTP client for the
// taskboard API. It owns the session credentials, performs at most one
// token refresh per failed call, and normalizes every failure into a
// typed APIError.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds each request unless configured otherwise.
const DefaultTimeout = 30 * time.Second

// User is the client-side view of an account.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
}

// authData mirrors the server's auth envelope payload.
type authData struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// envelope mirrors the server's uniform response body.
type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStateFile sets the path where the session (user + authenticated
// flag, never tokens) is persisted.
func WithStateFile(path string) Option {
	return func(c *Client) { c.statePath = path }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client performs authenticated requests against the taskboard API.
// It is safe for concurrent use. The credential pair is owned solely by
// the client; callers never see tokens.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	statePath  string
	logger     *slog.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         *User

	// refreshGroup collapses concurrent refresh attempts into one
	// round trip.
	refreshGroup singleflight.Group
}

// NewClient creates a gateway client for the given API base URL
// (e.g. "http://localhost:8080/api"). Persisted session state, if any,
// is rehydrated; tokens are never persisted so a restart always begins
// without credentials.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "gateway"))

	session := loadSession(c.statePath, c.logger)
	if session.Authenticated {
		c.user = session.User
	}

	return c
}

// User returns the last known account, or nil when unauthenticated.
func (c *Client) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Authenticated reports whether the client holds an access token.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

// refreshDecision classifies a response status into the action the
// client should take. Pure; the retry/refresh policy lives here so it
// can be tested without a transport.
type refreshAction int

const (
	actionOk refreshAction = iota
	actionNeedsRefresh
	actionUnauthenticated
)

func refreshDecision(status int, alreadyRetried, hasRefreshToken bool) refreshAction {
	if status != http.StatusUnauthorized {
		return actionOk
	}
	if alreadyRetried || !hasRefreshToken {
		return actionUnauthenticated
	}
	return actionNeedsRefresh
}

// Do performs an API request and returns the unwrapped data field of the
// response envelope. On a 401 it refreshes the session once and replays
// the request once; any other failure is classified into an APIError.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body interface{},
) (json.RawMessage, error) {
	return c.do(ctx, method, path, query, body, false)
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body interface{},
	alreadyRetried bool,
) (json.RawMessage, error) {
	env, status, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	if env.Success {
		return env.Data, nil
	}

	c.mu.Lock()
	hasRefreshToken := c.refreshToken != ""
	c.mu.Unlock()

	switch refreshDecision(status, alreadyRetried, hasRefreshToken) {
	case actionNeedsRefresh:
		if err := c.refreshSession(ctx); err != nil {
			return nil, err
		}
		return c.do(ctx, method, path, query, body, true)

	case actionUnauthenticated:
		c.clearCredentials()
		return nil, &APIError{
			Kind:       KindAuth,
			StatusCode: status,
			Message:    env.Message,
		}

	default:
		return nil, c.errorFromEnvelope(status, env)
	}
}

// roundTrip executes one HTTP exchange and decodes the envelope.
// Transport failures are classified into Timeout or Network kinds.
func (c *Client) roundTrip(
	ctx context.Context,
	method, path string,
	query url.Values,
	body interface{},
) (envelope, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return envelope{}, 0, &APIError{
				Kind: KindValidation, Message: "failed to encode request body", Err: err,
			}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, reqBody)
	if err != nil {
		return envelope{}, 0, &APIError{
			Kind: KindNetwork, Message: "failed to build request", Err: err,
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, 0, classifyTransportError(err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, 0, &APIError{
			Kind:       KindUpstream,
			StatusCode: resp.StatusCode,
			Message:    "malformed response from server",
			Err:        err,
		}
	}

	return env, resp.StatusCode, nil
}

// classifyTransportError distinguishes timeouts from other transport
// failures.
func classifyTransportError(err error) *APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &APIError{Kind: KindNetwork, Message: "request canceled", Err: err}
	}
	return &APIError{Kind: KindNetwork, Message: "request failed", Err: err}
}

// errorFromEnvelope builds the APIError for a non-401 failure envelope.
func (c *Client) errorFromEnvelope(status int, env envelope) *APIError {
	apiErr := &APIError{
		Kind:       kindForStatus(status),
		StatusCode: status,
		Message:    env.Message,
	}

	if apiErr.Kind == KindValidation && len(env.Data) > 0 {
		// Validation failures may enumerate per-field messages in data.
		var details struct {
			Errors map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(env.Data, &details); err == nil && len(details.Errors) > 0 {
			apiErr.Fields = details.Errors
		}
	}

	return apiErr
}

// refreshSession exchanges the refresh token for a new pair. Concurrent
// callers share a single refresh round trip. Failure clears the
// credentials so the caller is routed to login.
func (c *Client) refreshSession(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		c.mu.Lock()
		refreshToken := c.refreshToken
		c.mu.Unlock()

		env, status, err := c.roundTrip(ctx, http.MethodPost, "/auth/refresh", nil,
			map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return nil, err
		}
		if !env.Success {
			c.clearCredentials()
			return nil, &APIError{
				Kind:       KindAuth,
				StatusCode: status,
				Message:    "session expired",
			}
		}

		var data authData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			c.clearCredentials()
			return nil, &APIError{
				Kind:    KindAuth,
				Message: "malformed refresh response",
				Err:     err,
			}
		}

		c.storeCredentials(data)
		c.logger.Debug("session refreshed")
		return nil, nil
	})
	return err
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(
	ctx context.Context,
	path string,
	payload map[string]string,
) (*User, error) {
	env, status, err := c.roundTrip(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, c.errorFromEnvelope(status, env)
	}

	var data authData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &APIError{
			Kind:    KindUpstream,
			Message: "malformed auth response",
			Err:     err,
		}
	}

	c.storeCredentials(data)
	saveSession(c.statePath, Session{User: &data.User, Authenticated: true}, c.logger)

	user := data.User
	return &user, nil
}

// Logout clears credentials locally before notifying the server, so the
// client ends up logged out even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	c.clearCredentials()
	saveSession(c.statePath, Session{}, c.logger)

	_, _, err := c.roundTrip(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		c.logger.Warn("server logout call failed, credentials already cleared",
			"error", err)
		return err
	}
	return nil
}

// Profile fetches the current account from the server.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	data, err := c.Do(ctx, http.MethodGet, "/auth/profile", nil, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, &APIError{
			Kind:    KindUpstream,
			Message: "malformed profile response",
			Err:     err,
		}
	}

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()

	return &user, nil
}

func (c *Client) storeCredentials(data authData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = data.AccessToken
	c.refreshToken = data.RefreshToken
	user := data.User
	c.user = &user
}

func (c *Client) clearCredentials() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.refreshToken = ""
}

// SetCredentials is a test hook for injecting a known token pair.
func (c *Client) SetCredentials(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}
