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

	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/common"
)

const (
	maxResponseBytes = 1 << 20
	defaultTimeout   = 15 * time.Second
)

// HTTPClient talks to the REST API. Authenticated calls read the bearer token
// from the configured TokenSource on every request; the client never stores
// or rewrites credentials itself.
type HTTPClient struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string

	mu     sync.RWMutex
	tokens TokenSource
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient supplies the transport settings. The client works on its
// own copy, so hc is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// WithTokenSource sets the bearer token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

// NewHTTPClient returns a client rooted at baseURL, e.g.
// "http://127.0.0.1:5000/api".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", baseURL)
	}

	c := &HTTPClient{
		baseURL:   strings.TrimRight(u.String(), "/"),
		timeout:   defaultTimeout,
		userAgent: "cracksmith-cli",
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{}
	if c.http != nil {
		*hc = *c.http
	}
	hc.Timeout = c.timeout
	c.http = hc
	return c, nil
}

// SetTokenSource installs ts after construction. The session service needs
// the client before it exists, so wiring happens in two steps.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *HTTPClient) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *HTTPClient) bearer(ctx context.Context) (string, error) {
	ts := c.tokenSource()
	if ts == nil {
		return "", ErrNotAuthenticated
	}
	tok, err := ts.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", ErrNotAuthenticated
	}
	return tok, nil
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// token overrides the TokenSource when set.
	token string
	// auth sends a bearer token.
	auth bool
	// pinChecked marks endpoints whose 401 means a wrong PIN in the body,
	// not a rejected bearer.
	pinChecked bool
}

func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok, fromSession := r.token, false
	if r.auth {
		if tok == "" {
			if tok, err = c.bearer(ctx); err != nil {
				return err
			}
			fromSession = true
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		apiErr := newAPIError(resp.StatusCode, eb.text(), eb.PINRequired)
		if fromSession && resp.StatusCode == http.StatusUnauthorized && !r.pinChecked {
			if ts := c.tokenSource(); ts != nil {
				ts.TokenRejected(ctx, tok)
			}
			apiErr.kind = ErrSessionExpired
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed("%s %s: %v", r.method, r.path, err)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, in RegisterRequest) (*models.AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerBody{Username: in.Username, Email: in.Email, Password: in.Password, PIN: in.PIN},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) Login(ctx context.Context, in LoginRequest) (*models.AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginBody{Username: in.Username, Password: in.Password, PIN: in.PIN},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	if accessToken == "" {
		return nil, ErrNotAuthenticated
	}
	var resp meResponse
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", auth: true, token: accessToken}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User.toModel()
}

func (c *HTTPClient) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNotAuthenticated
	}
	var resp refreshResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/refresh", auth: true, token: refreshToken}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", malformed("refresh without access_token")
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) SetPIN(ctx context.Context, pin string, currentPIN string) error {
	return c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/auth/set-pin",
		body:       setPINBody{PIN: pin, CurrentPIN: currentPIN},
		auth:       true,
		pinChecked: true,
	}, nil)
}

func (c *HTTPClient) TrackInstallation(ctx context.Context, in Installation) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/installation",
		body:   installationBody{DeviceID: in.DeviceID, Platform: in.Platform, Version: in.Version},
		auth:   true,
	}, nil)
}

func (c *HTTPClient) CreateJob(ctx context.Context, hashValue string, hashType models.HashType) (*models.Job, error) {
	body := createJobBody{HashValue: hashValue}
	if hashType != models.HashTypeAuto {
		body.HashType = string(hashType)
	}

	var resp jobResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/jobs/", body: body, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Job.toModel()
}

func (c *HTTPClient) ListJobs(ctx context.Context, in ListJobsRequest) (*models.JobPage, error) {
	q := pageQuery(in.Page, in.PerPage)
	if in.Status != "" {
		q.Set("status", string(in.Status))
	}

	var resp jobListResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/jobs/", query: q, auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	var resp jobResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: jobPath(id), auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.Job.toModel()
}

// DeleteJob removes a job. The API answers 400 for jobs that already left
// the deletable states; that is reported as ErrConflict like a 409.
func (c *HTTPClient) DeleteJob(ctx context.Context, id int64) error {
	err := c.do(ctx, request{method: http.MethodDelete, path: jobPath(id), auth: true}, nil)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		apiErr.kind = ErrConflict
	}
	return err
}

func (c *HTTPClient) UserStats(ctx context.Context) (*models.UserStats, error) {
	var resp userStatsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/stats/user", auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel()
}

func (c *HTTPClient) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var resp dashboardResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/stats/dashboard", auth: true}, &resp); err != nil {
		return nil, err
	}
	return resp.toModel()
}

func jobPath(id int64) string {
	return "/jobs/" + strconv.FormatInt(id, 10)
}
