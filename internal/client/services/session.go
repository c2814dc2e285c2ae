// Package services contains the application services of the cracksmith
// client. This file defines the session service: it owns the persisted
// credential pair, the authenticated identity and the resolution flag.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/client/repositories/credentials"
	"github.com/cracksmith/cracksmith/internal/client/token"
	"github.com/cracksmith/cracksmith/internal/common"
	"github.com/cracksmith/cracksmith/internal/logging"
)

var (
	// ErrNotResolved is returned by operations that require Initialize to
	// have completed.
	ErrNotResolved = errors.New("session not resolved")
	// ErrAlreadyAuthenticated is returned by Login and Register while a
	// session is active; Logout first.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrSessionClosed is returned after Close.
	ErrSessionClosed = errors.New("session closed")
)

// SessionState is the resolution state of the session.
//
//	Unresolved -> ResolvedUnauthenticated | ResolvedAuthenticated   (Initialize)
//	ResolvedUnauthenticated -> ResolvedAuthenticated                 (Login, Register)
//	ResolvedAuthenticated -> ResolvedUnauthenticated                 (Logout, expiry)
type SessionState int

const (
	Unresolved SessionState = iota
	ResolvedUnauthenticated
	ResolvedAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case ResolvedUnauthenticated:
		return "unauthenticated"
	case ResolvedAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// LoginOutcome is the non-error result of Login. LoginPINRequired is a
// second-factor challenge: call Login again with the PIN.
type LoginOutcome int

const (
	LoginFailed LoginOutcome = iota
	LoginSucceeded
	LoginPINRequired
)

func (o LoginOutcome) String() string {
	switch o {
	case LoginSucceeded:
		return "succeeded"
	case LoginPINRequired:
		return "pin required"
	}
	return "failed"
}

// RegisterInput is the registration form. PIN is optional.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	PIN      string
}

// SessionService manages the single authenticated session of the process.
//
// Contract:
//   - Initialize resolves the session from persisted credentials; every
//     consumer that reads identity must wait for it (see WaitResolved).
//   - Login, Register and Logout are the only writers of persisted credentials.
//   - RefreshIdentity never ends the session on a failed fetch; CheckExpiry
//     and RefreshAccessToken may.
//   - An access token that is no longer usable ends the session as soon as
//     any accessor or request observes it; so does a 401 to a request that
//     carried it.
//   - Results of network calls are applied only if no login, logout or
//     expiry happened while they were in flight; otherwise ErrStaleResult.
//
// SessionService is also the client.TokenSource of the HTTP transport.
type SessionService interface {
	client.TokenSource

	Initialize(ctx context.Context) error
	Login(ctx context.Context, username, password, pin string) (LoginOutcome, error)
	Register(ctx context.Context, in RegisterInput) error
	Logout(ctx context.Context) error
	RefreshIdentity(ctx context.Context) error
	RefreshAccessToken(ctx context.Context) error
	CheckExpiry(ctx context.Context, now time.Time) error

	State() SessionState
	Identity() *models.Identity
	IsAuthenticated() bool
	Resolved() bool
	WaitResolved(ctx context.Context) error
	Close() error
}

// refreshLead is how long before expiry CheckExpiry renews the access token.
const refreshLead = time.Minute

// SessionOption customizes a SessionService.
type SessionOption func(*sessionService)

// WithClock replaces time.Now, used for token expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *sessionService) { s.now = now }
}

type sessionService struct {
	client client.Client
	store  credentials.Store
	log    logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	epoch    uint64
	state    SessionState
	closed   bool
	creds    models.Credentials
	identity *models.Identity

	resolved     chan struct{}
	resolvedOnce sync.Once
}

// NewSessionService constructs an unresolved session bound to the API client
// and the credential store.
func NewSessionService(c client.Client, store credentials.Store, log logging.Logger, opts ...SessionOption) SessionService {
	if log == nil {
		log = logging.Nop()
	}
	s := &sessionService{
		client:   c,
		store:    store,
		log:      log.With("component", "session"),
		now:      time.Now,
		resolved: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolveLocked moves the session out of Unresolved. Callers hold mu.
func (s *sessionService) resolveLocked(state SessionState) {
	s.state = state
	s.resolvedOnce.Do(func() { close(s.resolved) })
}

// resetLocked drops the in-memory session and invalidates in-flight results.
func (s *sessionService) resetLocked() {
	s.epoch++
	s.creds = models.Credentials{}
	s.identity = nil
	s.resolveLocked(ResolvedUnauthenticated)
}

// Initialize reads the persisted pair. A missing, expired or undecodable
// access token resolves the session unauthenticated without a request; a
// stored token the server refuses to exchange for an identity is cleared.
func (s *sessionService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != Unresolved {
		s.mu.Unlock()
		return nil
	}
	epoch := s.epoch

	creds, err := s.store.Load(ctx)
	if err != nil {
		s.resolveLocked(ResolvedUnauthenticated)
		s.mu.Unlock()
		s.log.Error(ctx, "load credentials failed", "error", err)
		return fmt.Errorf("%w: %w", client.ErrLocalDataNotAvailable, err)
	}
	if creds.Empty() {
		s.resolveLocked(ResolvedUnauthenticated)
		s.mu.Unlock()
		return nil
	}
	if !token.Usable(creds.AccessToken, s.now()) {
		s.clearStoreLocked(ctx)
		s.resolveLocked(ResolvedUnauthenticated)
		s.mu.Unlock()
		s.log.Info(ctx, "stored session expired")
		return nil
	}
	s.mu.Unlock()

	identity, fetchErr := s.client.CurrentUser(ctx, creds.AccessToken)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.state != Unresolved {
		s.log.Warn(ctx, "discarding identity fetched for a replaced session")
		return client.ErrStaleResult
	}
	if fetchErr != nil {
		s.clearStoreLocked(ctx)
		s.resolveLocked(ResolvedUnauthenticated)
		s.log.Warn(ctx, "restoring session failed", "error", fetchErr)
		return fmt.Errorf("restore session: %w", fetchErr)
	}
	s.creds = creds
	s.identity = identity
	s.resolveLocked(ResolvedAuthenticated)
	s.log.Info(ctx, "session restored", "user", identity.Username)
	return nil
}

func (s *sessionService) clearStoreLocked(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "clear credentials failed", "error", err)
	}
}

// beginAuth checks that Login or Register may start and returns the
// epoch the result must be applied against.
func (s *sessionService) beginAuth() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return 0, ErrSessionClosed
	case s.state == Unresolved:
		return 0, ErrNotResolved
	case s.state == ResolvedAuthenticated:
		return 0, ErrAlreadyAuthenticated
	}
	return s.epoch, nil
}

// establish stores a fresh session if nothing replaced the one the request
// was issued for. Persisting happens first so a failed write leaves no
// partial state behind.
func (s *sessionService) establish(ctx context.Context, epoch uint64, res *models.AuthResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.epoch != epoch || s.state != ResolvedUnauthenticated {
		s.log.Warn(ctx, "discarding authentication result for a replaced session")
		return client.ErrStaleResult
	}
	if err := s.store.Save(ctx, res.Credentials); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	s.epoch++
	s.creds = res.Credentials
	identity := res.Identity
	s.identity = &identity
	s.state = ResolvedAuthenticated
	return nil
}

func (s *sessionService) Login(ctx context.Context, username, password, pin string) (LoginOutcome, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginFailed, fmt.Errorf("%w: username and password are required", client.ErrValidation)
	}

	epoch, err := s.beginAuth()
	if err != nil {
		return LoginFailed, err
	}

	res, err := s.client.Login(ctx, client.LoginRequest{Username: username, Password: password, PIN: pin})
	if errors.Is(err, client.ErrPINRequired) {
		return LoginPINRequired, nil
	}
	if err != nil {
		return LoginFailed, err
	}
	if err := s.establish(ctx, epoch, res); err != nil {
		return LoginFailed, err
	}
	s.log.Info(ctx, "logged in", "user", res.Identity.Username)
	return LoginSucceeded, nil
}

func (s *sessionService) Register(ctx context.Context, in RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return fmt.Errorf("%w: username, email and password are required", client.ErrValidation)
	}
	if in.PIN != "" && len(in.PIN) < common.MinPINLength {
		return fmt.Errorf("%w: PIN must be at least %d characters", client.ErrValidation, common.MinPINLength)
	}

	epoch, err := s.beginAuth()
	if err != nil {
		return err
	}

	res, err := s.client.Register(ctx, client.RegisterRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		PIN:      in.PIN,
	})
	if err != nil {
		return err
	}
	if err := s.establish(ctx, epoch, res); err != nil {
		return err
	}
	s.log.Info(ctx, "registered", "user", res.Identity.Username)
	return nil
}

// Logout clears the session in memory first, so it succeeds regardless of
// the network and of the store. A store failure is still reported.
func (s *sessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "clear credentials failed", "error", err)
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *sessionService) RefreshIdentity(ctx context.Context) error {
	s.mu.Lock()
	if s.dropStaleLocked(ctx) {
		s.mu.Unlock()
		return client.ErrSessionExpired
	}
	if s.state != ResolvedAuthenticated {
		s.mu.Unlock()
		return client.ErrNotAuthenticated
	}
	epoch, tok := s.epoch, s.creds.AccessToken
	s.mu.Unlock()

	identity, err := s.client.CurrentUser(ctx, tok)
	if err != nil {
		s.log.Warn(ctx, "refresh identity failed", "error", err)
		return fmt.Errorf("refresh identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.state != ResolvedAuthenticated {
		s.log.Warn(ctx, "discarding identity fetched for a replaced session")
		return client.ErrStaleResult
	}
	s.identity = identity
	return nil
}

// RefreshAccessToken exchanges the refresh token for a new access token. A
// refresh token the server rejects ends the session with ErrSessionExpired;
// transport failures leave it untouched.
func (s *sessionService) RefreshAccessToken(ctx context.Context) error {
	s.mu.Lock()
	if s.state != ResolvedAuthenticated {
		s.mu.Unlock()
		return client.ErrNotAuthenticated
	}
	epoch, refresh := s.epoch, s.creds.RefreshToken
	s.mu.Unlock()

	if refresh == "" {
		return s.expire(ctx, epoch)
	}

	access, err := s.client.RefreshAccessToken(ctx, refresh)
	if errors.Is(err, client.ErrUnauthorized) {
		s.log.Warn(ctx, "refresh token rejected", "error", err)
		return s.expire(ctx, epoch)
	}
	if err != nil {
		return fmt.Errorf("refresh access token: %w", err)
	}
	if !token.Usable(access, s.now()) {
		return fmt.Errorf("%w: refreshed access token is not usable", client.ErrTransport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.state != ResolvedAuthenticated {
		return client.ErrStaleResult
	}
	if err := s.store.SaveAccessToken(ctx, access); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	s.creds.AccessToken = access
	s.log.Debug(ctx, "access token refreshed")
	return nil
}

// CheckExpiry refreshes an access token that expires within refreshLead of
// now and ends the session when the token is no longer usable at now and
// could not be refreshed. It returns ErrSessionExpired when the session was
// ended.
func (s *sessionService) CheckExpiry(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	if s.state != ResolvedAuthenticated || token.Usable(s.creds.AccessToken, now.Add(refreshLead)) {
		s.mu.Unlock()
		return nil
	}
	epoch, canRefresh := s.epoch, s.creds.RefreshToken != ""
	stale := !token.Usable(s.creds.AccessToken, now)
	s.mu.Unlock()

	if canRefresh {
		err := s.RefreshAccessToken(ctx)
		if err == nil || errors.Is(err, client.ErrSessionExpired) || errors.Is(err, client.ErrStaleResult) {
			return err
		}
		s.log.Warn(ctx, "refresh before expiry failed", "error", err, "stale", stale)
	}
	if !stale {
		return nil
	}
	return s.expire(ctx, epoch)
}

// expire ends the session identified by epoch.
func (s *sessionService) expire(ctx context.Context, epoch uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.state != ResolvedAuthenticated {
		return client.ErrStaleResult
	}
	s.resetLocked()
	s.clearStoreLocked(ctx)
	s.log.Info(ctx, "session expired")
	return client.ErrSessionExpired
}

// dropStaleLocked ends an authenticated session whose access token is no
// longer usable at s.now and reports whether it did. Callers hold mu.
func (s *sessionService) dropStaleLocked(ctx context.Context) bool {
	if s.state != ResolvedAuthenticated || token.Usable(s.creds.AccessToken, s.now()) {
		return false
	}
	s.resetLocked()
	s.clearStoreLocked(ctx)
	s.log.Info(ctx, "session expired", "reason", "access token no longer usable")
	return true
}

// AccessToken returns the bearer token of the authenticated session. A token
// that is no longer usable ends the session with ErrSessionExpired, so no
// request is sent with it.
func (s *sessionService) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropStaleLocked(ctx) {
		return "", client.ErrSessionExpired
	}
	if s.state != ResolvedAuthenticated {
		return "", client.ErrNotAuthenticated
	}
	return s.creds.AccessToken, nil
}

// TokenRejected ends the session when the server refused its current access
// token. A token that was already replaced is ignored.
func (s *sessionService) TokenRejected(ctx context.Context, tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != ResolvedAuthenticated || tok == "" || s.creds.AccessToken != tok {
		return
	}
	s.resetLocked()
	s.clearStoreLocked(ctx)
	s.log.Info(ctx, "session expired", "reason", "access token rejected by server")
}

func (s *sessionService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropStaleLocked(context.Background())
	return s.state
}

// Identity returns a copy of the current identity, nil when unauthenticated.
func (s *sessionService) Identity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropStaleLocked(context.Background())
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *sessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropStaleLocked(context.Background())
	return s.identity != nil
}

func (s *sessionService) Resolved() bool {
	select {
	case <-s.resolved:
		return true
	default:
		return false
	}
}

// WaitResolved blocks until Initialize (or Logout) has resolved the session.
func (s *sessionService) WaitResolved(ctx context.Context) error {
	select {
	case <-s.resolved:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close invalidates in-flight results. Persisted credentials are kept for
// the next start.
func (s *sessionService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.epoch++
	return nil
}
