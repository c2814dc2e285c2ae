package client

import (
	"context"

	"github.com/cracksmith/cracksmith/internal/client/models"
)

// TokenSource supplies the bearer token for authenticated requests. The
// session service is the only implementation used outside tests.
type TokenSource interface {
	// AccessToken returns the bearer of the current session. An error stops
	// the request before anything is sent.
	AccessToken(ctx context.Context) (string, error)
	// TokenRejected reports that the server answered 401 to a request that
	// carried token.
	TokenRejected(ctx context.Context, token string)
}

// LoginRequest is the body of POST /auth/login. PIN is optional.
type LoginRequest struct {
	Username string
	Password string
	PIN      string
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	PIN      string
}

// ListJobsRequest selects one page of the caller's jobs. An empty Status
// lists every status.
type ListJobsRequest struct {
	Status  models.JobStatus
	Page    int
	PerPage int
}

// PageRequest selects one page of an admin listing.
type PageRequest struct {
	Page    int
	PerPage int
}

// Installation is the body of POST /auth/installation.
type Installation struct {
	DeviceID string
	Platform string
	Version  string
}

// Client is the REST contract of the cracking service.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*models.AuthResult, error)
	// CurrentUser fetches the identity bound to accessToken.
	CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error)
	// RefreshAccessToken exchanges a refresh token for a new access token.
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	SetPIN(ctx context.Context, pin string, currentPIN string) error
	TrackInstallation(ctx context.Context, in Installation) error

	CreateJob(ctx context.Context, hashValue string, hashType models.HashType) (*models.Job, error)
	ListJobs(ctx context.Context, req ListJobsRequest) (*models.JobPage, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	DeleteJob(ctx context.Context, id int64) error

	UserStats(ctx context.Context) (*models.UserStats, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

// AdminClient is the /admin surface. The server answers 403 to accounts
// without the admin flag.
type AdminClient interface {
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
	ListUsers(ctx context.Context, req PageRequest) (*models.UserPage, error)
	UpgradeUser(ctx context.Context, id int64) (*models.Identity, error)
	// GrantAdmin needs the server-wide admin PIN; a wrong PIN is ErrUnauthorized.
	GrantAdmin(ctx context.Context, id int64, adminPIN string) (*models.Identity, error)
	ListInstallations(ctx context.Context, req PageRequest) (*models.InstallationPage, error)
	// ListAllJobs lists the jobs of every user.
	ListAllJobs(ctx context.Context, req ListJobsRequest) (*models.JobPage, error)
	Settings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, settings map[string]string) error
}
