package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/config"
	"github.com/cracksmith/cracksmith/internal/client/services"
	"github.com/cracksmith/cracksmith/internal/logging"
)

// waitInterval is how often "wait" polls a running job.
const waitInterval = 2 * time.Second

// Services bundles the application services the CLI consumes.
type Services struct {
	Session services.SessionService
	Jobs    services.JobService
	Stats   services.StatsService
	Account services.AccountService
	Admin   services.AdminService
}

type App struct {
	config  *config.Config
	session services.SessionService
	jobs    services.JobService
	stats   services.StatsService
	account services.AccountService
	admin   services.AdminService
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

// NewApp binds the REPL to standard input and output.
func NewApp(c *config.Config, s Services, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		config:  c,
		session: s.Session,
		jobs:    s.Jobs,
		stats:   s.Stats,
		account: s.Account,
		admin:   s.Admin,
		log:     log.With("component", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
	}
}

// Run blocks until the user exits or ctx is canceled.
func (a *App) Run(ctx context.Context) {
	defer a.session.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	id := a.session.Identity()
	return id != nil && id.IsAdmin
}

// StartSessionWatcher checks access-token expiry every interval and tells
// the user when the session has been ended.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkSession(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkSession(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	err := a.session.CheckExpiry(cctx, a.now())
	switch {
	case err == nil, errors.Is(err, client.ErrStaleResult):
	case errors.Is(err, client.ErrSessionExpired):
		printlnFn("Session expired, please login again")
	default:
		a.log.Warn(ctx, "session check failed", "error", err)
	}
}
