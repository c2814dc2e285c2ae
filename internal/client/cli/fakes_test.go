package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/config"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/client/services"
	"github.com/cracksmith/cracksmith/internal/logging"
)

// ------------ output and input stubs ------------

// captureOutput replaces printlnFn and returns the collected lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func joined(lines *[]string) string { return strings.Join(*lines, "\n") }

// stubInputs answers text prompts and secret prompts from the given queues.
func stubInputs(t *testing.T, texts []string, secrets []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(prompt string, _ io.Writer) ([]byte, error) {
		if len(secrets) == 0 {
			return nil, io.EOF
		}
		v := secrets[0]
		secrets = secrets[1:]
		return []byte(v), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

// ------------ fake services ------------

type loginCall struct{ username, password, pin string }

type fakeSession struct {
	identity *models.Identity

	loginOutcomes []services.LoginOutcome
	loginErr      error
	logins        []loginCall

	registered  *services.RegisterInput
	registerErr error

	logoutCalls int
	logoutErr   error

	refreshErr error
	expiryErr  error
	closed     bool

	mu     sync.Mutex
	checks int
}

func (f *fakeSession) AccessToken(context.Context) (string, error) { return "", nil }
func (f *fakeSession) TokenRejected(context.Context, string)       {}

func (f *fakeSession) Initialize(context.Context) error { return nil }

func (f *fakeSession) Login(_ context.Context, u, p, pin string) (services.LoginOutcome, error) {
	f.logins = append(f.logins, loginCall{u, p, pin})
	if f.loginErr != nil {
		return services.LoginFailed, f.loginErr
	}
	out := services.LoginSucceeded
	if len(f.loginOutcomes) > 0 {
		out = f.loginOutcomes[0]
		f.loginOutcomes = f.loginOutcomes[1:]
	}
	if out == services.LoginSucceeded {
		f.identity = &models.Identity{ID: 1, Username: u}
	}
	return out, nil
}

func (f *fakeSession) Register(_ context.Context, in services.RegisterInput) error {
	f.registered = &in
	if f.registerErr != nil {
		return f.registerErr
	}
	f.identity = &models.Identity{ID: 2, Username: in.Username, Email: in.Email}
	return nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.logoutCalls++
	f.identity = nil
	return f.logoutErr
}

func (f *fakeSession) RefreshIdentity(context.Context) error    { return f.refreshErr }
func (f *fakeSession) RefreshAccessToken(context.Context) error { return nil }

func (f *fakeSession) CheckExpiry(context.Context, time.Time) error {
	f.mu.Lock()
	f.checks++
	f.mu.Unlock()
	if f.expiryErr != nil {
		f.identity = nil
	}
	return f.expiryErr
}

func (f *fakeSession) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func (f *fakeSession) State() services.SessionState {
	if f.identity != nil {
		return services.ResolvedAuthenticated
	}
	return services.ResolvedUnauthenticated
}

func (f *fakeSession) Identity() *models.Identity {
	if f.identity == nil {
		return nil
	}
	id := *f.identity
	return &id
}

func (f *fakeSession) IsAuthenticated() bool              { return f.identity != nil }
func (f *fakeSession) Resolved() bool                     { return true }
func (f *fakeSession) WaitResolved(context.Context) error { return nil }
func (f *fakeSession) Close() error                       { f.closed = true; return nil }

type fakeJobs struct {
	submitted []string
	types     []models.HashType
	submitErr error

	filters []services.JobFilter
	page    *models.JobPage
	listErr error

	jobs   map[int64]models.Job
	getErr error

	waited  []int64
	waitErr error
	deleted []int64
	delErr  error
}

func (f *fakeJobs) Submit(_ context.Context, hash string, t models.HashType) (*models.Job, error) {
	f.submitted = append(f.submitted, hash)
	f.types = append(f.types, t)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.Job{ID: 99, HashValue: hash, HashType: t, Status: models.JobStatusQueued}, nil
}

func (f *fakeJobs) List(_ context.Context, fl services.JobFilter) (*models.JobPage, error) {
	f.filters = append(f.filters, fl)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.page, nil
}

func (f *fakeJobs) Get(_ context.Context, id int64) (*models.Job, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	j, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: Job not found", client.ErrNotFound)
	}
	return &j, nil
}

func (f *fakeJobs) Wait(_ context.Context, id int64, _ time.Duration) (*models.Job, error) {
	f.waited = append(f.waited, id)
	j, ok := f.jobs[id]
	if f.waitErr != nil {
		if !ok {
			return nil, f.waitErr
		}
		return &j, f.waitErr
	}
	j.Status = models.JobStatusCompleted
	return &j, nil
}

func (f *fakeJobs) Delete(ctx context.Context, j models.Job) error {
	if !models.CanDelete(j.Status) {
		return client.ErrConflict
	}
	return f.DeleteByID(ctx, j.ID)
}

func (f *fakeJobs) DeleteByID(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.delErr
}

type fakeStats struct {
	stats     *models.UserStats
	summary   models.StatusSummary
	dashboard *models.Dashboard
	err       error
}

func (f *fakeStats) UserStats(context.Context) (*models.UserStats, error) { return f.stats, f.err }
func (f *fakeStats) Summary(context.Context) (models.StatusSummary, error) {
	return f.summary, f.err
}
func (f *fakeStats) Dashboard(context.Context) (*models.Dashboard, error) {
	return f.dashboard, f.err
}

type fakeAccount struct {
	pins       [][3]string
	pinErr     error
	installs   []string
	installErr error
}

func (f *fakeAccount) SetPIN(_ context.Context, pin, confirm, current string) error {
	f.pins = append(f.pins, [3]string{pin, confirm, current})
	return f.pinErr
}

func (f *fakeAccount) TrackInstallation(_ context.Context, version string) error {
	f.installs = append(f.installs, version)
	return f.installErr
}

type fakeAdmin struct {
	stats         *models.PlatformStats
	users         *models.UserPage
	installations *models.InstallationPage
	jobs          *models.JobPage
	settings      map[string]string
	err           error

	pages    []int
	filters  []services.JobFilter
	upgraded []int64
	granted  []string
	updates  []map[string]string
}

func (f *fakeAdmin) PlatformStats(context.Context) (*models.PlatformStats, error) {
	return f.stats, f.err
}

func (f *fakeAdmin) Users(_ context.Context, page, _ int) (*models.UserPage, error) {
	f.pages = append(f.pages, page)
	return f.users, f.err
}

func (f *fakeAdmin) UpgradeUser(_ context.Context, id int64) (*models.Identity, error) {
	f.upgraded = append(f.upgraded, id)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Identity{ID: id, Username: fmt.Sprintf("user%d", id), IsPaid: true}, nil
}

func (f *fakeAdmin) GrantAdmin(_ context.Context, id int64, pin string) (*models.Identity, error) {
	f.granted = append(f.granted, fmt.Sprintf("%d:%s", id, pin))
	if f.err != nil {
		return nil, f.err
	}
	return &models.Identity{ID: id, Username: fmt.Sprintf("user%d", id), IsAdmin: true}, nil
}

func (f *fakeAdmin) Installations(_ context.Context, page, _ int) (*models.InstallationPage, error) {
	f.pages = append(f.pages, page)
	return f.installations, f.err
}

func (f *fakeAdmin) Jobs(_ context.Context, fl services.JobFilter) (*models.JobPage, error) {
	f.filters = append(f.filters, fl)
	return f.jobs, f.err
}

func (f *fakeAdmin) Settings(context.Context) (map[string]string, error) { return f.settings, f.err }

func (f *fakeAdmin) UpdateSettings(_ context.Context, s map[string]string) error {
	f.updates = append(f.updates, s)
	return f.err
}

// ------------ app builder ------------

type testDeps struct {
	session *fakeSession
	jobs    *fakeJobs
	stats   *fakeStats
	account *fakeAccount
	admin   *fakeAdmin
}

func newTestApp() (*App, *testDeps) {
	d := &testDeps{
		session: &fakeSession{},
		jobs:    &fakeJobs{jobs: map[int64]models.Job{}},
		stats:   &fakeStats{},
		account: &fakeAccount{},
		admin:   &fakeAdmin{},
	}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ClientVersion = "test"
	a := NewApp(cfg, Services{
		Session: d.session,
		Jobs:    d.jobs,
		Stats:   d.stats,
		Account: d.account,
		Admin:   d.admin,
	}, logging.Nop())
	a.reader = bufio.NewReader(strings.NewReader(""))
	a.out = &bytes.Buffer{}
	return a, d
}
