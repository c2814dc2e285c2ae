package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/client/repositories/credentials"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

var epoch0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch0 }

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return s
}

func neo() models.Identity {
	return models.Identity{ID: 7, Username: "neo", Email: "neo@example.com", CreatedAt: epoch0.Add(-24 * time.Hour)}
}

// failingStore wraps a MemoryStore and fails selected writes.
type failingStore struct {
	*credentials.MemoryStore
	saveErr  error
	clearErr error
	loadErr  error
}

func (f *failingStore) Load(ctx context.Context) (models.Credentials, error) {
	if f.loadErr != nil {
		return models.Credentials{}, f.loadErr
	}
	return f.MemoryStore.Load(ctx)
}

func (f *failingStore) Save(ctx context.Context, c models.Credentials) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.Save(ctx, c)
}

func (f *failingStore) Clear(ctx context.Context) error {
	if err := f.MemoryStore.Clear(ctx); err != nil {
		return err
	}
	return f.clearErr
}

// ---- fake client ----

// fakeClient implements client.Client for service tests. Auth calls return
// programmed results; job calls are served from an in-memory job table.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	authResult *models.AuthResult
	accountPIN string
	loginErr   error
	loginHook  func()

	registerErr  error
	lastRegister client.RegisterRequest

	me     *models.Identity
	meErr  error
	meHook func()

	refreshed  string
	refreshErr error

	setPINErr      error
	lastPIN        string
	lastCurrentPIN string

	installations []client.Installation

	stats     *models.UserStats
	statsErr  error
	dashboard *models.Dashboard

	jobs     []models.Job
	nextID   int64
	lastList client.ListJobsRequest
	getQueue []models.Job
	getHook  func(call int) error
	listErr  error
}

func newFakeClient() *fakeClient {
	id := neo()
	return &fakeClient{
		calls:  map[string]int{},
		me:     &id,
		nextID: 1,
	}
}

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) Register(ctx context.Context, req client.RegisterRequest) (*models.AuthResult, error) {
	f.hit("Register")
	f.lastRegister = req
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.authResult, nil
}

func (f *fakeClient) Login(ctx context.Context, req client.LoginRequest) (*models.AuthResult, error) {
	f.hit("Login")
	if f.loginHook != nil {
		f.loginHook()
	}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.accountPIN != "" && req.PIN == "" {
		return nil, fmt.Errorf("%w: PIN code required", client.ErrPINRequired)
	}
	if f.accountPIN != "" && req.PIN != f.accountPIN {
		return nil, fmt.Errorf("%w: Invalid PIN code", client.ErrUnauthorized)
	}
	return f.authResult, nil
}

func (f *fakeClient) CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	f.hit("CurrentUser")
	if f.meHook != nil {
		f.meHook()
	}
	if f.meErr != nil {
		return nil, f.meErr
	}
	id := *f.me
	return &id, nil
}

func (f *fakeClient) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	f.hit("RefreshAccessToken")
	return f.refreshed, f.refreshErr
}

func (f *fakeClient) SetPIN(ctx context.Context, pin string, currentPIN string) error {
	f.hit("SetPIN")
	f.lastPIN, f.lastCurrentPIN = pin, currentPIN
	return f.setPINErr
}

func (f *fakeClient) TrackInstallation(ctx context.Context, in client.Installation) error {
	f.hit("TrackInstallation")
	f.installations = append(f.installations, in)
	return nil
}

func (f *fakeClient) CreateJob(ctx context.Context, hashValue string, hashType models.HashType) (*models.Job, error) {
	f.hit("CreateJob")
	f.mu.Lock()
	defer f.mu.Unlock()
	if hashType == models.HashTypeAuto {
		hashType = models.DetectHashType(hashValue)
	}
	j := models.Job{
		ID:        f.nextID,
		HashValue: hashValue,
		HashType:  hashType,
		Status:    models.JobStatusQueued,
		CreatedAt: epoch0.Add(time.Duration(f.nextID) * time.Minute),
	}
	f.nextID++
	f.jobs = append(f.jobs, j)
	return &j, nil
}

func (f *fakeClient) ListJobs(ctx context.Context, req client.ListJobsRequest) (*models.JobPage, error) {
	f.hit("ListJobs")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = req
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []models.Job
	for _, j := range f.jobs {
		if req.Status == "" || j.Status == req.Status {
			matched = append(matched, j)
		}
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].CreatedAt.After(matched[b].CreatedAt) })

	pages := (len(matched) + req.PerPage - 1) / req.PerPage
	start := (req.Page - 1) * req.PerPage
	end := start + req.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	return &models.JobPage{
		Jobs:       append([]models.Job(nil), matched[start:end]...),
		Page:       req.Page,
		PerPage:    req.PerPage,
		Total:      len(matched),
		TotalPages: pages,
	}, nil
}

func (f *fakeClient) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	f.hit("GetJob")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getHook != nil {
		if err := f.getHook(f.calls["GetJob"]); err != nil {
			return nil, err
		}
	}
	if len(f.getQueue) > 0 {
		j := f.getQueue[0]
		if len(f.getQueue) > 1 {
			f.getQueue = f.getQueue[1:]
		}
		return &j, nil
	}
	for _, j := range f.jobs {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, fmt.Errorf("%w: Job not found", client.ErrNotFound)
}

func (f *fakeClient) DeleteJob(ctx context.Context, id int64) error {
	f.hit("DeleteJob")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs {
		if j.ID != id {
			continue
		}
		if !models.CanDelete(j.Status) {
			return fmt.Errorf("%w: Cannot delete job in current status", client.ErrConflict)
		}
		f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: Job not found", client.ErrNotFound)
}

func (f *fakeClient) UserStats(ctx context.Context) (*models.UserStats, error) {
	f.hit("UserStats")
	return f.stats, f.statsErr
}

func (f *fakeClient) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	f.hit("Dashboard")
	return f.dashboard, f.statsErr
}

// setStatus moves a job on the fake server, as a worker would.
func (f *fakeClient) setStatus(id int64, s models.JobStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			f.jobs[i].Status = s
		}
	}
}

var errBoom = errors.New("boom")

// testClock is a settable clock for expiry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
