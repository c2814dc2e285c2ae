package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/logging"
)

// ErrAdminRequired is returned without a request when the session identity
// does not carry the admin flag.
var ErrAdminRequired = errors.New("admin access required")

// AdminService is the administration surface. Every operation requires an
// authenticated identity with IsAdmin set; the server checks again.
type AdminService interface {
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
	Users(ctx context.Context, page, perPage int) (*models.UserPage, error)
	// UpgradeUser marks the account as paid.
	UpgradeUser(ctx context.Context, id int64) (*models.Identity, error)
	// GrantAdmin gives the account admin rights; adminPIN is the server-wide
	// admin PIN, not the caller's login PIN.
	GrantAdmin(ctx context.Context, id int64, adminPIN string) (*models.Identity, error)
	Installations(ctx context.Context, page, perPage int) (*models.InstallationPage, error)
	// Jobs lists the jobs of every user, newest first.
	Jobs(ctx context.Context, f JobFilter) (*models.JobPage, error)
	Settings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, settings map[string]string) error
}

type adminService struct {
	client  client.AdminClient
	session SessionService
	log     logging.Logger
}

func NewAdminService(c client.AdminClient, session SessionService, log logging.Logger) AdminService {
	if log == nil {
		log = logging.Nop()
	}
	return &adminService{client: c, session: session, log: log.With("component", "admin")}
}

func (s *adminService) authorize() (*models.Identity, error) {
	id := s.session.Identity()
	if id == nil {
		return nil, client.ErrNotAuthenticated
	}
	if !id.IsAdmin {
		return nil, ErrAdminRequired
	}
	return id, nil
}

func (s *adminService) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	st, err := s.client.PlatformStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return st, nil
}

func (s *adminService) Users(ctx context.Context, page, perPage int) (*models.UserPage, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	req, err := pageParams(page, perPage)
	if err != nil {
		return nil, err
	}
	p, err := s.client.ListUsers(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return p, nil
}

func (s *adminService) UpgradeUser(ctx context.Context, id int64) (*models.Identity, error) {
	self, err := s.authorize()
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid user id %d", client.ErrValidation, id)
	}
	u, err := s.client.UpgradeUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("upgrade user %d: %w", id, err)
	}
	s.log.Info(ctx, "user upgraded", "user_id", id)
	s.refreshSelf(ctx, self, id)
	return u, nil
}

func (s *adminService) GrantAdmin(ctx context.Context, id int64, adminPIN string) (*models.Identity, error) {
	self, err := s.authorize()
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid user id %d", client.ErrValidation, id)
	}
	if adminPIN == "" {
		return nil, fmt.Errorf("%w: admin PIN is required", client.ErrValidation)
	}
	u, err := s.client.GrantAdmin(ctx, id, adminPIN)
	if err != nil {
		return nil, fmt.Errorf("grant admin to user %d: %w", id, err)
	}
	s.log.Info(ctx, "admin granted", "user_id", id)
	s.refreshSelf(ctx, self, id)
	return u, nil
}

// refreshSelf re-reads the session identity when the caller changed its own
// account.
func (s *adminService) refreshSelf(ctx context.Context, self *models.Identity, target int64) {
	if self.ID != target {
		return
	}
	if err := s.session.RefreshIdentity(ctx); err != nil {
		s.log.Warn(ctx, "identity not refreshed after account change", "error", err)
	}
}

func (s *adminService) Installations(ctx context.Context, page, perPage int) (*models.InstallationPage, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	req, err := pageParams(page, perPage)
	if err != nil {
		return nil, err
	}
	p, err := s.client.ListInstallations(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list installations: %w", err)
	}
	return p, nil
}

func (s *adminService) Jobs(ctx context.Context, f JobFilter) (*models.JobPage, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	req, err := f.request()
	if err != nil {
		return nil, err
	}
	p, err := s.client.ListAllJobs(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list all jobs: %w", err)
	}
	return p, nil
}

func (s *adminService) Settings(ctx context.Context) (map[string]string, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}
	st, err := s.client.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return st, nil
}

func (s *adminService) UpdateSettings(ctx context.Context, settings map[string]string) error {
	if _, err := s.authorize(); err != nil {
		return err
	}
	if len(settings) == 0 {
		return fmt.Errorf("%w: no settings given", client.ErrValidation)
	}
	for k := range settings {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: empty setting key", client.ErrValidation)
		}
	}
	if err := s.client.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	s.log.Info(ctx, "settings updated", "keys", len(settings))
	return nil
}
