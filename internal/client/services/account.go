package services

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/repositories/credentials"
	"github.com/cracksmith/cracksmith/internal/common"
	"github.com/cracksmith/cracksmith/internal/logging"
	"github.com/google/uuid"
)

// AccountService covers account settings outside the login flow.
type AccountService interface {
	// SetPIN sets or changes the login PIN. currentPIN is required by the
	// server only when a PIN is already configured.
	SetPIN(ctx context.Context, newPIN, confirmPIN, currentPIN string) error
	// TrackInstallation reports this installation to the server, creating
	// the persisted device id on first use.
	TrackInstallation(ctx context.Context, version string) error
}

type accountService struct {
	client  client.Client
	store   credentials.Store
	session SessionService
	log     logging.Logger
}

func NewAccountService(c client.Client, store credentials.Store, session SessionService, log logging.Logger) AccountService {
	if log == nil {
		log = logging.Nop()
	}
	return &accountService{client: c, store: store, session: session, log: log.With("component", "account")}
}

func (a *accountService) SetPIN(ctx context.Context, newPIN, confirmPIN, currentPIN string) error {
	if newPIN != confirmPIN {
		return fmt.Errorf("%w: PIN codes do not match", client.ErrValidation)
	}
	if len(newPIN) < common.MinPINLength {
		return fmt.Errorf("%w: PIN must be at least %d characters", client.ErrValidation, common.MinPINLength)
	}
	if !a.session.IsAuthenticated() {
		return client.ErrNotAuthenticated
	}

	if err := a.client.SetPIN(ctx, newPIN, currentPIN); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	if err := a.session.RefreshIdentity(ctx); err != nil {
		a.log.Warn(ctx, "identity not refreshed after pin change", "error", err)
	}
	return nil
}

func (a *accountService) TrackInstallation(ctx context.Context, version string) error {
	if !a.session.IsAuthenticated() {
		return client.ErrNotAuthenticated
	}
	id, err := a.deviceID(ctx)
	if err != nil {
		return err
	}
	in := client.Installation{DeviceID: id, Platform: runtime.GOOS, Version: version}
	if err := a.client.TrackInstallation(ctx, in); err != nil {
		return fmt.Errorf("track installation: %w", err)
	}
	a.log.Debug(ctx, "installation tracked", "device_id", id)
	return nil
}

func (a *accountService) deviceID(ctx context.Context) (string, error) {
	id, err := a.store.DeviceID(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", client.ErrLocalDataNotAvailable, err)
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := a.store.SetDeviceID(ctx, id); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
