package cli

import (
	"context"
	"errors"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/services"
	"github.com/cracksmith/cracksmith/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readSecret reads a hidden value and wipes the buffer once copied.
func (a *App) readSecret(prompt string) (string, error) {
	b, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return string(b), nil
}

// Register prompts for the account fields and creates the account. The new
// session is active on success.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}
	pin, err := a.readSecret("Enter PIN (optional, empty to skip)")
	if err != nil {
		return err
	}

	err = a.session.Register(ctx, services.RegisterInput{Username: username, Email: email, Password: password, PIN: pin})
	if err != nil {
		return a.report(err)
	}

	a.trackInstallation(ctx)
	printlnFn("Registered and logged in as", username)
	return nil
}

// Login prompts for credentials. When the account has a PIN configured the
// server answers with a challenge and the PIN is asked for once.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}

	outcome, err := a.session.Login(ctx, username, password, "")
	if err != nil {
		return a.report(err)
	}

	if outcome == services.LoginPINRequired {
		printlnFn("PIN code required for this account")
		pin, err := a.readSecret("Enter PIN")
		if err != nil {
			return err
		}
		if outcome, err = a.session.Login(ctx, username, password, pin); err != nil {
			return a.report(err)
		}
		if outcome != services.LoginSucceeded {
			printlnFn("Login unsuccessful")
			return client.ErrUnauthorized
		}
	}

	a.trackInstallation(ctx)
	printlnFn("Login successful")
	return nil
}

// Logout ends the session locally. It never needs the server.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.log.Warn(ctx, "logout could not clear stored credentials", "error", err)
	}
	printlnFn("Logged out")
	return nil
}

// WhoAmI refreshes and prints the identity. A failed refresh keeps the
// session and prints the last known identity.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.session.RefreshIdentity(ctx); err != nil {
		printlnFn("Could not refresh profile:", err)
	}
	id := a.session.Identity()
	if id == nil {
		printlnFn("Not logged in")
		return client.ErrNotAuthenticated
	}
	printlnFn(formatIdentity(*id))
	return nil
}

// SetPIN prompts for the current, new and confirmed PIN.
func (a *App) SetPIN(ctx context.Context) error {
	current, err := a.readSecret("Current PIN (empty if none)")
	if err != nil {
		return err
	}
	pin, err := a.readSecret("New PIN")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm PIN")
	if err != nil {
		return err
	}

	if err := a.account.SetPIN(ctx, pin, confirm, current); err != nil {
		return a.report(err)
	}
	printlnFn("PIN code updated successfully")
	return nil
}

func (a *App) trackInstallation(ctx context.Context) {
	if a.account == nil {
		return
	}
	if err := a.account.TrackInstallation(ctx, a.config.ClientVersion); err != nil {
		a.log.Debug(ctx, "installation tracking failed", "error", err)
	}
}

// report prints err in user terms and returns it.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, client.ErrValidation):
		printlnFn("Invalid input:", err)
	case errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrConflict):
		printlnFn("Job changed state or no longer exists; refresh with 'list'.", err)
	case errors.Is(err, client.ErrSessionExpired), errors.Is(err, client.ErrNotAuthenticated):
		printlnFn("Please login first")
	case errors.Is(err, services.ErrAdminRequired):
		printlnFn("Admin access required")
	case errors.Is(err, client.ErrTransport):
		printlnFn("Server unavailable:", err)
	default:
		printlnFn("Error:", err)
	}
	return err
}
