package services

import (
	"context"
	"runtime"
	"testing"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/repositories/credentials"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPIN_LocalValidation(t *testing.T) {
	s, fc, store := authenticated(t)
	acc := NewAccountService(fc, store, s, nil)

	tests := []struct {
		name, pin, confirm string
	}{
		{name: "mismatch", pin: "1234", confirm: "1235"},
		{name: "too short", pin: "123", confirm: "123"},
		{name: "empty", pin: "", confirm: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := acc.SetPIN(context.Background(), tt.pin, tt.confirm, "")
			require.ErrorIs(t, err, client.ErrValidation)
		})
	}
	assert.Zero(t, fc.count("SetPIN"))
}

func TestSetPIN_RefreshesIdentity(t *testing.T) {
	s, fc, store := authenticated(t)
	acc := NewAccountService(fc, store, s, nil)
	before := fc.count("CurrentUser")

	require.NoError(t, acc.SetPIN(context.Background(), "9876", "9876", "1234"))
	assert.Equal(t, "9876", fc.lastPIN)
	assert.Equal(t, "1234", fc.lastCurrentPIN)
	assert.Equal(t, before+1, fc.count("CurrentUser"))
}

func TestSetPIN_WrongCurrentPIN(t *testing.T) {
	s, fc, store := authenticated(t)
	fc.setPINErr = client.ErrUnauthorized
	acc := NewAccountService(fc, store, s, nil)

	require.ErrorIs(t, acc.SetPIN(context.Background(), "9876", "9876", "0000"), client.ErrUnauthorized)
	assert.True(t, s.IsAuthenticated())
}

func TestSetPIN_RequiresSession(t *testing.T) {
	fc := newFakeClient()
	store := credentials.NewMemoryStore()
	s := newSession(fc, store)
	require.NoError(t, s.Initialize(context.Background()))

	err := NewAccountService(fc, store, s, nil).SetPIN(context.Background(), "1234", "1234", "")
	require.ErrorIs(t, err, client.ErrNotAuthenticated)
	assert.Zero(t, fc.count("SetPIN"))
}

func TestTrackInstallation_PersistsDeviceID(t *testing.T) {
	s, fc, store := authenticated(t)
	acc := NewAccountService(fc, store, s, nil)

	require.NoError(t, acc.TrackInstallation(context.Background(), "1.2.0"))
	require.NoError(t, acc.TrackInstallation(context.Background(), "1.2.0"))

	require.Len(t, fc.installations, 2)
	first := fc.installations[0]
	_, err := uuid.Parse(first.DeviceID)
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, first.Platform)
	assert.Equal(t, "1.2.0", first.Version)
	assert.Equal(t, first.DeviceID, fc.installations[1].DeviceID)

	id, err := store.DeviceID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.DeviceID, id)
}

func TestTrackInstallation_DeviceIDSurvivesLogout(t *testing.T) {
	s, fc, store := authenticated(t)
	require.NoError(t, store.SetDeviceID(context.Background(), "fixed-device"))
	acc := NewAccountService(fc, store, s, nil)

	require.NoError(t, s.Logout(context.Background()))
	require.ErrorIs(t, acc.TrackInstallation(context.Background(), "1"), client.ErrNotAuthenticated)

	id, _ := store.DeviceID(context.Background())
	assert.Equal(t, "fixed-device", id)
}
