package credentials

import (
	"context"

	"github.com/cracksmith/cracksmith/internal/client/models"
)

// Repository is a string key/value table. Get returns "" with a nil error
// when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// Store is the persisted local state of the client.
type Store interface {
	// Load returns the persisted pair; a zero value means none is stored.
	Load(ctx context.Context) (models.Credentials, error)
	// Save replaces both tokens atomically.
	Save(ctx context.Context, c models.Credentials) error
	// SaveAccessToken replaces the access token only.
	SaveAccessToken(ctx context.Context, accessToken string) error
	// Clear removes both tokens. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	// DeviceID returns the persisted device id or "".
	DeviceID(ctx context.Context) (string, error)
	SetDeviceID(ctx context.Context, id string) error
}
