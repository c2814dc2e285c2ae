package credentials

import (
	"context"
	"sync"

	"github.com/cracksmith/cracksmith/internal/client/models"
)

// MemoryStore keeps everything in process memory. It backs tests and runs
// where no database path is configured.
type MemoryStore struct {
	mu       sync.Mutex
	creds    models.Credentials
	deviceID string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (models.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, nil
}

func (m *MemoryStore) Save(ctx context.Context, c models.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = c
	return nil
}

func (m *MemoryStore) SaveAccessToken(ctx context.Context, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds.AccessToken = accessToken
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = models.Credentials{}
	return nil
}

func (m *MemoryStore) DeviceID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deviceID, nil
}

func (m *MemoryStore) SetDeviceID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deviceID = id
	return nil
}
