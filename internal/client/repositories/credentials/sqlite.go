package credentials

import (
	"context"
	"database/sql"

	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/common"
	"github.com/cracksmith/cracksmith/internal/dbx"
)

// SQLiteStore implements Store on top of SQLiteRepository.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Credentials, error) {
	repo := NewSQLiteRepository(s.db)

	access, err := repo.Get(ctx, common.AccessTokenKey)
	if err != nil {
		return models.Credentials{}, err
	}
	refresh, err := repo.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return models.Credentials{}, err
	}

	return models.Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c models.Credentials) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AccessTokenKey, c.AccessToken); err != nil {
			return err
		}
		return repo.Set(ctx, common.RefreshTokenKey, c.RefreshToken)
	})
}

func (s *SQLiteStore) SaveAccessToken(ctx context.Context, accessToken string) error {
	return NewSQLiteRepository(s.db).Set(ctx, common.AccessTokenKey, accessToken)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.AccessTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.RefreshTokenKey)
	})
}

func (s *SQLiteStore) DeviceID(ctx context.Context) (string, error) {
	return NewSQLiteRepository(s.db).Get(ctx, common.DeviceIDKey)
}

func (s *SQLiteStore) SetDeviceID(ctx context.Context, id string) error {
	return NewSQLiteRepository(s.db).Set(ctx, common.DeviceIDKey, id)
}
