package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection, otherwise each new one sees its own empty :memory: db
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE credentials (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func TestRepository_GetMissing_ReturnsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestRepository_SetUpserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", "old"))
	require.NoError(t, r.Set(ctx, "k", "new"))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestRepository_DeleteIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", "1"))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSQLiteStore_SaveLoadClear(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	c, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.Empty())

	want := models.Credentials{AccessToken: "acc", RefreshToken: "ref"}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.SaveAccessToken(ctx, "acc2"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{AccessToken: "acc2", RefreshToken: "ref"}, got)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{}, got)
}

func TestSQLiteStore_ClearKeepsDeviceID(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, s.SetDeviceID(ctx, "dev-1"))
	require.NoError(t, s.Save(ctx, models.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Clear(ctx))

	id, err := s.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", id)
}

func TestSQLiteStore_SaveRollsBackOnSecondWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO credentials`).WithArgs("access_token", "a").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO credentials`).WithArgs("refresh_token", "r").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = NewSQLiteStore(db).Save(context.Background(), models.Credentials{AccessToken: "a", RefreshToken: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials[refresh_token]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM credentials`).WithArgs("access_token").
		WillReturnError(errors.New("no such table: credentials"))

	_, err = NewSQLiteStore(db).Load(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.SaveAccessToken(ctx, "b"))
	require.NoError(t, s.SetDeviceID(ctx, "d"))

	c, _ := s.Load(ctx)
	assert.Equal(t, models.Credentials{AccessToken: "b", RefreshToken: "r"}, c)

	require.NoError(t, s.Clear(ctx))
	c, _ = s.Load(ctx)
	assert.True(t, c.Empty())
	id, _ := s.DeviceID(ctx)
	assert.Equal(t, "d", id)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
