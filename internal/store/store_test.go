package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cashflow/internal/config"
	"cashflow/internal/db"
	"cashflow/internal/game"
	"cashflow/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compile-time checks
var (
	_ game.Store = (*File)(nil)
	_ game.Store = (*SQLite)(nil)
	_ game.Store = (*Postgres)(nil)
)

func exerciseStore(t *testing.T, s game.Store) {
	t.Helper()

	got, err := s.Load(game.SnapshotKey)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(game.SnapshotKey, []byte(`{"name":"first"}`)))
	got, err = s.Load(game.SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"first"}`, string(got))

	require.NoError(t, s.Save(game.SnapshotKey, []byte(`{"name":"second"}`)))
	require.NoError(t, s.Save("other", []byte(`{"n":1}`)))
	got, err = s.Load(game.SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"second"}`, string(got))

	require.NoError(t, s.Clear())
	for _, key := range []string{game.SnapshotKey, "other"} {
		got, err = s.Load(key)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	require.ErrorIs(t, s.Save("../escape", []byte(`{}`)), ErrInvalidKey)
	_, err = s.Load("")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := NewFile(dir)
	require.NoError(t, err)
	exerciseStore(t, s)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	require.NoError(t, s.Save(game.SnapshotKey, []byte(`{}`)))
	info, err = os.Stat(filepath.Join(dir, game.SnapshotKey+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreTreatsEmptyFileAsMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, game.SnapshotKey+".json"), nil, 0o600))
	got, err := s.Load(game.SnapshotKey)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "cashflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("CASHFLOW_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CASHFLOW_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := db.Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPostgres(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.Clear())
	exerciseStore(t, s)
}

func TestGameSurvivesRestartOnSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashflow.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)

	svc, err := game.NewService(game.Options{Source: rng.NewSequence(0.4), Store: s})
	require.NoError(t, err)
	job, err := svc.Catalog().JobByTitle("Nurse")
	require.NoError(t, err)
	require.NoError(t, svc.StartGame(job, 28, 8_000, "Sam"))
	_, err = svc.NextTurn()
	require.NoError(t, err)
	want := svc.State()
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	restored, err := game.NewService(game.Options{Source: rng.NewSequence(0.4), Store: reopened})
	require.NoError(t, err)
	require.True(t, restored.Restore())
	assert.Equal(t, want, restored.State())
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	s, closeFn, err := Open(context.Background(), config.Config{Store: config.StoreFile, StateDir: dir}, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &File{}, s)

	s, closeDB, err := Open(context.Background(), config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(dir, "x.db")}, nil)
	require.NoError(t, err)
	defer closeDB()
	assert.IsType(t, &SQLite{}, s)
}
