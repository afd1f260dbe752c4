package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kasuboski/medialink/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigration_000001_FreshDatabase(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(ctx, tmpFile)
	require.NoError(t, err)
	defer store.(*SQLite).Close()

	err = store.RunMigrations(ctx)
	require.NoError(t, err)

	version, dirty, err := store.(*SQLite).GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	files, err := store.ListScannedFiles(ctx, storage.ScannedFileFilter{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMigration_Idempotent(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(ctx, tmpFile)
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations(ctx))
	require.NoError(t, store.(*SQLite).Close())

	reopened, err := New(ctx, tmpFile)
	require.NoError(t, err)
	defer reopened.(*SQLite).Close()

	require.NoError(t, reopened.RunMigrations(ctx))

	version, _, err := reopened.(*SQLite).GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
