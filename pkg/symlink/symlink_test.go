package symlink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mio "github.com/kasuboski/medialink/pkg/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("media"), 0o644))
	return path
}

func TestCreateSymlinkAt(t *testing.T) {
	ctx := context.Background()
	m := New(&mio.MediaFileSystem{})

	t.Run("creates parents and link", func(t *testing.T) {
		dir := t.TempDir()
		source := writeFile(t, filepath.Join(dir, "src", "movie.mkv"))
		dest := filepath.Join(dir, "dest", "Movie (2020)", "Movie (2020).mkv")

		result, err := m.CreateSymlinkAt(ctx, source, dest)
		require.NoError(t, err)
		assert.Equal(t, LinkCreated, result)

		target, err := os.Readlink(dest)
		require.NoError(t, err)
		assert.Equal(t, source, target)
	})

	t.Run("existing link is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		source := writeFile(t, filepath.Join(dir, "src", "movie.mkv"))
		dest := filepath.Join(dir, "dest", "movie.mkv")

		_, err := m.CreateSymlinkAt(ctx, source, dest)
		require.NoError(t, err)

		result, err := m.CreateSymlinkAt(ctx, source, dest)
		require.NoError(t, err)
		assert.Equal(t, LinkExists, result)
	})

	t.Run("dead link is repaired", func(t *testing.T) {
		dir := t.TempDir()
		source := writeFile(t, filepath.Join(dir, "src", "movie.mkv"))
		dest := filepath.Join(dir, "dest", "movie.mkv")
		require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
		require.NoError(t, os.Symlink(filepath.Join(dir, "gone.mkv"), dest))

		result, err := m.CreateSymlinkAt(ctx, source, dest)
		require.NoError(t, err)
		assert.Equal(t, LinkRepaired, result)

		target, err := os.Readlink(dest)
		require.NoError(t, err)
		assert.Equal(t, source, target)
	})

	t.Run("regular file is a conflict", func(t *testing.T) {
		dir := t.TempDir()
		source := writeFile(t, filepath.Join(dir, "src", "movie.mkv"))
		dest := writeFile(t, filepath.Join(dir, "dest", "movie.mkv"))

		_, err := m.CreateSymlinkAt(ctx, source, dest)
		assert.ErrorIs(t, err, ErrDestinationConflict)

		content, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "media", string(content))
	})
}

func TestRemoveSymlinkIfExists(t *testing.T) {
	ctx := context.Background()
	m := New(&mio.MediaFileSystem{})
	dir := t.TempDir()

	source := writeFile(t, filepath.Join(dir, "movie.mkv"))
	dest := filepath.Join(dir, "link.mkv")
	require.NoError(t, os.Symlink(source, dest))

	require.NoError(t, m.RemoveSymlinkIfExists(ctx, dest))
	_, err := os.Lstat(dest)
	assert.True(t, os.IsNotExist(err))

	// missing path is fine
	require.NoError(t, m.RemoveSymlinkIfExists(ctx, dest))

	// regular files are never deleted
	require.NoError(t, m.RemoveSymlinkIfExists(ctx, source))
	_, err = os.Stat(source)
	assert.NoError(t, err)
}

func TestCleanupDeadSymlinks(t *testing.T) {
	ctx := context.Background()
	m := New(&mio.MediaFileSystem{})
	dir := t.TempDir()
	root := filepath.Join(dir, "library")

	live := writeFile(t, filepath.Join(dir, "src", "live.mkv"))
	liveLink := filepath.Join(root, "Live (2020)", "Live (2020).mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(liveLink), 0o755))
	require.NoError(t, os.Symlink(live, liveLink))

	deadLink := filepath.Join(root, "Show (2019)", "Season 01", "Show - S01E01.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(deadLink), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "src", "gone.mkv"), deadLink))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "Empty", "Deeper"), 0o755))

	result, err := m.CleanupDeadSymlinks(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Links)
	assert.Equal(t, 4, result.Directories)

	_, err = os.Lstat(liveLink)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "Show (2019)"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "Empty"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(root)
	assert.NoError(t, err)
}

func TestCleanupDeadSymlinks_MissingRoot(t *testing.T) {
	m := New(&mio.MediaFileSystem{})
	result, err := m.CleanupDeadSymlinks(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, CleanupResult{}, result)
}

func TestTarget(t *testing.T) {
	m := New(&mio.MediaFileSystem{})
	dir := t.TempDir()
	source := writeFile(t, filepath.Join(dir, "src", "a.mkv"))

	abs := filepath.Join(dir, "dest", "abs.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.Symlink(source, abs))

	rel := filepath.Join(dir, "dest", "rel.mkv")
	require.NoError(t, os.Symlink(filepath.Join("..", "src", "a.mkv"), rel))

	target, err := m.Target(abs)
	require.NoError(t, err)
	assert.Equal(t, source, target)

	target, err = m.Target(rel)
	require.NoError(t, err)
	assert.Equal(t, source, target)

	assert.True(t, m.PointsTo(rel, source))
	assert.False(t, m.PointsTo(rel, filepath.Join(dir, "src", "b.mkv")))
	assert.False(t, m.PointsTo(filepath.Join(dir, "missing.mkv"), source))
}
