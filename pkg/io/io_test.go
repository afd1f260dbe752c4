package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaFileSystem_Symlink(t *testing.T) {
	mfs := &MediaFileSystem{}
	dir := t.TempDir()

	source := filepath.Join(dir, "source.mkv")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))

	link := filepath.Join(dir, "nested", "link.mkv")
	require.NoError(t, mfs.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, mfs.Symlink(source, link))

	info, err := mfs.Lstat(link)
	require.NoError(t, err)
	assert.True(t, IsSymlink(info))

	target, err := mfs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, source, target)

	info, err = mfs.Stat(link)
	require.NoError(t, err)
	assert.False(t, IsSymlink(info))
	assert.Equal(t, int64(4), info.Size())
}

func TestMediaFileSystem_DeadLink(t *testing.T) {
	mfs := &MediaFileSystem{}
	dir := t.TempDir()

	link := filepath.Join(dir, "dead.mkv")
	require.NoError(t, mfs.Symlink(filepath.Join(dir, "missing.mkv"), link))

	_, err := mfs.Stat(link)
	assert.True(t, IsNotExist(err))

	_, err = mfs.Lstat(link)
	assert.NoError(t, err)

	require.NoError(t, mfs.Remove(link))
	_, err = mfs.Lstat(link)
	assert.True(t, IsNotExist(err))
}

func TestMediaFileSystem_ReadDir(t *testing.T) {
	mfs := &MediaFileSystem{}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))

	entries, err := mfs.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
