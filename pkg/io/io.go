package io

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

var _ FileIO = (*MediaFileSystem)(nil)

// MediaFileSystem is the default implementation of file io using the os package
type MediaFileSystem struct{}

// Stat is a wrapper around os.Stat
func (o *MediaFileSystem) Stat(target string) (os.FileInfo, error) {
	return os.Stat(target)
}

// Lstat is a wrapper around os.Lstat
func (o *MediaFileSystem) Lstat(target string) (os.FileInfo, error) {
	return os.Lstat(target)
}

// Readlink is a wrapper around os.Readlink
func (o *MediaFileSystem) Readlink(name string) (string, error) {
	return os.Readlink(name)
}

// Symlink creates target as a symbolic link pointing at source
func (o *MediaFileSystem) Symlink(source, target string) error {
	return os.Symlink(source, target)
}

// Remove is a wrapper around os.Remove
func (o *MediaFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// MkdirAll is a wrapper around os.MkdirAll
func (o *MediaFileSystem) MkdirAll(path string, mode os.FileMode) error {
	return os.MkdirAll(path, mode)
}

// ReadDir is a wrapper around os.ReadDir
func (o *MediaFileSystem) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

// WalkDir is a wrapper around filepath.WalkDir
func (o *MediaFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// DirFS is a wrapper around os.DirFS
func (o *MediaFileSystem) DirFS(root string) fs.FS {
	return os.DirFS(root)
}

// IsSymlink reports whether info describes a symbolic link
func IsSymlink(info os.FileInfo) bool {
	return info.Mode()&os.ModeSymlink != 0
}

// IsNotExist reports whether err says a path does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
