package io

import (
	"io/fs"
	"os"
)

// FileIO is an interface for file io operations
type FileIO interface {
	Stat(target string) (os.FileInfo, error)
	Lstat(target string) (os.FileInfo, error)
	Readlink(name string) (string, error)
	Symlink(source, target string) error
	Remove(name string) error
	MkdirAll(name string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
	DirFS(root string) fs.FS
}
