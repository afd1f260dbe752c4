// Package symlink creates, repairs and sweeps the links that make up the
// destination library.
package symlink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	mio "github.com/kasuboski/medialink/pkg/io"
	"github.com/kasuboski/medialink/pkg/logger"
)

// ErrDestinationConflict means a regular file already occupies the destination.
var ErrDestinationConflict = errors.New("destination exists and is not a symlink")

type LinkResult int

const (
	LinkCreated LinkResult = iota
	LinkExists
	LinkRepaired
)

func (r LinkResult) String() string {
	switch r {
	case LinkCreated:
		return "created"
	case LinkExists:
		return "exists"
	case LinkRepaired:
		return "repaired"
	}
	return "unknown"
}

// CleanupResult counts what a sweep removed.
type CleanupResult struct {
	Links       int
	Directories int
}

type Manager struct {
	fs mio.FileIO
}

func New(fileIO mio.FileIO) *Manager {
	return &Manager{fs: fileIO}
}

// CreateSymlinkAt links dest to source. A live link already at dest is left
// alone, a dead one is replaced and a regular file yields ErrDestinationConflict.
func (m *Manager) CreateSymlinkAt(ctx context.Context, source, dest string) (LinkResult, error) {
	return m.createSymlinkAt(ctx, source, dest, true)
}

func (m *Manager) createSymlinkAt(ctx context.Context, source, dest string, retry bool) (LinkResult, error) {
	log := logger.FromCtx(ctx)

	if err := m.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return LinkCreated, fmt.Errorf("failed to create destination directory: %w", err)
	}

	result := LinkCreated
	info, err := m.fs.Lstat(dest)
	switch {
	case err == nil && !mio.IsSymlink(info):
		return LinkCreated, ErrDestinationConflict
	case err == nil:
		if _, statErr := m.fs.Stat(dest); statErr == nil {
			return LinkExists, nil
		}

		log.Debugw("replacing dead symlink", "destination", dest)
		if err := m.fs.Remove(dest); err != nil && !mio.IsNotExist(err) {
			return LinkCreated, fmt.Errorf("failed to remove dead symlink: %w", err)
		}
		result = LinkRepaired
	case !mio.IsNotExist(err):
		return LinkCreated, fmt.Errorf("failed to inspect destination: %w", err)
	}

	err = m.fs.Symlink(source, dest)
	if errors.Is(err, fs.ErrExist) && retry {
		// another worker won the race for this path
		return m.createSymlinkAt(ctx, source, dest, false)
	}
	if err != nil {
		return LinkCreated, fmt.Errorf("failed to create symlink: %w", err)
	}

	return result, nil
}

// Target returns the absolute path the link at dest points to
func (m *Manager) Target(dest string) (string, error) {
	target, err := m.fs.Readlink(dest)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(dest), target)
	}
	return filepath.Clean(target), nil
}

// PointsTo reports whether dest is a link to source
func (m *Manager) PointsTo(dest, source string) bool {
	target, err := m.Target(dest)
	if err != nil {
		return false
	}
	return target == filepath.Clean(source)
}

// RemoveSymlinkIfExists deletes the link at dest. Missing paths and regular
// files are left untouched.
func (m *Manager) RemoveSymlinkIfExists(ctx context.Context, dest string) error {
	info, err := m.fs.Lstat(dest)
	if mio.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if !mio.IsSymlink(info) {
		logger.FromCtx(ctx).Warnw("refusing to remove non-symlink", "destination", dest)
		return nil
	}

	err = m.fs.Remove(dest)
	if err != nil && !mio.IsNotExist(err) {
		return err
	}
	return nil
}

// CleanupDeadSymlinks removes every link under root whose target is gone and
// then removes empty directories, deepest first. root itself is kept.
func (m *Manager) CleanupDeadSymlinks(ctx context.Context, root string) (CleanupResult, error) {
	log := logger.FromCtx(ctx)
	var result CleanupResult

	if _, err := m.fs.Stat(root); err != nil {
		if mio.IsNotExist(err) {
			return result, nil
		}
		return result, err
	}

	var dirs []string
	err := m.fs.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugw("skipping unreadable path during cleanup", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root {
				dirs = append(dirs, path)
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		if _, err := m.fs.Stat(path); err == nil || !mio.IsNotExist(err) {
			return nil
		}

		if err := m.fs.Remove(path); err != nil && !mio.IsNotExist(err) {
			log.Warnw("failed to remove dead symlink", "path", path, "error", err)
			return nil
		}
		log.Debugw("removed dead symlink", "path", path)
		result.Links++
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})

	for _, dir := range dirs {
		entries, err := m.fs.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := m.fs.Remove(dir); err != nil {
			log.Debugw("failed to remove empty directory", "path", dir, "error", err)
			continue
		}
		result.Directories++
	}

	return result, nil
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}
