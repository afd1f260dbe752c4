package library

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kasuboski/medialink/pkg/logger"
)

// DefaultExtensions are the media extensions tracked when none are configured.
var DefaultExtensions = []string{".mp4", ".avi", ".mkv", ".m4v", ".mov", ".wmv", ".webm", ".mpg", ".mpeg", ".iso", ".ts", ".m2ts"}

// FileSystem pairs an fs.FS with the absolute path it is rooted at.
type FileSystem struct {
	FS   fs.FS
	Path string
}

type MediaLibrary struct {
	extensions []string
}

// New creates a library that tracks files with the given extensions,
// falling back to DefaultExtensions.
func New(extensions ...string) *MediaLibrary {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	normalized := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		normalized = append(normalized, e)
	}

	return &MediaLibrary{extensions: normalized}
}

// FindMediaFiles walks the file system and returns the absolute path of every
// media file. Dotfiles and dot directories are skipped.
func (l *MediaLibrary) FindMediaFiles(ctx context.Context, fileSystem FileSystem) ([]string, error) {
	log := logger.FromCtx(ctx)

	files := []string{}
	err := fs.WalkDir(fileSystem.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return err
			}
			log.Debugw("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if path != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !l.IsMediaFile(path) {
			return nil
		}

		files = append(files, filepath.Join(fileSystem.Path, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// IsMediaFile reports whether the path carries one of the tracked extensions.
func (l *MediaLibrary) IsMediaFile(path string) bool {
	return slices.Contains(l.extensions, strings.ToLower(filepath.Ext(path)))
}
