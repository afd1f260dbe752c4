package library

import "context"

type Library interface {
	FindMediaFiles(ctx context.Context, fileSystem FileSystem) ([]string, error)
	IsMediaFile(path string) bool
}
