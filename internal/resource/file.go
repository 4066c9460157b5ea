package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// FileResolver reads resources from the host filesystem. Relative paths are
// resolved against baseDir, or the working directory if baseDir is empty.
type FileResolver struct {
	baseDir string
}

func NewFileResolver(baseDir string) *FileResolver {
	return &FileResolver{
		baseDir: baseDir,
	}
}

func (r *FileResolver) Resolve(_ context.Context, identifier string) (io.ReadCloser, error) {
	path := r.path(identifier)

	f, err := os.Open(path)
	if err != nil {
		// a file used as a directory component can never exist either
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, absent("open", path)
		}
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return f, nil
}

func (r *FileResolver) path(identifier string) string {
	path := trimScheme(identifier, SchemeFile)
	path = filepath.FromSlash(path)
	if r.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return path
}
