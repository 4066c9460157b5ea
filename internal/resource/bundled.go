package resource

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// BundledResolver reads classpath: resources from a filesystem compiled into
// the binary, usually an embed.FS.
type BundledResolver struct {
	fsys fs.FS
}

func NewBundledResolver(fsys fs.FS) *BundledResolver {
	return &BundledResolver{
		fsys: fsys,
	}
}

func (r *BundledResolver) Resolve(_ context.Context, identifier string) (io.ReadCloser, error) {
	name := trimScheme(identifier, SchemeClasspath)
	name = path.Clean(strings.TrimLeft(name, "/"))
	// nothing outside of the bundle root can be part of the bundle
	if !fs.ValidPath(name) || name == "." {
		return nil, absent("open", name)
	}

	f, err := r.fsys.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", name)
	}

	return f, nil
}
