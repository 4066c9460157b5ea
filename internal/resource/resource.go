// Package resource resolves version artifact identifiers to their content.
//
// An identifier is either a bare path or a path prefixed with a scheme:
//
//	classpath:/versions/version.txt   bundled with the binary
//	file:/etc/build/version.txt       host filesystem
//	version.txt                       host filesystem, relative to the base dir
//	https://artifacts/version.txt     remote endpoint
package resource

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
)

const (
	SchemeClasspath = "classpath"
	SchemeFile      = "file"
	SchemeHTTP      = "http"
	SchemeHTTPS     = "https"
)

// ErrUnsupportedScheme is returned for identifiers carrying a scheme no
// resolver is registered for.
var ErrUnsupportedScheme = errors.New("unsupported resource scheme")

// Resolver opens the resource named by identifier.
//
// A resource that does not exist must be reported with an error matching
// fs.ErrNotExist. Any other error means the resource exists (or might exist)
// but could not be read. The caller closes the returned reader.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (io.ReadCloser, error)
}

// IsAbsent reports whether err signals a missing resource.
func IsAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func absent(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
}

// trimScheme removes a case insensitive "scheme:" prefix
func trimScheme(identifier, scheme string) string {
	prefix := scheme + ":"
	if len(identifier) >= len(prefix) && strings.EqualFold(identifier[:len(prefix)], prefix) {
		return identifier[len(prefix):]
	}
	return identifier
}
