// Package version builds the plain text version report from an ordered list
// of version artifacts.
package version

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/firefart/go-version-text/internal/resource"
)

// FallbackText is returned when none of the configured resources exist.
const FallbackText = "Unknown version\n"

// ErrInvalidEncoding is wrapped in a ReadError when a resource is not valid UTF-8.
var ErrInvalidEncoding = errors.New("content is not valid utf-8")

// ReadError is returned when a resource exists but its content can not be read.
type ReadError struct {
	Identifier string
	Err        error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not read version resource %q: %v", e.Identifier, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Aggregator concatenates the content of all existing version resources in
// the configured order. It holds no mutable state and is safe for concurrent
// use; every call resolves all identifiers again.
type Aggregator struct {
	resolver    resource.Resolver
	identifiers []string
}

func NewAggregator(resolver resource.Resolver, identifiers ...string) *Aggregator {
	return &Aggregator{
		resolver:    resolver,
		identifiers: slices.Clone(identifiers),
	}
}

// Identifiers returns a copy of the configured identifiers.
func (a *Aggregator) Identifiers() []string {
	return slices.Clone(a.identifiers)
}

// Aggregate returns the concatenated content of every resource that exists,
// without any separator, or FallbackText if none exists. A resource that
// exists but can not be read fails the whole call with a *ReadError.
func (a *Aggregator) Aggregate(ctx context.Context) (string, error) {
	var sb strings.Builder
	found := false

	for _, identifier := range a.identifiers {
		content, ok, err := a.read(ctx, identifier)
		if err != nil {
			return "", &ReadError{Identifier: identifier, Err: err}
		}
		if !ok {
			continue
		}
		found = true
		sb.Write(content)
	}

	if !found {
		return FallbackText, nil
	}
	return sb.String(), nil
}

// read returns false if the resource does not exist
func (a *Aggregator) read(ctx context.Context, identifier string) (content []byte, ok bool, err error) {
	rc, err := a.resolver.Resolve(ctx, identifier)
	if resource.IsAbsent(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	content, err = io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	if !utf8.Valid(content) {
		return nil, false, ErrInvalidEncoding
	}

	return content, true, nil
}
