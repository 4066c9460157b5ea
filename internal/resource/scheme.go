package resource

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/firefart/go-version-text/internal/metrics"
)

const (
	outcomePresent = "present"
	outcomeAbsent  = "absent"
	outcomeError   = "error"

	schemeUnsupported = "unsupported"
)

// SchemeResolver dispatches identifiers to the resolver registered for their
// scheme. Identifiers without a scheme are handled by the file resolver.
type SchemeResolver struct {
	resolvers map[string]Resolver
	metrics   *metrics.Metrics
}

type OptionsSchemeResolverFunc func(r *SchemeResolver)

// WithResolver registers r for scheme, replacing any previous registration.
func WithResolver(scheme string, r Resolver) OptionsSchemeResolverFunc {
	return func(s *SchemeResolver) { s.resolvers[strings.ToLower(scheme)] = r }
}

// WithBundle serves classpath: identifiers from fsys.
func WithBundle(fsys fs.FS) OptionsSchemeResolverFunc {
	return WithResolver(SchemeClasspath, NewBundledResolver(fsys))
}

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) OptionsSchemeResolverFunc {
	return WithResolver(SchemeFile, NewFileResolver(dir))
}

// WithHTTPClient serves http: and https: identifiers using client.
func WithHTTPClient(client Doer) OptionsSchemeResolverFunc {
	return func(s *SchemeResolver) {
		r := NewHTTPResolver(client, DefaultMaxBodySize)
		s.resolvers[SchemeHTTP] = r
		s.resolvers[SchemeHTTPS] = r
	}
}

func WithMetrics(m *metrics.Metrics) OptionsSchemeResolverFunc {
	return func(s *SchemeResolver) { s.metrics = m }
}

func NewSchemeResolver(opts ...OptionsSchemeResolverFunc) *SchemeResolver {
	s := &SchemeResolver{
		resolvers: map[string]Resolver{
			SchemeFile: NewFileResolver(""),
		},
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *SchemeResolver) Resolve(ctx context.Context, identifier string) (io.ReadCloser, error) {
	scheme := Scheme(identifier)
	r, ok := s.resolvers[scheme]
	if !ok {
		s.observe(schemeUnsupported, outcomeError)
		return nil, fmt.Errorf("%w %q in %q", ErrUnsupportedScheme, scheme, identifier)
	}

	rc, err := r.Resolve(ctx, identifier)
	switch {
	case err == nil:
		s.observe(scheme, outcomePresent)
	case IsAbsent(err):
		s.observe(scheme, outcomeAbsent)
	default:
		s.observe(scheme, outcomeError)
	}
	return rc, err
}

func (s *SchemeResolver) observe(scheme, outcome string) {
	if s.metrics == nil || s.metrics.ResourceResolutions == nil {
		return
	}
	s.metrics.ResourceResolutions.WithLabelValues(scheme, outcome).Inc()
}

// Scheme returns the lower cased scheme of identifier. Bare paths, including
// windows paths starting with a drive letter, belong to the file scheme.
func Scheme(identifier string) string {
	i := strings.IndexByte(identifier, ':')
	// no scheme or a drive letter like C:
	if i <= 1 {
		return SchemeFile
	}
	scheme := identifier[:i]
	for j, c := range scheme {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return SchemeFile
		}
	}
	return strings.ToLower(scheme)
}
