package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DefaultMaxBodySize limits the size of remote version artifacts.
const DefaultMaxBodySize int64 = 1 << 20

// Doer is satisfied by *http.Client and the internal http client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPResolver fetches resources from http(s) endpoints. 404 and 410
// responses are treated as a missing resource.
type HTTPResolver struct {
	client      Doer
	maxBodySize int64
}

func NewHTTPResolver(client Doer, maxBodySize int64) *HTTPResolver {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &HTTPResolver{
		client:      client,
		maxBodySize: maxBodySize,
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, identifier string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identifier, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for %s: %w", identifier, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s: %w", identifier, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return http.MaxBytesReader(nil, resp.Body, r.maxBodySize), nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		_ = resp.Body.Close()
		return nil, absent("get", identifier)
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %q fetching %s", resp.Status, identifier)
	}
}
