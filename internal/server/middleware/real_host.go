package middleware

import (
	"context"
	"net/http"
)

const ContextKeyHost ContextKey = "host"

// RealHostConfig contains configuration for the host middleware
type RealHostConfig struct {
	// Headers is a list of headers to check for the host value, in order of preference
	Headers []string
}

func getHostFromHeaders(headers []string, r *http.Request) string {
	for _, header := range headers {
		if value := firstHeaderValue(r, header); value != "" {
			return value
		}
	}
	return r.Host
}

// RealHost replaces the request host with the one reported by a reverse
// proxy and stores it in the request context under ContextKeyHost
func RealHost(config RealHostConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := getHostFromHeaders(config.Headers, r)
			ctx := context.WithValue(r.Context(), ContextKeyHost, host)
			r = r.WithContext(ctx)
			r.Host = host
			next.ServeHTTP(w, r)
		})
	}
}
