package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ContextKey string

const ContextKeyIP ContextKey = "ip"

// RealIPConfig contains configuration for the RealIP middleware
type RealIPConfig struct {
	// IPHeader is set by a trusted reverse proxy, for example X-Real-IP or
	// X-Forwarded-For. Leave empty when the server is reached directly.
	IPHeader string
}

func getIPFromHostPort(hostPort string) string {
	if hostPort == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(hostPort)
	if err != nil {
		return hostPort
	}
	return host
}

// firstHeaderValue returns the first entry of a comma separated header
func firstHeaderValue(r *http.Request, header string) string {
	value := r.Header.Get(header)
	if before, _, found := strings.Cut(value, ","); found {
		value = before
	}
	return strings.TrimSpace(value)
}

func getRealIP(ipHeader string, r *http.Request) string {
	if ipHeader == "" {
		return getIPFromHostPort(r.RemoteAddr)
	}

	realIP := firstHeaderValue(r, ipHeader)
	if realIP == "" {
		realIP = getIPFromHostPort(r.RemoteAddr)
	}
	return realIP
}

// RealIP stores the client ip in the request context under ContextKeyIP
func RealIP(config RealIPConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeyIP, getRealIP(config.IPHeader, r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
