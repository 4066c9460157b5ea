package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

type SecretKeyHeaderConfig struct {
	// the secret key header name we should check
	SecretKeyHeaderName  string
	SecretKeyHeaderValue string

	// Debug disables the check
	Debug bool

	Logger *slog.Logger
}

func clientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ContextKeyIP).(string); ok {
		return ip
	}
	return r.RemoteAddr
}

// SecretKeyHeader only passes requests carrying the configured header value.
// All other requests get an empty 200 so the protected routes can not be
// discovered.
func SecretKeyHeader(config SecretKeyHeaderConfig) func(next http.Handler) http.Handler {
	if config.SecretKeyHeaderName == "" {
		panic("secret key header middleware requires a header name")
	}
	if config.SecretKeyHeaderValue == "" {
		panic("secret key header middleware requires a header value")
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	expected := []byte(config.SecretKeyHeaderValue)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Debug {
				next.ServeHTTP(w, r)
				return
			}

			headerVal := r.Header.Get(config.SecretKeyHeaderName)
			switch {
			case headerVal == "":
				config.Logger.Error("url called without secret header", slog.String("url", r.URL.String()), slog.String("ip", clientIP(r)))
			case subtle.ConstantTimeCompare([]byte(headerVal), expected) == 1:
				next.ServeHTTP(w, r)
				return
			default:
				config.Logger.Error("url called with wrong secret header", slog.String("url", r.URL.String()), slog.String("ip", clientIP(r)))
			}
			w.WriteHeader(http.StatusOK)
		})
	}
}
