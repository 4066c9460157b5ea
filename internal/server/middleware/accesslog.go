package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/firefart/go-version-text/internal/metrics"
)

// unmatchedRoute is used as metric label for requests no route matched,
// keeping the label cardinality bounded.
const unmatchedRoute = "unmatched"

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode     int
	written        bool
	responseLength int64
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.written {
		return
	}
	rw.statusCode = statusCode
	rw.written = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(data)
	rw.responseLength += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// AccessLogConfig holds configuration for the accesslog middleware
type AccessLogConfig struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// AccessLog logs every request and records the request metrics. Metrics are
// labeled with the matched route pattern instead of the raw path, so it must
// wrap the mux without any request cloning middleware in between.
func AccessLog(config AccessLogConfig) func(next http.Handler) http.Handler {
	if config.Logger == nil {
		panic("accesslog middleware requires a logger")
	}
	if config.Metrics == nil {
		panic("accesslog middleware requires metrics")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// set by the RealIP middleware
			ip, ok := r.Context().Value(ContextKeyIP).(string)
			if !ok {
				ip = r.RemoteAddr
			}

			start := time.Now()
			next.ServeHTTP(wrapped, r)
			duration := time.Since(start)

			headerKeys := make([]string, 0, len(r.Header))
			for k := range r.Header {
				headerKeys = append(headerKeys, k)
			}
			slices.Sort(headerKeys)

			headerAttrs := make([]any, 0, len(r.Header))
			for _, k := range headerKeys {
				headerAttrs = append(headerAttrs, slog.String(http.CanonicalHeaderKey(k), strings.Join(r.Header[k], ", ")))
			}

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}

			// Labels: "code", "method", "host", "path"
			labelValues := []string{
				strconv.Itoa(wrapped.statusCode),
				r.Method,
				r.Host,
				route,
			}
			config.Metrics.RequestCount.WithLabelValues(labelValues...).Inc()
			config.Metrics.RequestDuration.WithLabelValues(labelValues...).Observe(duration.Seconds())
			config.Metrics.RequestSize.WithLabelValues(labelValues...).Observe(float64(max(r.ContentLength, 0)))
			config.Metrics.ResponseSize.WithLabelValues(labelValues...).Observe(float64(wrapped.responseLength))

			level := slog.LevelInfo
			if wrapped.statusCode >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			config.Logger.With(
				slog.String("method", r.Method),
				slog.String("proto", r.Proto),
				slog.String("host", r.Host),
				slog.String("path", r.URL.Path),
				slog.String("route", route),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("remote_ip", ip),
				slog.Int64("req_len", r.ContentLength),
				slog.Int64("resp_len", wrapped.responseLength),
				slog.Int("status_code", wrapped.statusCode),
				slog.Duration("duration", duration),
			).WithGroup("headers").Log(r.Context(), level, "request completed", headerAttrs...)
		})
	}
}
