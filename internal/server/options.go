package server

import (
	"log/slog"

	"github.com/firefart/go-version-text/internal/config"
	"github.com/firefart/go-version-text/internal/metrics"
	"github.com/firefart/go-version-text/internal/server/handlers"
	"github.com/nikoksr/notify"
)

type OptionsServerFunc func(c *server)

func WithLogger(logger *slog.Logger) OptionsServerFunc {
	return func(c *server) { c.logger = logger }
}

func WithConfig(config config.Configuration) OptionsServerFunc {
	return func(c *server) { c.config = config }
}

func WithNotify(n *notify.Notify) OptionsServerFunc {
	return func(c *server) { c.notify = n }
}

func WithMetrics(m *metrics.Metrics) OptionsServerFunc {
	return func(c *server) { c.metrics = m }
}

func WithDebug(d bool) OptionsServerFunc {
	return func(c *server) { c.debug = d }
}

// WithAccessLog enables request logging and the request metrics. Needs
// WithMetrics.
func WithAccessLog() OptionsServerFunc {
	return func(c *server) { c.accessLog = true }
}

// WithVersionSource sets what is served on /version.txt
func WithVersionSource(v handlers.VersionSource) OptionsServerFunc {
	return func(c *server) { c.version = v }
}
