package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/firefart/go-version-text/internal/config"
	"github.com/firefart/go-version-text/internal/metrics"
	"github.com/firefart/go-version-text/internal/server/handlers"
	"github.com/firefart/go-version-text/internal/server/middleware"
	"github.com/firefart/go-version-text/internal/server/router"
	"github.com/nikoksr/notify"
)

type server struct {
	logger    *slog.Logger
	config    config.Configuration
	notify    *notify.Notify
	metrics   *metrics.Metrics
	version   handlers.VersionSource
	debug     bool
	accessLog bool
}

func NewServer(opts ...OptionsServerFunc) (http.Handler, error) {
	s := server{
		logger: slog.New(slog.DiscardHandler),
		notify: notify.New(),
		debug:  false,
	}

	for _, o := range opts {
		o(&s)
	}

	if s.version == nil {
		return nil, errors.New("server requires a version source")
	}
	if s.accessLog && s.metrics == nil {
		return nil, errors.New("access log requires metrics")
	}

	r := router.New()
	r.SetErrorHandler(s.customHTTPErrorHandler)

	r.Use(middleware.RealIP(middleware.RealIPConfig{
		IPHeader: s.config.Server.IPHeader,
	}))
	r.Use(middleware.RealHost(middleware.RealHostConfig{
		Headers: s.config.Server.HostHeaders,
	}))
	// the access log reads the matched route from the request, so nothing
	// that clones the request may sit between it and the mux
	if s.accessLog {
		r.Use(middleware.AccessLog(middleware.AccessLogConfig{
			Logger:  s.logger,
			Metrics: s.metrics,
		}))
	}
	r.Use(middleware.Recover(s.logger))

	s.addRoutes(r)
	return r, nil
}
