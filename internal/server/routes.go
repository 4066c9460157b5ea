package server

import (
	"net/http"

	"github.com/firefart/go-version-text/internal/server/handlers"
	"github.com/firefart/go-version-text/internal/server/middleware"
	"github.com/firefart/go-version-text/internal/server/router"
)

func (s *server) addRoutes(r *router.Router) {
	r.HandleFunc("GET /version.txt", handlers.NewVersionTextHandler(s.version).Handler)
	r.HandleFunc("GET /health", handlers.NewHealthHandler().Handler)

	// operator smoke tests, only reachable with the secret header
	if s.config.Server.SecretKeyHeaderValue == "" {
		return
	}
	r.Group(func(r *router.Router) {
		r.Use(middleware.SecretKeyHeader(middleware.SecretKeyHeaderConfig{
			SecretKeyHeaderName:  http.CanonicalHeaderKey(s.config.Server.SecretKeyHeaderName),
			SecretKeyHeaderValue: s.config.Server.SecretKeyHeaderValue,
			Debug:                s.debug,
			Logger:               s.logger,
		}))
		r.HandleFunc("GET /test/panic", handlers.NewPanicHandler().Handler)
		r.HandleFunc("GET /test/notifications", handlers.NewNotificationHandler().Handler)
	})
}
