package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/firefart/go-version-text/internal/server/httperror"
)

const notificationSubject = "ERROR"

func (s *server) customHTTPErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	var httpErr *httperror.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.StatusCode
	}

	// client errors carry a message meant for the client, without the
	// context added further up the chain
	if code < http.StatusInternalServerError {
		http.Error(w, httpErr.Error(), code)
		return
	}

	s.logger.Error("error on request", slog.String("url", r.URL.String()), slog.String("err", err.Error()))

	// send an asynchronous notification (but ignore 404 and stuff)
	go func(e error) {
		s.logger.Debug("sending error notification", slog.String("err", e.Error()))
		if err2 := s.notify.Send(context.Background(), notificationSubject, e.Error()); err2 != nil {
			s.logger.Error("error on notification send", slog.String("err", err2.Error()))
		}
	}(err)

	// internals like resource paths stay in the log
	http.Error(w, http.StatusText(code), code)
}
