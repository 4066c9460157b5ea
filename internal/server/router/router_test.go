package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/firefart/go-version-text/internal/server/httperror"
	"github.com/stretchr/testify/require"
)

func header(name, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(name, value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestRouter(t *testing.T) {
	r := New()
	r.Use(header("X-Chain", "global"))
	r.HandleFunc("GET /ok", func(w http.ResponseWriter, _ *http.Request) error {
		fmt.Fprint(w, "ok")
		return nil
	})
	r.HandleFunc("GET /bad", func(_ http.ResponseWriter, _ *http.Request) error {
		return httperror.New(http.StatusBadRequest, "bad input")
	})
	r.HandleFunc("GET /wrapped", func(_ http.ResponseWriter, _ *http.Request) error {
		return fmt.Errorf("loading item: %w", httperror.New(http.StatusNotFound, "no such item"))
	})
	r.HandleFunc("GET /broken", func(_ http.ResponseWriter, _ *http.Request) error {
		return errors.New("broken")
	})
	r.Group(func(r *Router) {
		r.Use(header("X-Chain", "group"))
		r.HandleFunc("GET /group", func(_ http.ResponseWriter, _ *http.Request) error {
			return httperror.New(http.StatusNotFound, "nothing here")
		})
	})

	tests := []struct {
		path   string
		code   int
		body   string
		chain  []string
		method string
	}{
		{path: "/ok", code: http.StatusOK, body: "ok", chain: []string{"global"}},
		{path: "/bad", code: http.StatusBadRequest, body: "bad input\n", chain: []string{"global"}},
		{path: "/wrapped", code: http.StatusNotFound, body: "no such item\n", chain: []string{"global"}},
		{path: "/broken", code: http.StatusInternalServerError, body: "broken\n", chain: []string{"global"}},
		{path: "/group", code: http.StatusNotFound, body: "nothing here\n", chain: []string{"global", "group"}},
		{path: "/missing", code: http.StatusNotFound, chain: []string{"global"}},
		{path: "/ok", method: http.MethodPost, code: http.StatusMethodNotAllowed, chain: []string{"global"}},
	}

	for _, tt := range tests {
		method := tt.method
		if method == "" {
			method = http.MethodGet
		}
		t.Run(method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(method, tt.path, nil)
			r.ServeHTTP(rec, req)
			require.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				require.Equal(t, tt.body, rec.Body.String())
			}
			require.Equal(t, tt.chain, rec.Header().Values("X-Chain"))
		})
	}
}

func TestCustomErrorHandler(t *testing.T) {
	r := New()
	r.SetErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
		http.Error(w, strings.ToUpper(err.Error()), http.StatusTeapot)
	})
	r.Group(func(r *Router) {
		r.HandleFunc("GET /fail", func(_ http.ResponseWriter, _ *http.Request) error {
			return errors.New("fail")
		})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "FAIL\n", rec.Body.String())
}
