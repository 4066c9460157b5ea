package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// VersionSource produces the version report served on /version.txt.
type VersionSource interface {
	Aggregate(ctx context.Context) (string, error)
}

type VersionTextHandler struct {
	source VersionSource
}

func NewVersionTextHandler(source VersionSource) *VersionTextHandler {
	return &VersionTextHandler{
		source: source,
	}
}

func (h *VersionTextHandler) Handler(w http.ResponseWriter, r *http.Request) error {
	text, err := h.source.Aggregate(r.Context())
	if err != nil {
		return fmt.Errorf("could not build version text: %w", err)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, text)
	return nil
}
