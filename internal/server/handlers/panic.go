package handlers

import (
	"net/http"
)

// PanicHandler panics to exercise the recover middleware.
type PanicHandler struct{}

func NewPanicHandler() *PanicHandler {
	return &PanicHandler{}
}

func (*PanicHandler) Handler(_ http.ResponseWriter, _ *http.Request) error {
	panic("test panic")
}
