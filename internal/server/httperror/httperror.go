package httperror

import (
	"errors"
)

// HTTPError is an error carrying the status code it should be answered with.
type HTTPError struct {
	Err        error
	StatusCode int
}

func New(code int, message string) *HTTPError {
	return Wrap(code, errors.New(message))
}

// Wrap attaches a status code to err.
func Wrap(code int, err error) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: code,
	}
}

func (err HTTPError) Error() string {
	return err.Err.Error()
}

func (err HTTPError) Unwrap() error {
	return err.Err
}
