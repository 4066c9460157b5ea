package handlers

import (
	"errors"
	"net/http"
)

// NotificationHandler always fails so operators can check that error
// notifications reach them.
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

func (*NotificationHandler) Handler(_ http.ResponseWriter, _ *http.Request) error {
	return errors.New("test notification")
}
