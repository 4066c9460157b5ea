package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/firefart/go-version-text/internal/config"
	"github.com/stretchr/testify/require"
)

func TestSetupNotificationsEmpty(t *testing.T) {
	n, err := setupNotifications(config.Configuration{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NoError(t, n.Send(t.Context(), "subject", "message"))
}

func TestSetupNotificationsMail(t *testing.T) {
	var c config.Configuration
	c.Notifications.Email.Server = "smtp.example.com"
	c.Notifications.Email.Port = 25
	c.Notifications.Email.Sender = "version@example.com"
	c.Notifications.Email.Recipients = []string{"ops@example.com"}
	c.Notifications.MSTeams.Webhooks = []string{"https://example.com/webhook"}
	c.Mail = config.Mail{
		Enabled: true,
		Server:  "smtp.example.com",
		Port:    25,
		To:      []string{"ops@example.com"},
		Timeout: 5 * time.Second,
	}

	n, err := setupNotifications(c, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NotNil(t, n)
}

func TestSetupNotificationsInvalidMailer(t *testing.T) {
	var c config.Configuration
	c.Mail = config.Mail{
		Enabled: true,
		Port:    25,
		Timeout: 5 * time.Second,
	}
	_, err := setupNotifications(c, slog.New(slog.DiscardHandler))
	require.Error(t, err)
}
