package main

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/firefart/go-version-text/internal/config"
	"github.com/firefart/go-version-text/internal/mail"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/discord"
	notifymail "github.com/nikoksr/notify/service/mail"
	"github.com/nikoksr/notify/service/msteams"
	"github.com/nikoksr/notify/service/sendgrid"
	"github.com/nikoksr/notify/service/telegram"
)

func setupNotifications(configuration config.Configuration, logger *slog.Logger) (*notify.Notify, error) {
	not := notify.New()
	var services []notify.Notifier
	c := configuration.Notifications

	if c.Telegram.APIToken != "" {
		logger.Info("Notifications: using telegram")
		telegramService, err := telegram.New(c.Telegram.APIToken)
		if err != nil {
			return nil, fmt.Errorf("telegram setup: %w", err)
		}
		telegramService.AddReceivers(c.Telegram.ChatIDs...)
		services = append(services, telegramService)
	}

	if c.Discord.BotToken != "" || c.Discord.OAuthToken != "" {
		logger.Info("Notifications: using discord")
		discordService := discord.New()
		if c.Discord.BotToken != "" {
			if err := discordService.AuthenticateWithBotToken(c.Discord.BotToken); err != nil {
				return nil, fmt.Errorf("discord bot token setup: %w", err)
			}
		} else if err := discordService.AuthenticateWithOAuth2Token(c.Discord.OAuthToken); err != nil {
			return nil, fmt.Errorf("discord oauth token setup: %w", err)
		}
		discordService.AddReceivers(c.Discord.ChannelIDs...)
		services = append(services, discordService)
	}

	if c.Email.Server != "" {
		logger.Info("Notifications: using email")
		mailHost := net.JoinHostPort(c.Email.Server, strconv.Itoa(c.Email.Port))
		mailService := notifymail.New(c.Email.Sender, mailHost)
		if c.Email.Username != "" && c.Email.Password != "" {
			mailService.AuthenticateSMTP(
				"",
				c.Email.Username,
				c.Email.Password,
				c.Email.Server,
			)
		}
		mailService.AddReceivers(c.Email.Recipients...)
		services = append(services, mailService)
	}

	if c.SendGrid.APIKey != "" {
		logger.Info("Notifications: using sendgrid")
		sendGridService := sendgrid.New(
			c.SendGrid.APIKey,
			c.SendGrid.SenderAddress,
			c.SendGrid.SenderName,
		)
		sendGridService.AddReceivers(c.SendGrid.Recipients...)
		services = append(services, sendGridService)
	}

	if len(c.MSTeams.Webhooks) > 0 {
		logger.Info("Notifications: using msteams")
		msteamsService := msteams.New()
		msteamsService.AddReceivers(c.MSTeams.Webhooks...)
		services = append(services, msteamsService)
	}

	// smtp with retries and tls policies, configured under mail
	if configuration.Mail.Enabled {
		logger.Info("Notifications: using smtp mailer")
		mailer, err := mail.New(configuration.Mail, logger)
		if err != nil {
			return nil, fmt.Errorf("smtp mailer setup: %w", err)
		}
		services = append(services, mailer)
	}

	not.UseServices(services...)
	return not, nil
}
