package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firefart/go-version-text/internal/config"
	"github.com/nikoksr/notify"

	gomail "github.com/wneessen/go-mail"
)

// sender is the part of the go-mail client used here
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Mail sends plain text error notifications over SMTP. It plugs into
// notify next to the chat services.
type Mail struct {
	client sender
	config config.Mail
	logger *slog.Logger
}

// compile time check that struct implements the interface
var _ notify.Notifier = (*Mail)(nil)

func New(config config.Mail, logger *slog.Logger) (*Mail, error) {
	var options []gomail.Option

	options = append(options, gomail.WithTimeout(config.Timeout))
	options = append(options, gomail.WithPort(config.Port))
	if config.User != "" && config.Password != "" {
		options = append(options, gomail.WithSMTPAuth(gomail.SMTPAuthPlain))
		options = append(options, gomail.WithUsername(config.User))
		options = append(options, gomail.WithPassword(config.Password))
	}
	if config.SkipTLS {
		options = append(options, gomail.WithTLSConfig(&tls.Config{
			InsecureSkipVerify: true, // nolint: gosec
		}))
	}

	// use either tls, starttls, or starttls with fallback to plaintext
	switch {
	case config.TLS:
		options = append(options, gomail.WithSSL())
	case config.StartTLS:
		options = append(options, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	default:
		options = append(options, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}

	mailer, err := gomail.NewClient(config.Server, options...)
	if err != nil {
		return nil, fmt.Errorf("could not create mail client: %w", err)
	}

	return &Mail{
		client: mailer,
		config: config,
		logger: logger,
	}, nil
}

// Send mails the message to every configured recipient
func (m *Mail) Send(ctx context.Context, subject, message string) error {
	for _, to := range m.config.To {
		if err := m.send(ctx, to, subject, message); err != nil {
			return err
		}
	}

	return nil
}

func (m *Mail) send(ctx context.Context, to, subject, content string) error {
	if content == "" {
		return errors.New("need a content to send email")
	}

	m.logger.Debug("sending email", slog.String("subject", subject), slog.String("to", to))

	msg := gomail.NewMsg(gomail.WithNoDefaultUserAgent())
	if err := msg.FromFormat(m.config.From.Name, m.config.From.Mail); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, content)

	// always try at least once
	tries := max(m.config.Retries, 1)
	var err error
	for i := 1; i <= tries; i++ {
		err = m.client.DialAndSendWithContext(ctx, msg)
		if err == nil {
			return nil
		}
		// bail out on cancel
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.logger.Error("error on sending email", slog.String("subject", subject), slog.Int("try", i), slog.String("err", err.Error()))
	}
	return fmt.Errorf("could not send mail %q after %d tries. Last error: %w", subject, tries, err)
}
