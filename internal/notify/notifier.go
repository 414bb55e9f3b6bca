// =============================================================================
// Sheet Consolidator - Report Notifier
// =============================================================================
//
// This module mails the written report as an attachment.
//
// CREDENTIALS:
//   Read from the environment (a .env file is loaded first by the CLI):
//     EMAIL_SENDER     address the report is sent from (also the SMTP user)
//     EMAIL_RECEIVER   address the report is sent to
//     EMAIL_PASSWORD   SMTP password
//
// Port 465 uses implicit TLS; any other port requires STARTTLS.
//
// =============================================================================

package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/wneessen/go-mail"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
)

// ErrMissingReport is returned when the report to attach does not exist.
var ErrMissingReport = errors.New("report file not found")

// Credentials identify the mailbox the report is sent from and to.
type Credentials struct {
	Sender   string `envconfig:"EMAIL_SENDER" validate:"required,email"`
	Receiver string `envconfig:"EMAIL_RECEIVER" validate:"required,email"`
	Password string `envconfig:"EMAIL_PASSWORD" validate:"required"`
}

// Validate checks that every credential is present and well formed.
func (c Credentials) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid mail credentials: %w", err)
	}
	return nil
}

// CredentialsFromEnv reads and validates the EMAIL_* variables.
func CredentialsFromEnv() (Credentials, error) {
	var c Credentials
	if err := envconfig.Process("", &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to read mail credentials: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// Sender delivers a prepared message.
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

type clientSender struct {
	client *mail.Client
}

func (s clientSender) Send(ctx context.Context, msg *mail.Msg) error {
	return s.client.DialAndSendWithContext(ctx, msg)
}

// Option configures an SMTPNotifier.
type Option func(*SMTPNotifier)

// WithSender replaces the SMTP connection, typically with a test double.
func WithSender(s Sender) Option {
	return func(n *SMTPNotifier) { n.sender = s }
}

// SMTPNotifier sends reports over SMTP.
type SMTPNotifier struct {
	settings config.NotifyConfig
	creds    Credentials
	sender   Sender
}

// NewSMTPNotifier creates a notifier. No connection is made until Notify.
//
// PARAMETERS:
//   - settings: SMTP server, message text and timeout.
//   - creds: Sender, receiver and password.
//   - opts: Optional overrides.
//
// RETURNS:
//   - An error if the credentials are invalid or the client cannot be built.
func NewSMTPNotifier(settings config.NotifyConfig, creds Credentials, opts ...Option) (*SMTPNotifier, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	n := &SMTPNotifier{settings: settings, creds: creds}
	for _, o := range opts {
		o(n)
	}

	if n.sender == nil {
		client, err := newClient(settings, creds)
		if err != nil {
			return nil, err
		}
		n.sender = clientSender{client: client}
	}

	return n, nil
}

func newClient(settings config.NotifyConfig, creds Credentials) (*mail.Client, error) {
	clientOpts := []mail.Option{
		mail.WithPort(settings.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Sender),
		mail.WithPassword(creds.Password),
		mail.WithTimeout(timeout(settings)),
	}
	if settings.SMTPPort == 465 {
		clientOpts = append(clientOpts, mail.WithSSL())
	} else {
		clientOpts = append(clientOpts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(settings.SMTPHost, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// BuildMessage prepares the mail carrying the report.
func (n *SMTPNotifier) BuildMessage(reportPath string) (*mail.Msg, error) {
	if _, err := os.Stat(reportPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingReport, reportPath)
	}

	msg := mail.NewMsg()
	if err := msg.From(n.creds.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(n.creds.Receiver); err != nil {
		return nil, fmt.Errorf("invalid receiver: %w", err)
	}
	msg.Subject(n.settings.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, n.settings.Body)
	msg.AttachFile(reportPath, mail.WithFileName(filepath.Base(reportPath)))

	return msg, nil
}

// Notify mails the report. It gives up after the configured timeout.
func (n *SMTPNotifier) Notify(ctx context.Context, reportPath string) error {
	msg, err := n.BuildMessage(reportPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout(n.settings))
	defer cancel()

	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report to %s: %w", n.creds.Receiver, err)
	}
	return nil
}

func timeout(settings config.NotifyConfig) time.Duration {
	if settings.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(settings.TimeoutSeconds) * time.Second
}
