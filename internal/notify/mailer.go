// Package notify sends the post-payment emails and journals failed deliveries.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gstyle/storefront-payments/internal/config"
	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned by Send when SMTP credentials are missing.
var ErrNotConfigured = errors.New("mailer not configured")

// Message is a rendered HTML email
type Message struct {
	Subject string
	HTML    string
	To      []string
}

// Mailer delivers rendered messages
type Mailer interface {
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an authenticated SMTP relay using opportunistic STARTTLS and PLAIN auth
type SMTPMailer struct {
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
	now  func() time.Time
	cfg  config.MailConfig
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	var d net.Dialer
	return &SMTPMailer{
		cfg:  cfg,
		dial: d.DialContext,
		now:  time.Now,
	}
}

// Configured reports whether host and credentials are set.
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Configured()
}

// Send delivers msg. The whole SMTP exchange is bounded by MailConfig.SendTimeout.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}

	if m.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.SendTimeout)
		defer cancel()
	}

	out, err := m.buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := m.client()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", m.cfg.SMTPHost, err)
	}
	return nil
}

func (m *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(m.dial),
	}
	if m.cfg.SendTimeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.SendTimeout))
	}

	client, err := mail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp settings: %w", err)
	}
	return client, nil
}

// buildMessage renders msg as a UTF-8 HTML email with base64 transfer encoding.
func (m *SMTPMailer) buildMessage(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8), mail.WithEncoding(mail.EncodingB64))

	if err := out.FromFormat(m.cfg.FromName, m.cfg.User); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.User, err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetDateWithValue(m.now())
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)

	return out, nil
}
