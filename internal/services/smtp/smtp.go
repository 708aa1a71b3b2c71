// Package smtp delivers notification emails through a plain SMTP relay.
package smtp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"stand-lead-engine/internal/services/notifier"
)

// ErrNotConfigured is returned by NewSender when host or sender address is missing.
var ErrNotConfigured = errors.New("smtp host and from address are required")

// Options holds SMTP connection settings.
type Options struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// Sender implements notifier.Sender over SMTP using go-mail.
type Sender struct {
	opts Options
}

// NewSender validates opts and returns a Sender.
func NewSender(opts Options) (*Sender, error) {
	if opts.Host == "" || opts.FromEmail == "" {
		return nil, ErrNotConfigured
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Sender{opts: opts}, nil
}

// Send renders msg and delivers it in a single SMTP session.
func (s *Sender) Send(ctx context.Context, msg notifier.Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	clientOpts := []gomail.Option{
		gomail.WithPort(s.opts.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(s.opts.Timeout),
	}
	if s.opts.Username != "" {
		clientOpts = append(clientOpts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.opts.Username),
			gomail.WithPassword(s.opts.Password),
		)
	}

	client, err := gomail.NewClient(s.opts.Host, clientOpts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *Sender) build(msg notifier.Message) (*gomail.Msg, error) {
	rendered, err := notifier.Render(msg)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(s.opts.FromName, s.opts.FromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if msg.Recipient.Name != "" {
		err = m.AddToFormat(msg.Recipient.Name, msg.Recipient.Address)
	} else {
		err = m.To(msg.Recipient.Address)
	}
	if err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}

	m.Subject(rendered.Subject)
	m.SetBodyString(gomail.TypeTextPlain, rendered.Text)
	if rendered.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, rendered.HTML)
	}
	return m, nil
}
