// Package notify contains the outbound mail transport and the upload
// notification coalescing dispatcher.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/aylalah/ag-rms-sub000/internal/config"
	"github.com/wneessen/go-mail"
)

// Message is one outbound email. Fire and forget from the caller's
// perspective; implementations report failures through their return value
// but callers treat delivery as best effort.
type Message struct {
	To      string
	Cc      string
	Subject string
	HTML    string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer creates a new SMTP mailer from config
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	if msg.Cc != "" {
		if err := mm.Cc(msg.Cc); err != nil {
			return fmt.Errorf("set cc address: %w", err)
		}
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes messages to the process log instead of delivering them.
// Used when no SMTP relay is configured (development, tests).
type LogMailer struct{}

// Send logs the message.
func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("mailer: would send %q to %s (cc %q)", msg.Subject, msg.To, msg.Cc)
	return nil
}
