// mailer.go - Outbound email collaborator used by the password reset flow

package mailer

import (
	"context"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	From   string
	dialer *gomail.Dialer
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{From: from, dialer: gomail.NewDialer(host, port, user, password)}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return s.dialer.DialAndSend(m)
}

// LogSender writes messages to the log. Used when no SMTP relay is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("mail not sent, no SMTP relay configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

// sendTimeout bounds a single fire-and-forget delivery.
const sendTimeout = 30 * time.Second

// Dispatch sends msg in the background. Failures are logged and never reach the caller.
func Dispatch(sender Sender, msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := sender.Send(ctx, msg); err != nil {
			slog.Error("mail delivery failed", "to", msg.To, "subject", msg.Subject, "err", err)
		}
	}()
}
