package alert

import (
	"context"
	"fmt"

	mail "gopkg.in/gomail.v2"
)

// Sender sends composed messages. *mail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Mail sends messages as plain-text mails through an SMTP relay.
type Mail struct {
	from   string
	to     []string
	sender Sender
}

// NewMail creates a mail notifier relaying through server:port.
func NewMail(server string, port int, user, password, from string, to []string) *Mail {
	return NewMailSender(mail.NewDialer(server, port, user, password), from, to)
}

// NewMailSender creates a mail notifier using an arbitrary Sender.
func NewMailSender(sender Sender, from string, to []string) *Mail {
	return &Mail{
		from:   from,
		to:     to,
		sender: sender,
	}
}

// Notify sends message to all recipients in Bcc.
// gomail has no context support; ctx is only checked before dialing.
func (m *Mail) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("Bcc", m.to...)
	msg.SetHeader("Subject", "[water-level] threshold alert")
	msg.SetBody("text/plain", message)

	err := m.sender.DialAndSend(msg)
	if err != nil {
		return fmt.Errorf("could not send mail alert: %w", err)
	}
	return nil
}
