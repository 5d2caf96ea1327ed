package senders

import (
	"context"
	"fmt"
	"net/mail"

	gomail "gopkg.in/gomail.v2"

	"github.com/CortinezO98/MisVigencias/internal/ports"
)

// EmailSender delivers reminder mails over SMTP.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *EmailSender) Send(ctx context.Context, recipient, subject, body string) (ports.Result, error) {
	if _, err := mail.ParseAddress(recipient); err != nil {
		return ports.Result{}, fmt.Errorf("%w: %s", ErrInvalidRecipient, recipient)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return ports.Result{}, fmt.Errorf("%w: %s", ErrTimeout, recipient)
	case err := <-done:
		if err != nil {
			return ports.Result{}, fmt.Errorf("%w: %v", ErrProvider, err)
		}
	}

	return ports.Result{Detail: fmt.Sprintf("Email enviado a %s", recipient)}, nil
}
