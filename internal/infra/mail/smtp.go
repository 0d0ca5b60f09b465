// Package mail holds the notification transports.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/pratyek/grocery-app/internal/notification"
)

type SMTPTransport struct {
	host     string
	port     int
	user     string
	password string
	from     string

	// swapped in tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPTransport(host string, port int, user, password, from string) *SMTPTransport {
	if from == "" {
		from = user
	}
	return &SMTPTransport{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg notification.Message) error {
	from := msg.From
	if from == "" {
		from = t.from
	}

	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	auth := smtp.PlainAuth("", t.user, t.password, t.host)
	body := buildMIME(from, msg)

	// net/smtp has no context support; give up waiting when ctx ends
	errCh := make(chan error, 1)
	go func() {
		errCh <- t.sendMail(addr, auth, from, []string{msg.To}, body)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("smtp %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMIME(from string, msg notification.Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
