package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/honeynil/raffle-service/internal/models"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender delivers notifications as plain-text mail.
type SMTPSender struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) Deliver(ctx context.Context, n models.Notification) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("SMTP not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	return s.send(addr, auth, s.cfg.From, []string{n.To}, buildMessage(s.cfg.From, n))
}

func buildMessage(from string, n models.Notification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", n.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(n.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
