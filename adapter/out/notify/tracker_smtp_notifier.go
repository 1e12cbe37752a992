package notify

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"tracker_server/pkg/metrics"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
}

// SMTPNotifier implements out.Notifier with STARTTLS submission.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildMessage(n.cfg.From, to, subject, body, time.Now())
	if err != nil {
		return err
	}
	from, _ := mail.ParseAddress(n.cfg.From)
	rcpt, _ := mail.ParseAddress(to)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	start := time.Now()
	err = n.send(addr, auth, from.Address, []string{rcpt.Address}, msg)
	metrics.RecordUpstream("smtp", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
