package email

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the mail provider credentials.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type smtpService struct {
	dialer *gomail.Dialer
}

// NewSMTPService builds the gomail-backed sender. The dialer is constructed
// once here; callers own the lifecycle through dependency injection.
func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) Send(ctx context.Context, msg *Message) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	messageID := fmt.Sprintf("<%s@invoicechaser>", uuid.New().String())
	m.SetHeader("Message-Id", messageID)

	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	// gomail has no context support; run the dial in a goroutine so the
	// caller's per-send timeout still bounds the operation.
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("send timed out: %w", ctx.Err())
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("failed to send email: %w", err)
		}
	}

	return messageID, nil
}
