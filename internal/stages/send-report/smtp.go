package sendreport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"maturity-report/internal/common/logger"
	composedelivery "maturity-report/internal/stages/compose-delivery"
)

// SMTPSender relays messages through an SMTP submission server.
type SMTPSender struct {
	config    SMTPConfig
	tlsConfig *tls.Config
	logger    logger.Logger
	now       func() time.Time
}

func NewSMTPSender(cfg SMTPConfig, log logger.Logger) *SMTPSender {
	return &SMTPSender{
		config:    cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host},
		logger:    log,
		now:       time.Now,
	}
}

func (s *SMTPSender) Provider() string {
	return ProviderSMTP
}

func (s *SMTPSender) Send(ctx context.Context, msg *composedelivery.Message) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before sending email: %w", err)
	}

	from, err := envelopeAddress(msg.From)
	if err != nil {
		return nil, err
	}
	to, err := envelopeAddress(msg.To)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	messageID := NewMessageID(msg.From)
	raw, err := BuildMIME(msg, messageID, now)
	if err != nil {
		return nil, fmt.Errorf("build mime: %w", err)
	}

	if err := s.deliver(ctx, from, []string{to}, raw); err != nil {
		return nil, err
	}

	s.logger.Debug("SMTP server accepted message", map[string]interface{}{
		"messageId": messageID,
		"host":      s.config.Host,
		"bytes":     len(raw),
	})
	return &Receipt{MessageID: messageID, Provider: ProviderSMTP, SentAt: now}, nil
}

func (s *SMTPSender) deliver(ctx context.Context, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to greet SMTP server: %w", err)
	}
	defer client.Close()

	if s.config.UseTLS {
		if err = client.StartTLS(s.tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.config.Username != "" && s.config.Password != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
