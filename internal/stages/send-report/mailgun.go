package sendreport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"maturity-report/internal/common/logger"
	composedelivery "maturity-report/internal/stages/compose-delivery"
)

// mailgunAPIVersion is appended to the configured base URL.
const mailgunAPIVersion = "/v3"

// MailgunSender delivers messages through the Mailgun messages API.
type MailgunSender struct {
	client *mailgun.MailgunImpl
	logger logger.Logger
	now    func() time.Time
}

func NewMailgunSender(cfg MailgunConfig, timeout time.Duration, log logger.Logger) *MailgunSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMailgunBaseURL
	}

	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	mg.SetAPIBase(strings.TrimRight(cfg.BaseURL, "/") + mailgunAPIVersion)
	mg.SetClient(&http.Client{Timeout: timeout})

	return &MailgunSender{client: mg, logger: log, now: time.Now}
}

func (m *MailgunSender) Provider() string {
	return ProviderMailgun
}

func (m *MailgunSender) Send(ctx context.Context, msg *composedelivery.Message) (*Receipt, error) {
	message := m.client.NewMessage(msg.From, msg.Subject, msg.Text, msg.To)
	message.SetHtml(msg.HTML)
	if msg.ReplyTo != "" {
		message.AddHeader("Reply-To", msg.ReplyTo)
	}
	for _, k := range sortedKeys(msg.Headers) {
		message.AddHeader(k, msg.Headers[k])
	}
	for _, k := range sortedKeys(msg.Variables) {
		if err := message.AddVariable(k, msg.Variables[k]); err != nil {
			return nil, fmt.Errorf("add variable %s: %w", k, err)
		}
	}
	for _, att := range msg.Attachments {
		message.AddBufferAttachment(att.Filename, att.Data)
	}

	status, id, err := m.client.Send(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("mailgun send to %s: %w", msg.To, err)
	}

	m.logger.Debug("Mailgun accepted message", map[string]interface{}{
		"messageId": id,
		"status":    status,
	})
	return &Receipt{MessageID: id, Provider: ProviderMailgun, SentAt: m.now().UTC()}, nil
}
