package sendreport

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"maturity-report/internal/common/logger"
	composedelivery "maturity-report/internal/stages/compose-delivery"
)

// SESAPI is the slice of the SES client the sender needs.
type SESAPI interface {
	SendRawEmail(ctx context.Context, input *ses.SendRawEmailInput) (*ses.SendRawEmailOutput, error)
}

// SESSender delivers raw MIME messages through Amazon SES.
type SESSender struct {
	client SESAPI
	logger logger.Logger
	now    func() time.Time
}

func NewSESSender(client SESAPI, log logger.Logger) *SESSender {
	return &SESSender{client: client, logger: log, now: time.Now}
}

func (s *SESSender) Provider() string {
	return ProviderSES
}

func (s *SESSender) Send(ctx context.Context, msg *composedelivery.Message) (*Receipt, error) {
	from, err := envelopeAddress(msg.From)
	if err != nil {
		return nil, err
	}
	to, err := envelopeAddress(msg.To)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	raw, err := BuildMIME(msg, NewMessageID(msg.From), now)
	if err != nil {
		return nil, fmt.Errorf("build mime: %w", err)
	}

	out, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       awssdk.String(from),
		Destinations: []string{to},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return nil, fmt.Errorf("ses send to %s: %w", msg.To, err)
	}

	id := awssdk.ToString(out.MessageId)
	s.logger.Debug("SES accepted message", map[string]interface{}{
		"messageId": id,
		"bytes":     len(raw),
	})
	return &Receipt{MessageID: id, Provider: ProviderSES, SentAt: now}, nil
}
