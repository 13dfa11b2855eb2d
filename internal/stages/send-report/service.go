package sendreport

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"maturity-report/internal/common/aws"
	"maturity-report/internal/common/errors"
	"maturity-report/internal/common/logger"
	composedelivery "maturity-report/internal/stages/compose-delivery"
)

const StageName = "send-report"

type Service struct {
	config *Config
	sender Sender
	logger logger.Logger
}

func NewService(ctx context.Context, deps ServiceDependencies, config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	sender := deps.Sender
	if sender == nil {
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid send-report config: %w", err)
		}
		var err error
		if sender, err = NewSender(ctx, config, log); err != nil {
			return nil, err
		}
	} else if config.Timeout <= 0 {
		return nil, fmt.Errorf("invalid send-report config: timeout must be positive")
	}

	return &Service{config: config, sender: sender, logger: log}, nil
}

// NewSender builds the transport named in config.
func NewSender(ctx context.Context, config *Config, log logger.Logger) (Sender, error) {
	switch config.Provider {
	case ProviderMailgun:
		return NewMailgunSender(config.Mailgun, config.Timeout, log), nil
	case ProviderSES:
		client, err := aws.NewSESClient(ctx, config.SESRegion)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		return NewSESSender(client, log), nil
	case ProviderSMTP:
		return NewSMTPSender(config.SMTP, log), nil
	default:
		return nil, fmt.Errorf("unknown delivery provider %q", config.Provider)
	}
}

// Execute sends msg within the configured budget. Deadline overruns are
// reported as SEND_TIMEOUT, every other failure as SEND_FAILED.
func (s *Service) Execute(ctx context.Context, msg *composedelivery.Message) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	provider := s.sender.Provider()
	s.logger.Info("Sending report email", map[string]interface{}{
		"reportId": msg.ReportID,
		"to":       msg.To,
		"provider": provider,
	})

	start := time.Now()
	receipt, err := s.sender.Send(ctx, msg)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.NewSendTimeoutError(provider, s.config.Timeout, err).
				WithMetadata("reportId", msg.ReportID)
		}
		return nil, errors.NewSendFailedError(provider, err).
			WithMetadata("reportId", msg.ReportID)
	}

	s.logger.Info("Report email sent", map[string]interface{}{
		"reportId":   msg.ReportID,
		"provider":   provider,
		"messageId":  receipt.MessageID,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return receipt, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
