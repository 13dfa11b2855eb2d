package sendreport

import (
	"context"
	"time"

	"maturity-report/internal/common/logger"
	composedelivery "maturity-report/internal/stages/compose-delivery"
)

// Sender hands a composed message to an email transport.
type Sender interface {
	Send(ctx context.Context, msg *composedelivery.Message) (*Receipt, error)
	Provider() string
}

// Receipt is the transport's acknowledgement of a queued message.
type Receipt struct {
	MessageID string
	Provider  string
	SentAt    time.Time
}

type ServiceDependencies struct {
	Logger logger.Logger
	Sender Sender
}
