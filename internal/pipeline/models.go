package pipeline

import (
	"context"
	"time"

	"maturity-report/internal/common/errors"
	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/observability"
	"maturity-report/internal/common/validation"
	"maturity-report/internal/models"
	composedelivery "maturity-report/internal/stages/compose-delivery"
	composedocument "maturity-report/internal/stages/compose-document"
	computemetrics "maturity-report/internal/stages/compute-metrics"
	renderdocument "maturity-report/internal/stages/render-document"
	sendreport "maturity-report/internal/stages/send-report"
	validateassessment "maturity-report/internal/stages/validate-assessment"
)

// State is the position of a request in the report pipeline.
type State string

const (
	StateReceived         State = "received"
	StateValidated        State = "validated"
	StateMetricsComputed  State = "metrics-computed"
	StateDocumentComposed State = "document-composed"
	StateRendered         State = "rendered"
	StateDeliveryComposed State = "delivery-composed"
	StateSent             State = "sent"
	StateFailed           State = "failed"
)

// Outcome labels used for counters.
const (
	OutcomeSent     = "sent"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type Validator interface {
	Validate(raw map[string]interface{}) (*validateassessment.Result, error)
}

type Renderer interface {
	Execute(ctx context.Context, doc *composedocument.Document) (*renderdocument.Output, error)
}

type Composer interface {
	Compose(input *models.AssessmentInput, m computemetrics.Metrics, pdf []byte) (*composedelivery.Message, error)
}

type Sender interface {
	Execute(ctx context.Context, msg *composedelivery.Message) (*sendreport.Receipt, error)
}

type Dependencies struct {
	Logger        logger.Logger
	Observability *observability.Observability
	Validator     Validator
	Renderer      Renderer
	Composer      Composer
	Sender        Sender
}

// Outcome is the terminal result of one Run.
type Outcome struct {
	State State
	// FailedStage is set when State is StateFailed.
	FailedStage string
	Err         *errors.StandardError
	// Failure carries the failed checks of a rejected submission.
	Failure *validation.Failure

	Input    *models.AssessmentInput
	Metrics  *computemetrics.Metrics
	Receipt  *sendreport.Receipt
	Duration time.Duration
}

func (o *Outcome) Succeeded() bool {
	return o.State == StateSent
}

// Status is the counter label for the outcome.
func (o *Outcome) Status() string {
	switch {
	case o.Succeeded():
		return OutcomeSent
	case o.Failure != nil:
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// ReportID is the effective report id, empty before validation succeeded.
func (o *Outcome) ReportID() string {
	if o.Input == nil {
		return ""
	}
	return o.Input.ReportID
}
