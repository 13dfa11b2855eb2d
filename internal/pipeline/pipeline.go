package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"maturity-report/internal/common/errors"
	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/metrics"
	"maturity-report/internal/common/observability"
	"maturity-report/internal/common/validation"
	composedelivery "maturity-report/internal/stages/compose-delivery"
	composedocument "maturity-report/internal/stages/compose-document"
	computemetrics "maturity-report/internal/stages/compute-metrics"
	renderdocument "maturity-report/internal/stages/render-document"
	sendreport "maturity-report/internal/stages/send-report"
	validateassessment "maturity-report/internal/stages/validate-assessment"
)

type requestIDKey struct{}

// ContextWithRequestID tags ctx so every pipeline log line carries id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Pipeline runs one submission through validation, metrics, composition,
// rendering and delivery. It holds no per-request state.
type Pipeline struct {
	logger    logger.Logger
	obs       *observability.Observability
	validator Validator
	renderer  Renderer
	composer  Composer
	sender    Sender
}

func New(deps Dependencies) (*Pipeline, error) {
	if deps.Validator == nil || deps.Renderer == nil || deps.Composer == nil || deps.Sender == nil {
		return nil, fmt.Errorf("pipeline requires validator, renderer, composer and sender")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	obs := deps.Observability
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Pipeline{
		logger:    log,
		obs:       obs,
		validator: deps.Validator,
		renderer:  deps.Renderer,
		composer:  deps.Composer,
		sender:    deps.Sender,
	}, nil
}

// Run processes raw to completion. The first failing stage ends the run.
func (p *Pipeline) Run(ctx context.Context, raw map[string]interface{}) *Outcome {
	start := time.Now()
	metrics.ReportsInFlight.Inc()
	defer metrics.ReportsInFlight.Dec()

	ctx, span := p.obs.StartSpan(ctx, "report.pipeline")
	defer span.End()

	log := p.logger
	if id := RequestIDFromContext(ctx); id != "" {
		log = log.WithFields(map[string]interface{}{"requestId": id})
	}

	out := &Outcome{State: StateReceived}
	if err := p.execute(ctx, log, out, raw); err != nil {
		span.RecordError(err)
	}
	out.Duration = time.Since(start)

	status := out.Status()
	metrics.ReportRequests.WithLabelValues(status).Inc()
	p.obs.RecordReportProcessed(ctx, status)
	p.obs.RecordReportDuration(ctx, out.Duration, status)

	span.SetAttributes(
		attribute.String("report.status", status),
		attribute.String("report.id", out.ReportID()),
	)
	if out.Err != nil {
		span.SetStatus(codes.Error, string(out.Err.Code))
		log.Error("Report pipeline failed", map[string]interface{}{
			"stage":      out.FailedStage,
			"errorCode":  string(out.Err.Code),
			"details":    out.Err.Details,
			"reportId":   out.ReportID(),
			"durationMs": out.Duration.Milliseconds(),
		})
	} else {
		span.SetStatus(codes.Ok, "")
		fields := map[string]interface{}{
			"reportId":   out.ReportID(),
			"durationMs": out.Duration.Milliseconds(),
		}
		if out.Receipt != nil {
			fields["messageId"] = out.Receipt.MessageID
		}
		log.Info("Report pipeline completed", fields)
	}
	return out
}

// execute walks the stages in order. The returned error is also recorded
// on out.
func (p *Pipeline) execute(ctx context.Context, log logger.Logger, out *Outcome, raw map[string]interface{}) error {
	var result *validateassessment.Result
	if err := p.stage(ctx, log, out, validateassessment.StageName, StateValidated, func(context.Context) error {
		var err error
		result, err = p.validator.Validate(raw)
		return err
	}); err != nil {
		return err
	}
	out.Input = result.Input
	log = log.WithFields(map[string]interface{}{"reportId": result.Input.ReportID})

	var m computemetrics.Metrics
	p.step(ctx, log, out, computemetrics.StageName, StateMetricsComputed, func() {
		m = computemetrics.Compute(result.Input.Scores)
	})
	out.Metrics = &m

	var doc *composedocument.Document
	p.step(ctx, log, out, composedocument.StageName, StateDocumentComposed, func() {
		doc = composedocument.Compose(result.Input, m)
	})

	var rendered *renderdocument.Output
	if err := p.stage(ctx, log, out, renderdocument.StageName, StateRendered, func(ctx context.Context) error {
		var err error
		rendered, err = p.renderer.Execute(ctx, doc)
		return err
	}); err != nil {
		return err
	}

	var msg *composedelivery.Message
	if err := p.stage(ctx, log, out, composedelivery.StageName, StateDeliveryComposed, func(context.Context) error {
		var err error
		msg, err = p.composer.Compose(result.Input, m, rendered.PDF)
		return err
	}); err != nil {
		return err
	}

	return p.stage(ctx, log, out, sendreport.StageName, StateSent, func(ctx context.Context) error {
		var err error
		out.Receipt, err = p.sender.Execute(ctx, msg)
		return err
	})
}

// stage runs fn inside a span, times it and advances out to next on
// success. On failure out is marked failed at name.
func (p *Pipeline) stage(ctx context.Context, log logger.Logger, out *Outcome, name string, next State, fn func(context.Context) error) error {
	ctx, span := p.obs.StartSpan(ctx, "report."+name, attribute.String("stage", name))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	metrics.ReportStageDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		stdErr := classify(err)
		var failure *validation.Failure
		if stderrors.As(err, &failure) {
			out.Failure = failure
		}
		out.State = StateFailed
		out.FailedStage = name
		out.Err = stdErr

		metrics.ReportStageFailures.WithLabelValues(name, string(stdErr.Code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		return stdErr
	}

	advance(log, out, span, name, next, elapsed)
	return nil
}

// step is stage for pure transformations that cannot fail.
func (p *Pipeline) step(ctx context.Context, log logger.Logger, out *Outcome, name string, next State, fn func()) {
	_, span := p.obs.StartSpan(ctx, "report."+name, attribute.String("stage", name))
	defer span.End()

	start := time.Now()
	fn()
	elapsed := time.Since(start)
	metrics.ReportStageDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	advance(log, out, span, name, next, elapsed)
}

func advance(log logger.Logger, out *Outcome, span trace.Span, name string, next State, elapsed time.Duration) {
	out.State = next
	span.SetStatus(codes.Ok, "")
	log.Debug("Stage completed", map[string]interface{}{
		"stage":      name,
		"state":      string(next),
		"durationMs": elapsed.Milliseconds(),
	})
}

// classify maps a stage error onto the error taxonomy. Validation failures
// become VALIDATION_FAILED; anything untyped is INTERNAL_ERROR.
func classify(err error) *errors.StandardError {
	var failure *validation.Failure
	if stderrors.As(err, &failure) {
		return errors.NewValidationFailedError(failure.Error()).
			WithMetadata("failedChecks", failure.Fields())
	}
	return errors.Normalize(err)
}
