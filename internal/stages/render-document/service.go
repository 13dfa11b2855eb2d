package renderdocument

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"maturity-report/internal/common/errors"
	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/metrics"
	composedocument "maturity-report/internal/stages/compose-document"
)

const StageName = "render-document"

var pdfMagic = []byte("%PDF-")

type Service struct {
	config   *Config
	renderer Renderer
	logger   logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid render-document config: %w", err)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	renderer := deps.Renderer
	if renderer == nil {
		var err error
		if renderer, err = NewRenderer(config, log); err != nil {
			return nil, err
		}
	}

	return &Service{
		config:   config,
		renderer: renderer,
		logger:   log,
	}, nil
}

// NewRenderer builds the backend named in config.
func NewRenderer(config *Config, log logger.Logger) (Renderer, error) {
	switch config.Backend {
	case BackendChrome:
		return NewChromeRenderer(config.ExecPath, config.NoSandbox, log), nil
	case BackendGotenberg:
		return NewGotenbergRenderer(config.GotenbergURL, config.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", config.Backend)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the backend can take work. Backends without a
// health probe are always ready.
func (s *Service) Ready(ctx context.Context) error {
	if p, ok := s.renderer.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Execute renders doc within the configured budget. Deadline overruns are
// reported as RENDER_TIMEOUT, every other failure as RENDER_FAILED.
func (s *Service) Execute(ctx context.Context, doc *composedocument.Document) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("Rendering report document", map[string]interface{}{
		"reportId": doc.ReportID,
		"backend":  s.renderer.Name(),
		"timeout":  s.config.Timeout.String(),
	})

	pdf, err := s.renderer.Render(ctx, doc, s.config.Page)
	duration := time.Since(start)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewRenderTimeoutError(s.config.Timeout, err).
				WithMetadata("backend", s.renderer.Name())
		}
		return nil, errors.NewRenderFailedError(err).
			WithMetadata("backend", s.renderer.Name())
	}

	if !bytes.HasPrefix(pdf, pdfMagic) {
		return nil, errors.NewRenderFailedError(fmt.Errorf("backend %s returned %d bytes without a PDF header", s.renderer.Name(), len(pdf))).
			WithMetadata("backend", s.renderer.Name())
	}

	metrics.ReportArtifactBytes.Observe(float64(len(pdf)))
	s.logger.Info("Report document rendered", map[string]interface{}{
		"reportId":   doc.ReportID,
		"backend":    s.renderer.Name(),
		"bytes":      len(pdf),
		"durationMs": duration.Milliseconds(),
	})

	return &Output{
		PDF:      pdf,
		Backend:  s.renderer.Name(),
		Duration: duration,
	}, nil
}
