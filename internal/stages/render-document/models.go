package renderdocument

import (
	"context"
	"time"

	"maturity-report/internal/common/logger"
	composedocument "maturity-report/internal/stages/compose-document"
)

// Renderer turns a composed document into PDF bytes. Implementations must
// release every resource they acquire before returning.
type Renderer interface {
	Render(ctx context.Context, doc *composedocument.Document, opts PageOptions) ([]byte, error)
	Name() string
}

type Output struct {
	PDF      []byte
	Backend  string
	Duration time.Duration
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Renderer Renderer
}
