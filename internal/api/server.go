package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maturity-report/internal/common/errors"
	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/validation"
	"maturity-report/internal/pipeline"
)

const (
	DefaultMaxBodyBytes = 10 << 20
	// bodyPreviewBytes bounds the request body echoed into debug logs.
	bodyPreviewBytes = 500

	ServiceStatus  = "AI Maturity Report Service Running"
	SuccessMessage = "AI Maturity Report generated and sent successfully"

	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// Runner executes the report pipeline for one submission.
type Runner interface {
	Run(ctx context.Context, raw map[string]interface{}) *pipeline.Outcome
}

type Config struct {
	MaxBodyBytes int64
}

type ServerDependencies struct {
	Logger   logger.Logger
	Pipeline Runner
	// Gatherer backs /metrics; defaults to the Prometheus default registry.
	Gatherer prometheus.Gatherer
	// Ready reports whether collaborators are usable; nil means always ready.
	Ready func(ctx context.Context) error
	Clock func() time.Time
}

type Server struct {
	router   *mux.Router
	pipeline Runner
	errors   *errors.ErrorHandler
	logger   logger.Logger
	gatherer prometheus.Gatherer
	ready    func(ctx context.Context) error
	now      func() time.Time
	maxBody  int64
}

func NewServer(deps ServerDependencies, cfg Config) (*Server, error) {
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("api server requires a pipeline")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	s := &Server{
		router:   mux.NewRouter(),
		pipeline: deps.Pipeline,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
		gatherer: gatherer,
		ready:    deps.Ready,
		now:      clock,
		maxBody:  maxBody,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.HandleFunc("/generate-report", s.handleGenerateReport).Methods(http.MethodPost)
}

// Handler returns the router wrapped in request id, access log and panic
// recovery middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = recovery(s.logger)(h)
	h = accessLog(s.logger, h)
	return requestID(h)
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

type indexResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Status:    ServiceStatus,
		Timestamp: s.timestamp(),
		Endpoints: map[string]string{
			"health":         "GET /",
			"liveness":       "GET /health",
			"readiness":      "GET /ready",
			"metrics":        "GET /metrics",
			"generateReport": "POST /generate-report",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{"error": err.Error()})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"time":   s.now().Format(time.RFC3339),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   s.now().Format(time.RFC3339),
	})
}

type successResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ReportID  string `json:"reportId"`
	Timestamp string `json:"timestamp"`
}

// rejectionResponse is the 400 body for submissions the pipeline never ran.
type rejectionResponse struct {
	Success      bool                         `json:"success"`
	Error        string                       `json:"error"`
	Code         errors.ErrorCode             `json:"code"`
	Message      string                       `json:"message,omitempty"`
	FailedChecks []validation.ValidationError `json:"failedChecks,omitempty"`
	Received     interface{}                  `json:"received,omitempty"`
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			err = fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		s.rejectBody(w, r, err)
		return
	}

	s.logger.Debug("Report request received", map[string]interface{}{
		"requestId":   r.Header.Get(HeaderRequestID),
		"method":      r.Method,
		"contentType": r.Header.Get("Content-Type"),
		"headers":     redactHeaders(r.Header),
		"bodyPreview": preview(body, bodyPreviewBytes),
	})

	raw, err := decodeBody(r.Header.Get("Content-Type"), body)
	if err != nil {
		s.rejectBody(w, r, err)
		return
	}

	out := s.pipeline.Run(r.Context(), raw)
	switch {
	case out.Succeeded():
		writeJSON(w, http.StatusOK, successResponse{
			Success:   true,
			Message:   SuccessMessage,
			ReportID:  out.ReportID(),
			Timestamp: s.timestamp(),
		})
	case out.Failure != nil:
		resp := rejectionResponse{
			Success:      false,
			Error:        out.Err.Message,
			Code:         out.Err.Code,
			FailedChecks: out.Failure.Checks,
			Received:     out.Failure.Received,
		}
		writeJSON(w, errors.HTTPStatus(out.Err.Code), resp)
	default:
		err := error(out.Err)
		if out.Err == nil {
			err = errors.NewInternalError(fmt.Errorf("pipeline ended in state %s", out.State))
		}
		s.errors.HandleRequestError(w, r, out.FailedStage, err)
	}
}

func (s *Server) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := errors.NewInvalidRequestBodyError(err)
	s.logger.Warn("Report request body rejected", map[string]interface{}{
		"requestId": r.Header.Get(HeaderRequestID),
		"error":     err.Error(),
	})
	writeJSON(w, errors.HTTPStatus(stdErr.Code), rejectionResponse{
		Success: false,
		Error:   stdErr.Message,
		Code:    stdErr.Code,
		Message: stdErr.Details,
	})
}

// credentialHeaders are masked before request headers are logged.
var credentialHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"X-Api-Key":           true,
	"X-Auth-Token":        true,
}

const redacted = "[REDACTED]"

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if credentialHeaders[http.CanonicalHeaderKey(k)] {
			out[k] = redacted
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func preview(body []byte, n int) string {
	if len(body) > n {
		body = body[:n]
	}
	return string(body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
