package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"maturity-report/internal/common/errors"
	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/validation"
	"maturity-report/internal/models"
	"maturity-report/internal/pipeline"
	renderdocument "maturity-report/internal/stages/render-document"
	sendreport "maturity-report/internal/stages/send-report"
	validateassessment "maturity-report/internal/stages/validate-assessment"
)

type fakeRunner struct {
	mu      sync.Mutex
	raw     []map[string]interface{}
	reqIDs  []string
	outcome func(raw map[string]interface{}) *pipeline.Outcome
}

func (f *fakeRunner) Run(ctx context.Context, raw map[string]interface{}) *pipeline.Outcome {
	f.mu.Lock()
	f.raw = append(f.raw, raw)
	f.reqIDs = append(f.reqIDs, pipeline.RequestIDFromContext(ctx))
	f.mu.Unlock()
	return f.outcome(raw)
}

func (f *fakeRunner) last() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.raw) == 0 {
		return nil
	}
	return f.raw[len(f.raw)-1]
}

func sentOutcome(map[string]interface{}) *pipeline.Outcome {
	return &pipeline.Outcome{
		State:   pipeline.StateSent,
		Input:   &models.AssessmentInput{ReportID: "BC-2025-1741014245000"},
		Receipt: &sendreport.Receipt{MessageID: "<id@mg>"},
	}
}

var fixedNow = time.Date(2025, 3, 3, 15, 4, 5, 123e6, time.UTC)

func newTestServer(t *testing.T, r *fakeRunner) http.Handler {
	t.Helper()
	srv, err := NewServer(ServerDependencies{
		Logger:   logger.NewTestLogger(t),
		Pipeline: r,
		Gatherer: prometheus.NewRegistry(),
		Clock:    func() time.Time { return fixedNow },
	}, Config{MaxBodyBytes: 1 << 16})
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGenerateReport_Success(t *testing.T) {
	r := &fakeRunner{outcome: sentOutcome}
	h := newTestServer(t, r)

	rec := do(t, h, http.MethodPost, "/generate-report", "application/json",
		`{"clientName":"Jane","companyName":"Acme","recipientEmail":"jane@acme.com","scores":{"strategy":4,"tools":3,"people":2,"data":2,"ethics":1}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, SuccessMessage, body["message"])
	assert.Equal(t, "BC-2025-1741014245000", body["reportId"])
	assert.Equal(t, "2025-03-03T15:04:05.123Z", body["timestamp"])

	raw := r.last()
	assert.Equal(t, "Jane", raw["clientName"])
	assert.Equal(t, map[string]interface{}{"strategy": 4.0, "tools": 3.0, "people": 2.0, "data": 2.0, "ethics": 1.0}, raw["scores"])
	assert.Equal(t, rec.Header().Get(HeaderRequestID), r.reqIDs[0])
}

func TestGenerateReport_KeepsCallerRequestID(t *testing.T) {
	r := &fakeRunner{outcome: sentOutcome}
	h := newTestServer(t, r)

	req := httptest.NewRequest(http.MethodPost, "/generate-report", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRequestID, "zap-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "zap-123", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "zap-123", r.reqIDs[0])
}

func TestGenerateReport_FormBody(t *testing.T) {
	r := &fakeRunner{outcome: sentOutcome}
	h := newTestServer(t, r)

	form := url.Values{}
	form.Set("clientName", "Jane")
	form.Set("scores[strategy]", "4")
	form.Set("scores[tools]", "3")
	form.Add("tailoredRecommendations[]", "Start small")
	form.Add("tailoredRecommendations[]", "Train people")

	rec := do(t, h, http.MethodPost, "/generate-report", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	raw := r.last()
	assert.Equal(t, "Jane", raw["clientName"])
	assert.Equal(t, map[string]interface{}{"strategy": "4", "tools": "3"}, raw["scores"])
	assert.Equal(t, []interface{}{"Start small", "Train people"}, raw["tailoredRecommendations"])
}

func TestGenerateReport_VendorJSONMediaType(t *testing.T) {
	r := &fakeRunner{outcome: sentOutcome}
	h := newTestServer(t, r)

	rec := do(t, h, http.MethodPost, "/generate-report", "application/vnd.zapier+json; charset=utf-8", `{"clientName":"Jane"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane", r.last()["clientName"])
}

func TestGenerateReport_UnknownMediaTypeIsEmptySubmission(t *testing.T) {
	r := &fakeRunner{outcome: sentOutcome}
	h := newTestServer(t, r)

	do(t, h, http.MethodPost, "/generate-report", "text/plain", `clientName=Jane`)
	assert.Empty(t, r.last())
}

func TestGenerateReport_ValidationFailure(t *testing.T) {
	received := validateassessment.Received{
		ClientName:  true,
		CompanyName: true,
		Scores:      models.ScoreSet{Strategy: 4, Tools: 3},
	}
	failure := &validation.Failure{
		Checks:   []validation.ValidationError{{Field: "recipientEmail", Message: "is required", Code: "REQUIRED_FIELD_MISSING"}},
		Received: received,
	}
	r := &fakeRunner{outcome: func(map[string]interface{}) *pipeline.Outcome {
		return &pipeline.Outcome{
			State:       pipeline.StateFailed,
			FailedStage: validateassessment.StageName,
			Err:         errors.NewValidationFailedError(failure.Error()),
			Failure:     failure,
		}
	}}
	h := newTestServer(t, r)

	rec := do(t, h, http.MethodPost, "/generate-report", "application/json", `{"clientName":"Jane","companyName":"Acme"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing required fields or invalid scores", body["error"])
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	checks := body["failedChecks"].([]interface{})
	require.Len(t, checks, 1)
	assert.Equal(t, "recipientEmail", checks[0].(map[string]interface{})["field"])

	got := body["received"].(map[string]interface{})
	assert.Equal(t, true, got["clientName"])
	assert.Equal(t, false, got["recipientEmail"])
	assert.Equal(t, 4.0, got["scores"].(map[string]interface{})["strategy"])
}

func TestGenerateReport_InvalidBody(t *testing.T) {
	r := &fakeRunner{outcome: sentOutcome}
	h := newTestServer(t, r)

	for _, body := range []string{`{"clientName":`, `[1,2,3]`, `{} {}`} {
		rec := do(t, h, http.MethodPost, "/generate-report", "application/json", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		resp := decode(t, rec)
		assert.Equal(t, "INVALID_REQUEST_BODY", resp["code"])
		assert.Equal(t, false, resp["success"])
	}
	assert.Nil(t, r.last())
}

func TestGenerateReport_BodyTooLarge(t *testing.T) {
	r := &fakeRunner{outcome: sentOutcome}
	h := newTestServer(t, r)

	big := `{"clientName":"` + strings.Repeat("x", 1<<17) + `"}`
	rec := do(t, h, http.MethodPost, "/generate-report", "application/json", big)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "exceeds")
	assert.Nil(t, r.last())
}

func TestGenerateReport_CollaboratorFailures(t *testing.T) {
	tests := []struct {
		name   string
		stage  string
		err    *errors.StandardError
		status int
	}{
		{"render timeout", renderdocument.StageName, errors.NewRenderTimeoutError(time.Second, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"render failed", renderdocument.StageName, errors.NewRenderFailedError(stderrors.New("chrome exited at 0xdead")), http.StatusInternalServerError},
		{"send timeout", sendreport.StageName, errors.NewSendTimeoutError("mailgun", time.Second, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"send failed", sendreport.StageName, errors.NewSendFailedError("mailgun", stderrors.New("401 Forbidden key-abc")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{outcome: func(map[string]interface{}) *pipeline.Outcome {
				return &pipeline.Outcome{State: pipeline.StateFailed, FailedStage: tt.stage, Err: tt.err}
			}}
			rec := do(t, newTestServer(t, r), http.MethodPost, "/generate-report", "application/json", `{}`)

			require.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Failed to generate report", body["error"])
			assert.Equal(t, string(tt.err.Code), body["code"])
			assert.Equal(t, tt.stage, body["stage"])
			assert.NotContains(t, rec.Body.String(), "0xdead")
			assert.NotContains(t, rec.Body.String(), "key-abc")
		})
	}
}

func TestGenerateReport_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &fakeRunner{outcome: sentOutcome})
	rec := do(t, h, http.MethodGet, "/generate-report", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndex(t *testing.T) {
	h := newTestServer(t, &fakeRunner{outcome: sentOutcome})
	rec := do(t, h, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, ServiceStatus, body["status"])
	assert.Equal(t, "2025-03-03T15:04:05.123Z", body["timestamp"])
	endpoints := body["endpoints"].(map[string]interface{})
	assert.Equal(t, "GET /", endpoints["health"])
	assert.Equal(t, "POST /generate-report", endpoints["generateReport"])
}

func TestHealthAndReady(t *testing.T) {
	h := newTestServer(t, &fakeRunner{outcome: sentOutcome})

	rec := do(t, h, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = do(t, h, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode(t, rec)["status"])

	srv, err := NewServer(ServerDependencies{
		Pipeline: &fakeRunner{outcome: sentOutcome},
		Ready:    func(context.Context) error { return stderrors.New("chrome missing") },
	}, Config{})
	require.NoError(t, err)
	rec = do(t, srv.Handler(), http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "api_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv, err := NewServer(ServerDependencies{Pipeline: &fakeRunner{outcome: sentOutcome}, Gatherer: reg}, Config{})
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_test_total 1")
}

func TestRecoversFromPanic(t *testing.T) {
	r := &fakeRunner{outcome: func(map[string]interface{}) *pipeline.Outcome {
		panic("boom")
	}}
	rec := do(t, newTestServer(t, r), http.MethodPost, "/generate-report", "application/json", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewServer_RequiresPipeline(t *testing.T) {
	_, err := NewServer(ServerDependencies{}, Config{})
	assert.Error(t, err)
}

func TestGenerateReport_DebugLogRedactsCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv, err := NewServer(ServerDependencies{
		Logger:   logger.NewZapAdapter(zap.New(core)),
		Pipeline: &fakeRunner{outcome: sentOutcome},
		Gatherer: prometheus.NewRegistry(),
		Clock:    func() time.Time { return fixedNow },
	}, Config{MaxBodyBytes: 1 << 16})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/generate-report", strings.NewReader(`{"clientName":"Jane"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret-token")
	req.Header.Set("Cookie", "session=s3cret-cookie")
	req.Header.Set("X-Api-Key", "s3cret-key")
	req.Header.Set("User-Agent", "Zapier")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("Report request received").All()
	require.Len(t, entries, 1)
	headers, ok := entries[0].ContextMap()["headers"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, redacted, headers["Authorization"])
	assert.Equal(t, redacted, headers["Cookie"])
	assert.Equal(t, redacted, headers["X-Api-Key"])
	assert.Equal(t, "Zapier", headers["User-Agent"])

	for _, e := range logs.All() {
		for _, v := range e.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), "s3cret")
		}
	}
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Add("Proxy-Authorization", "Basic abc")
	h.Add("X-Auth-Token", "tok")
	h.Add("Accept", "text/html")
	h.Add("Accept", "application/json")

	got := redactHeaders(h)
	assert.Equal(t, map[string]string{
		"Proxy-Authorization": redacted,
		"X-Auth-Token":        redacted,
		"Accept":              "text/html, application/json",
	}, got)
	assert.Equal(t, "Basic abc", h.Get("Proxy-Authorization"))
}
