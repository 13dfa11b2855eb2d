package validateassessment

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/validation"
	"maturity-report/internal/models"
)

const StageName = "validate-assessment"

// Failed check codes.
const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidScore         = "INVALID_SCORE"
	CodeInvalidEmail         = "INVALID_EMAIL"
)

// leadingNumber matches the numeric prefix a lenient float parse accepts.
var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

type Service struct {
	config *Config
	logger logger.Logger
	schema *validation.Schema
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid validate-assessment config: %w", err)
	}

	schema, err := validation.Compile(assessmentSchema())
	if err != nil {
		return nil, err
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Service{
		config: config,
		logger: log,
		schema: schema,
		now:    clock,
	}, nil
}

// Validate checks a decoded submission and returns the defaulted input. A
// rejected submission yields a *validation.Failure carrying every failed
// check and the Received echo.
func (s *Service) Validate(raw map[string]interface{}) (*Result, error) {
	raw = normalizeSubmission(raw)

	if shape := s.schema.Validate(raw); !shape.Valid {
		s.logger.Warn("Submission does not match the assessment schema", map[string]interface{}{
			"errors": shape.Errors,
		})
	}
	var checks []validation.ValidationError

	clientName := stringField(raw, FieldClientName)
	companyName := stringField(raw, FieldCompanyName)
	recipientEmail := stringField(raw, FieldRecipientEmail)
	scores := coerceScores(raw[FieldScores])

	received := Received{
		ClientName:     clientName != "",
		CompanyName:    companyName != "",
		RecipientEmail: recipientEmail != "",
		Scores:         scores,
	}

	for _, req := range []struct {
		field string
		value string
	}{
		{FieldClientName, clientName},
		{FieldCompanyName, companyName},
		{FieldRecipientEmail, recipientEmail},
	} {
		if req.value == "" {
			checks = append(checks, validation.ValidationError{
				Field:   req.field,
				Message: "is required",
				Code:    CodeRequiredFieldMissing,
			})
			continue
		}
		if req.field == FieldRecipientEmail {
			if _, err := mail.ParseAddress(req.value); err != nil {
				checks = append(checks, validation.ValidationError{
					Field:   req.field,
					Message: "must be a single valid email address",
					Code:    CodeInvalidEmail,
				})
			}
		}
	}

	// A zero strategy score is treated as an unanswered assessment.
	if scores.Strategy == 0 {
		checks = append(checks, validation.ValidationError{
			Field:   FieldScores + "." + models.CategoryStrategy.String(),
			Message: "must be a non-zero number",
			Code:    CodeInvalidScore,
		})
	}

	if len(checks) > 0 {
		failure := &validation.Failure{Checks: checks, Received: received}
		s.logger.Warn("Assessment rejected", map[string]interface{}{
			"failedFields": failure.Fields(),
			"received":     received,
		})
		return nil, failure
	}

	if !validation.ValidateEmail(recipientEmail) {
		s.logger.Warn("Recipient email looks malformed", map[string]interface{}{
			"recipientEmail": recipientEmail,
		})
	}

	now := s.now()
	var defaulted []string
	orDefault := func(field, fallback string) string {
		if v := stringField(raw, field); v != "" {
			return v
		}
		defaulted = append(defaulted, field)
		return fallback
	}

	input := &models.AssessmentInput{
		ClientName:        clientName,
		CompanyName:       companyName,
		RecipientEmail:    recipientEmail,
		Scores:            scores,
		Industry:          orDefault(FieldIndustry, DefaultIndustry),
		ReportID:          orDefault(FieldReportID, s.reportID(now)),
		AssessmentDate:    orDefault(FieldAssessmentDate, now.In(s.config.Location).Format(AssessmentDateLayout)),
		AIPoweredAnalysis: orDefault(FieldAIPoweredAnalysis, DefaultAIPoweredAnalysis),
		TopOpportunities:  orDefault(FieldTopOpportunities, DefaultTopOpportunities),
		TopChallenges:     orDefault(FieldTopChallenges, DefaultTopChallenges),
	}

	input.TailoredRecommendations = recommendations(raw[FieldTailoredRecommendations])
	if len(input.TailoredRecommendations) == 0 {
		input.TailoredRecommendations = append([]string(nil), DefaultRecommendations...)
		defaulted = append(defaulted, FieldTailoredRecommendations)
	}

	s.logger.Debug("Assessment validated", map[string]interface{}{
		"reportId":  input.ReportID,
		"defaulted": defaulted,
		"scores":    scores,
	})

	return &Result{
		Input:     input,
		Received:  received,
		Defaulted: defaulted,
	}, nil
}

// reportID builds <prefix>-<year>-<unix millis>.
func (s *Service) reportID(now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", s.config.IDPrefix, now.Year(), now.UnixMilli())
}

func stringField(raw map[string]interface{}, key string) string {
	v, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func coerceScores(v interface{}) models.ScoreSet {
	var scores models.ScoreSet
	m, ok := v.(map[string]interface{})
	if !ok {
		return scores
	}
	for _, c := range models.Categories {
		scores = scores.Set(c, CoerceScore(m[c.String()]))
	}
	return scores
}

// CoerceScore turns a raw score into a finite number. Numbers pass through,
// strings are read up to the end of their leading numeric prefix, and
// everything else becomes 0.
func CoerceScore(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		f = parseLeadingFloat(t.String())
	case string:
		f = parseLeadingFloat(t)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseLeadingFloat(s string) float64 {
	match := leadingNumber.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return f
}

// recommendations accepts a list of strings or a newline separated string.
// Blank entries are dropped.
func recommendations(v interface{}) []string {
	var items []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case []string:
		items = t
	case string:
		items = strings.Split(t, "\n")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
