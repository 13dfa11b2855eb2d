package validateassessment

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maturity-report/internal/common/config"
	"maturity-report/internal/common/logger"
	"maturity-report/internal/common/validation"
	"maturity-report/internal/models"
)

var fixedNow = time.Date(2025, time.March, 3, 15, 4, 5, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(ServiceDependencies{
		Logger: logger.NewTestLogger(t),
		Clock:  func() time.Time { return fixedNow },
	}, DefaultConfig())
	require.NoError(t, err)
	return svc
}

func validRaw() map[string]interface{} {
	return map[string]interface{}{
		"clientName":     "Jane",
		"companyName":    "Acme",
		"recipientEmail": "jane@acme.com",
		"scores": map[string]interface{}{
			"strategy": 4.0,
			"tools":    "3",
			"people":   "2",
			"data":     2.0,
			"ethics":   "1",
		},
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Validate(validRaw())
	require.NoError(t, err)

	in := result.Input
	assert.Equal(t, "Jane", in.ClientName)
	assert.Equal(t, "Acme", in.CompanyName)
	assert.Equal(t, DefaultIndustry, in.Industry)
	assert.Equal(t, "BC-2025-1741014245000", in.ReportID)
	assert.Equal(t, "Monday, March 3, 2025", in.AssessmentDate)
	assert.Equal(t, DefaultAIPoweredAnalysis, in.AIPoweredAnalysis)
	assert.Equal(t, DefaultTopOpportunities, in.TopOpportunities)
	assert.Equal(t, DefaultTopChallenges, in.TopChallenges)
	assert.Equal(t, DefaultRecommendations, in.TailoredRecommendations)
	assert.Equal(t, models.ScoreSet{Strategy: 4, Tools: 3, People: 2, Data: 2, Ethics: 1}, in.Scores)

	assert.ElementsMatch(t, []string{
		FieldIndustry, FieldReportID, FieldAssessmentDate, FieldAIPoweredAnalysis,
		FieldTopOpportunities, FieldTopChallenges, FieldTailoredRecommendations,
	}, result.Defaulted)
}

func TestValidate_KeepsSuppliedValues(t *testing.T) {
	svc := newTestService(t)
	raw := validRaw()
	raw["industry"] = "Healthcare"
	raw["reportId"] = "R-1"
	raw["assessmentDate"] = "June 1, 2025"
	raw["aiPoweredAnalysis"] = "Custom analysis"
	raw["topOpportunities"] = "Scheduling"
	raw["topChallenges"] = "Budget"
	raw["tailoredRecommendations"] = []interface{}{"  First  ", "", "Second", nil}

	result, err := svc.Validate(raw)
	require.NoError(t, err)

	in := result.Input
	assert.Equal(t, "Healthcare", in.Industry)
	assert.Equal(t, "R-1", in.ReportID)
	assert.Equal(t, "June 1, 2025", in.AssessmentDate)
	assert.Equal(t, "Custom analysis", in.AIPoweredAnalysis)
	assert.Equal(t, []string{"First", "Second"}, in.TailoredRecommendations)
	assert.Empty(t, result.Defaulted)
}

func TestValidate_RecommendationVariants(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  []string
	}{
		{name: "absent", value: nil, want: DefaultRecommendations},
		{name: "empty list", value: []interface{}{}, want: DefaultRecommendations},
		{name: "only blanks", value: []interface{}{" ", ""}, want: DefaultRecommendations},
		{name: "newline separated string", value: "Audit data\n\nTrain staff\n", want: []string{"Audit data", "Train staff"}},
		{name: "single string", value: "Pilot one tool", want: []string{"Pilot one tool"}},
	}

	svc := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			if tt.value != nil {
				raw["tailoredRecommendations"] = tt.value
			}
			result, err := svc.Validate(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Input.TailoredRecommendations)
		})
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(map[string]interface{})
		wantFields []string
	}{
		{
			name:       "missing recipient email",
			mutate:     func(r map[string]interface{}) { delete(r, "recipientEmail") },
			wantFields: []string{"recipientEmail"},
		},
		{
			name:       "blank client name",
			mutate:     func(r map[string]interface{}) { r["clientName"] = "   " },
			wantFields: []string{"clientName"},
		},
		{
			name: "zero strategy score",
			mutate: func(r map[string]interface{}) {
				r["scores"].(map[string]interface{})["strategy"] = "0"
			},
			wantFields: []string{"scores.strategy"},
		},
		{
			name:       "missing scores",
			mutate:     func(r map[string]interface{}) { delete(r, "scores") },
			wantFields: []string{"scores.strategy"},
		},
		{
			name:       "company name object",
			mutate:     func(r map[string]interface{}) { r["companyName"] = map[string]interface{}{"a": "b"} },
			wantFields: []string{"companyName"},
		},
		{
			name:       "client name false",
			mutate:     func(r map[string]interface{}) { r["clientName"] = false },
			wantFields: []string{"clientName"},
		},
		{
			name:       "recipient email without at sign",
			mutate:     func(r map[string]interface{}) { r["recipientEmail"] = "jane.acme.com" },
			wantFields: []string{"recipientEmail"},
		},
		{
			name: "recipient email carrying a header",
			mutate: func(r map[string]interface{}) {
				r["recipientEmail"] = "jane@acme.com\r\nBcc: attacker@evil.example"
			},
			wantFields: []string{"recipientEmail"},
		},
		{
			name:       "two recipients",
			mutate:     func(r map[string]interface{}) { r["recipientEmail"] = "jane@acme.com, bob@acme.com" },
			wantFields: []string{"recipientEmail"},
		},
		{
			name: "everything missing",
			mutate: func(r map[string]interface{}) {
				for k := range r {
					delete(r, k)
				}
			},
			wantFields: []string{"clientName", "companyName", "recipientEmail", "scores.strategy"},
		},
	}

	svc := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)

			result, err := svc.Validate(raw)
			require.Error(t, err)
			assert.Nil(t, result)

			var failure *validation.Failure
			require.ErrorAs(t, err, &failure)
			assert.Equal(t, tt.wantFields, failure.Fields())
			assert.IsType(t, Received{}, failure.Received)
		})
	}
}

func TestValidate_InvalidEmailCode(t *testing.T) {
	raw := validRaw()
	raw["recipientEmail"] = "jane@acme.com\nBcc: attacker@evil.example"

	_, err := newTestService(t).Validate(raw)
	var failure *validation.Failure
	require.ErrorAs(t, err, &failure)
	require.Len(t, failure.Checks, 1)
	assert.Equal(t, CodeInvalidEmail, failure.Checks[0].Code)
	assert.True(t, failure.Received.(Received).RecipientEmail)
}

func TestValidate_AcceptsNamedRecipient(t *testing.T) {
	raw := validRaw()
	raw["recipientEmail"] = "Jane Doe <jane@acme.com>"

	result, err := newTestService(t).Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe <jane@acme.com>", result.Input.RecipientEmail)
}

func TestValidate_LenientOptionalTypes(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		value  interface{}
		assert func(t *testing.T, r *Result)
	}{
		{"numeric report id", "reportId", 12345.0, func(t *testing.T, r *Result) {
			assert.Equal(t, "12345", r.Input.ReportID)
		}},
		{"json number report id", "reportId", json.Number("987"), func(t *testing.T, r *Result) {
			assert.Equal(t, "987", r.Input.ReportID)
		}},
		{"numeric industry", "industry", 7.0, func(t *testing.T, r *Result) {
			assert.Equal(t, "7", r.Input.Industry)
		}},
		{"zero industry falls back", "industry", 0.0, func(t *testing.T, r *Result) {
			assert.Equal(t, DefaultIndustry, r.Input.Industry)
		}},
		{"object analysis falls back", "aiPoweredAnalysis", map[string]interface{}{"x": 1.0}, func(t *testing.T, r *Result) {
			assert.Equal(t, DefaultAIPoweredAnalysis, r.Input.AIPoweredAnalysis)
		}},
		{"list date falls back", "assessmentDate", []interface{}{"a"}, func(t *testing.T, r *Result) {
			assert.Equal(t, "Monday, March 3, 2025", r.Input.AssessmentDate)
		}},
		{"object recommendations fall back", "tailoredRecommendations", map[string]interface{}{"a": "b"}, func(t *testing.T, r *Result) {
			assert.Equal(t, DefaultRecommendations, r.Input.TailoredRecommendations)
		}},
		{"numeric recommendation items", "tailoredRecommendations", []interface{}{1.0, "Train staff", map[string]interface{}{}}, func(t *testing.T, r *Result) {
			assert.Equal(t, []string{"1", "Train staff"}, r.Input.TailoredRecommendations)
		}},
		{"scalar scores treated as missing", "scores", "4", nil},
		{"numeric client name", "clientName", 42.0, func(t *testing.T, r *Result) {
			assert.Equal(t, "42", r.Input.ClientName)
		}},
	}

	svc := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw[tt.field] = tt.value

			result, err := svc.Validate(raw)
			if tt.assert == nil {
				var failure *validation.Failure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, []string{"scores.strategy"}, failure.Fields())
				return
			}
			require.NoError(t, err)
			tt.assert(t, result)
		})
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	raw := validRaw()
	raw["reportId"] = 12345.0

	_, err := newTestService(t).Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, 12345.0, raw["reportId"])
}

func TestValidate_ReceivedEcho(t *testing.T) {
	svc := newTestService(t)
	raw := validRaw()
	delete(raw, "recipientEmail")
	raw["scores"] = map[string]interface{}{"strategy": "abc", "tools": "4.5"}

	_, err := svc.Validate(raw)
	var failure *validation.Failure
	require.ErrorAs(t, err, &failure)

	received := failure.Received.(Received)
	assert.True(t, received.ClientName)
	assert.True(t, received.CompanyName)
	assert.False(t, received.RecipientEmail)
	assert.Equal(t, models.ScoreSet{Tools: 4.5}, received.Scores)

	body, err := json.Marshal(received)
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientName":true,"companyName":true,"recipientEmail":false,
		"scores":{"strategy":0,"tools":4.5,"people":0,"data":0,"ethics":0}}`, string(body))
}

func TestCoerceScore(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
	}{
		{4.0, 4},
		{3, 3},
		{"3.5", 3.5},
		{" 4", 4},
		{"2abc", 2},
		{".5", 0.5},
		{"-1", -1},
		{"1e1", 10},
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{true, 0},
		{"Infinity", 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{"1e400", 0},
		{json.Number("2.5"), 2.5},
		{map[string]interface{}{}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceScore(tt.in), "input %#v", tt.in)
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{IDPrefix: "B-C", Location: time.UTC}).Validate())
	assert.Error(t, (&Config{IDPrefix: "BC"}).Validate())

	_, err := NewService(ServiceDependencies{}, &Config{IDPrefix: ""})
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(config.ReportConfig{IDPrefix: "ACME", Timezone: "America/New_York"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", cfg.IDPrefix)
	assert.Equal(t, "America/New_York", cfg.Location.String())
	assert.NoError(t, cfg.Validate())

	_, err = NewConfig(config.ReportConfig{IDPrefix: "BC", Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestValidate_DateUsesConfiguredLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	svc, err := NewService(ServiceDependencies{
		Clock: func() time.Time { return time.Date(2025, time.March, 3, 20, 0, 0, 0, time.UTC) },
	}, &Config{IDPrefix: "ACME", Location: loc})
	require.NoError(t, err)

	result, err := svc.Validate(validRaw())
	require.NoError(t, err)
	assert.Equal(t, "Tuesday, March 4, 2025", result.Input.AssessmentDate)
	assert.Equal(t, "ACME-2025-1741032000000", result.Input.ReportID)
}
