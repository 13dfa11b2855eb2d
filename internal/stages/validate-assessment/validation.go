package validateassessment

import (
	"encoding/json"
	"math"
	"strconv"

	"maturity-report/internal/common/validation"
)

var nullableString = validation.Property{Type: []string{"string", "null"}}

// assessmentSchema describes a normalized submission. A mismatch is logged
// only; rejections come from the required-value and score rules.
func assessmentSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			FieldClientName:        nullableString,
			FieldCompanyName:       nullableString,
			FieldIndustry:          nullableString,
			FieldReportID:          nullableString,
			FieldAssessmentDate:    nullableString,
			FieldRecipientEmail:    nullableString,
			FieldAIPoweredAnalysis: nullableString,
			FieldTopOpportunities:  nullableString,
			FieldTopChallenges:     nullableString,
			FieldScores: {
				Type:        []string{"object", "null"},
				Description: "category to score, numbers or numeric strings",
			},
			FieldTailoredRecommendations: {
				AnyOf: []validation.Property{
					{Type: "array", Items: &validation.Property{Type: []string{"string", "null"}}},
					{Type: "string"},
					{Type: "null"},
				},
			},
		},
		AdditionalProperties: true,
	}
}

var textFields = []string{
	FieldClientName,
	FieldCompanyName,
	FieldIndustry,
	FieldReportID,
	FieldAssessmentDate,
	FieldRecipientEmail,
	FieldAIPoweredAnalysis,
	FieldTopOpportunities,
	FieldTopChallenges,
}

// normalizeSubmission returns a copy of raw in which text fields hold a
// string or nothing. Numbers and true are written out as text, zero and
// false count as not supplied, and objects or lists are dropped so the
// field falls back to its default. A non-object scores value is dropped
// and recommendation list items get the same treatment as text fields.
func normalizeSubmission(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	for _, field := range textFields {
		v, ok := out[field]
		if !ok || v == nil {
			continue
		}
		if s, ok := scalarText(v); ok {
			out[field] = s
		} else {
			delete(out, field)
		}
	}

	if v, ok := out[FieldScores]; ok && v != nil {
		if _, isObject := v.(map[string]interface{}); !isObject {
			delete(out, FieldScores)
		}
	}

	if v, ok := out[FieldTailoredRecommendations]; ok && v != nil {
		switch t := v.(type) {
		case []interface{}:
			items := make([]interface{}, 0, len(t))
			for _, item := range t {
				if s, ok := scalarText(item); ok && s != "" {
					items = append(items, s)
				}
			}
			out[FieldTailoredRecommendations] = items
		case []string:
			items := make([]interface{}, 0, len(t))
			for _, item := range t {
				items = append(items, item)
			}
			out[FieldTailoredRecommendations] = items
		default:
			if s, ok := scalarText(v); ok {
				out[FieldTailoredRecommendations] = s
			} else {
				delete(out, FieldTailoredRecommendations)
			}
		}
	}
	return out
}

// scalarText renders a JSON scalar as text. ok is false for objects, lists
// and nil.
func scalarText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if !t {
			return "", true
		}
		return "true", true
	case float64:
		if t == 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return "", true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		if t == 0 {
			return "", true
		}
		return strconv.Itoa(t), true
	case int64:
		if t == 0 {
			return "", true
		}
		return strconv.FormatInt(t, 10), true
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return "", true
		}
		return t.String(), true
	default:
		return "", false
	}
}
