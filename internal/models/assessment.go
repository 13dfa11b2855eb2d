// internal/models/assessment.go
package models

// AssessmentInput is a validated assessment with every optional field
// defaulted. It is built once per request and never mutated afterwards.
type AssessmentInput struct {
	ClientName              string   `json:"clientName"`
	CompanyName             string   `json:"companyName"`
	Industry                string   `json:"industry"`
	ReportID                string   `json:"reportId"`
	AssessmentDate          string   `json:"assessmentDate"`
	RecipientEmail          string   `json:"recipientEmail"`
	Scores                  ScoreSet `json:"scores"`
	AIPoweredAnalysis       string   `json:"aiPoweredAnalysis"`
	TailoredRecommendations []string `json:"tailoredRecommendations"`
	TopOpportunities        string   `json:"topOpportunities"`
	TopChallenges           string   `json:"topChallenges"`
}

// ScoreSet holds the coerced score of every category.
type ScoreSet struct {
	Strategy float64 `json:"strategy"`
	Tools    float64 `json:"tools"`
	People   float64 `json:"people"`
	Data     float64 `json:"data"`
	Ethics   float64 `json:"ethics"`
}

// Get returns the score of c, or 0 for an unknown category.
func (s ScoreSet) Get(c Category) float64 {
	switch c {
	case CategoryStrategy:
		return s.Strategy
	case CategoryTools:
		return s.Tools
	case CategoryPeople:
		return s.People
	case CategoryData:
		return s.Data
	case CategoryEthics:
		return s.Ethics
	}
	return 0
}

// Set returns a copy of s with the score of c replaced.
func (s ScoreSet) Set(c Category, v float64) ScoreSet {
	switch c {
	case CategoryStrategy:
		s.Strategy = v
	case CategoryTools:
		s.Tools = v
	case CategoryPeople:
		s.People = v
	case CategoryData:
		s.Data = v
	case CategoryEthics:
		s.Ethics = v
	}
	return s
}
