package validateassessment

import (
	"time"

	"maturity-report/internal/common/logger"
	"maturity-report/internal/models"
)

// Field names of the inbound assessment document.
const (
	FieldClientName              = "clientName"
	FieldCompanyName             = "companyName"
	FieldIndustry                = "industry"
	FieldReportID                = "reportId"
	FieldAssessmentDate          = "assessmentDate"
	FieldRecipientEmail          = "recipientEmail"
	FieldScores                  = "scores"
	FieldAIPoweredAnalysis       = "aiPoweredAnalysis"
	FieldTailoredRecommendations = "tailoredRecommendations"
	FieldTopOpportunities        = "topOpportunities"
	FieldTopChallenges           = "topChallenges"
)

// Fallbacks for optional fields.
const (
	DefaultIndustry          = "Professional Services"
	DefaultAIPoweredAnalysis = "Your organization shows strong potential for AI advancement with strategic implementation."
	DefaultTopOpportunities  = "Process automation and decision support"
	DefaultTopChallenges     = "Implementation planning and change management"
	AssessmentDateLayout     = "Monday, January 2, 2006"
)

// DefaultRecommendations is used when no usable recommendation was submitted.
var DefaultRecommendations = []string{
	"Focus on building your data foundation first",
	"Start with pilot projects in high-impact areas",
	"Develop clear AI governance frameworks",
}

// Received echoes what the validator saw, returned with a rejection.
type Received struct {
	ClientName     bool            `json:"clientName"`
	CompanyName    bool            `json:"companyName"`
	RecipientEmail bool            `json:"recipientEmail"`
	Scores         models.ScoreSet `json:"scores"`
}

type Result struct {
	Input    *models.AssessmentInput
	Received Received
	// Defaulted names the optional fields that were filled in.
	Defaulted []string
}

type ServiceDependencies struct {
	Logger logger.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}
