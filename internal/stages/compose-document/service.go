package composedocument

import (
	"fmt"
	"html/template"
	"math"
	"strconv"

	"maturity-report/internal/models"
	computemetrics "maturity-report/internal/stages/compute-metrics"
)

const StageName = "compose-document"

const documentTitle = "AI Maturity Assessment Report"

// Compose assembles the five report pages. It is pure and cannot fail.
func Compose(input *models.AssessmentInput, metrics computemetrics.Metrics) *Document {
	return &Document{
		Title:    documentTitle,
		ReportID: input.ReportID,
		Pages: []Page{
			{Number: 1, Sections: overviewPage(input, metrics)},
			{Number: 2, Sections: capabilityPage(input.Scores, metrics)},
			{Number: 3, Sections: analysisPage(input.Scores, metrics)},
			{Number: 4, Sections: insightsPage(input, metrics)},
			{Number: 5, Sections: contactPage()},
		},
	}
}

func overviewPage(input *models.AssessmentInput, m computemetrics.Metrics) []Section {
	return []Section{
		CoverHeader{
			Title:    models.BrandName,
			Subtitle: models.ReportTitle,
			Tagline:  models.BrandTagline,
		},
		SectionHeader{Title: "📋 Report Details"},
		ReportDetails{
			PreparedFor:    input.ClientName,
			Company:        input.CompanyName,
			ReportID:       input.ReportID,
			Industry:       input.Industry,
			AssessmentDate: input.AssessmentDate,
		},
		SectionHeader{Title: "📈 Your AI Maturity Snapshot"},
		ScoreSnapshot{Panels: []SnapshotPanel{
			{
				Heading:     "YOUR PERCEIVED AI MATURITY",
				Score:       m.OverallScore,
				Level:       m.OverallLevel,
				Description: "Your team believes you're making meaningful progress in AI adoption.",
			},
			{
				Heading:     "DATA-DRIVEN ASSESSMENT",
				Score:       m.OverallScore,
				Level:       m.OverallLevel,
				Description: "Your assessment reveals solid foundations with clear pathways for ethical advancement.",
			},
		}},
		KeyFindings{
			Strongest:         m.Strongest.Label(),
			GrowthOpportunity: m.Weakest.Label(),
			CurrentPhase:      m.OverallLevel,
		},
	}
}

func capabilityPage(scores models.ScoreSet, m computemetrics.Metrics) []Section {
	panels := make([]CapabilityPanel, 0, len(models.Categories))
	for _, c := range models.Categories {
		info := c.Info()
		pct := IndicatorPercent(scores.Get(c))
		panels = append(panels, CapabilityPanel{
			Category:         c,
			ScoreText:        FormatScore(scores.Get(c)),
			Label:            info.Label,
			Icon:             info.Icon,
			Level:            m.Level(c),
			IndicatorPercent: pct,
			TextStyle:        template.CSS("color: " + info.TextColor),
			BarStyle:         template.CSS(fmt.Sprintf("width: %s%%; background: %s", formatNumber(pct), info.BarColor)),
		})
	}
	return []Section{
		SectionHeader{Title: "📊 Your AI Capability Profile"},
		CapabilityGrid{Panels: panels},
	}
}

func analysisPage(scores models.ScoreSet, m computemetrics.Metrics) []Section {
	sections := []Section{SectionHeader{Title: "🔍 Detailed Score Analysis"}}
	for _, c := range models.Categories {
		info := c.Info()
		level := m.Level(c)
		sections = append(sections, AnalysisPanel{
			Category:  c,
			Heading:   fmt.Sprintf("%s %s: %s/5 – %s", info.Icon, info.Label, FormatScore(scores.Get(c)), level),
			Narrative: fmt.Sprintf(info.Narrative, level),
			Benchmark: info.Benchmark,
			Style:     template.CSS("border-left-color: " + info.BarColor),
		})
	}
	return append(sections, IndustryInsights{Text: models.IndustrySources})
}

func insightsPage(input *models.AssessmentInput, m computemetrics.Metrics) []Section {
	crossRef := fmt.Sprintf(
		"The gap between your perceived %s and actual %s maturity highlights opportunities to drive strategic change. "+
			"Your %s %s rating suggests your team is ready to leverage AI tools effectively, "+
			"while your %s %s score indicates clear pathways for technical improvement.",
		m.OverallLevel, m.OverallLevel,
		m.Level(models.CategoryPeople), models.CategoryPeople.Label(),
		m.Level(models.CategoryTools), models.CategoryTools.Label(),
	)

	return []Section{
		SectionHeader{Title: "💡 Your Personalized Insights"},
		Priorities{
			Heading:       "Your AI Priorities & Challenges",
			Intro:         "Based on your assessment responses, here's what you told us:",
			Opportunities: input.TopOpportunities,
			Challenges:    input.TopChallenges,
		},
		AnalysisNarrative{
			Heading:        "AI-Powered Analysis",
			Analysis:       input.AIPoweredAnalysis,
			CrossReference: crossRef,
		},
		Recommendations{
			Heading: "Tailored Recommendations",
			Items:   append([]string(nil), input.TailoredRecommendations...),
		},
	}
}

func contactPage() []Section {
	return []Section{
		CallToAction{
			Heading:    "🚀 Ready to Accelerate Your AI Journey?",
			Pitch:      "Your assessment reveals significant potential, but also complex challenges that require strategic navigation.",
			Button:     models.BookingOffer,
			BookingURL: models.BookingURL,
			ListIntro:  "Get personalized guidance from Brave Concept AI experts who can help you:",
			Items: []string{
				"Develop a clear 90-day AI implementation plan",
				"Navigate the specific challenges you identified",
				"Leverage your " + models.CategoryPeople.Label() + " to drive quick wins",
				"Address your " + models.CategoryTools.Label() + " systematically",
			},
		},
		ContactBlock{
			Heading:   "Contact Information",
			Email:     models.ContactEmail,
			Website:   models.ContactWeb,
			Assistant: models.ContactBot,
			Phone:     models.ContactPhone,
			Footer:    "Ready to get started? Schedule your complimentary consultation above.",
		},
	}
}

// IndicatorPercent is score/5 as a percentage, clamped to [0,100].
func IndicatorPercent(score float64) float64 {
	return math.Max(0, math.Min(100, score*20))
}

// FormatScore prints a score without trailing zeros: 4, 3.5, 2.25.
func FormatScore(score float64) string {
	return formatNumber(score)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
