package composedocument

import (
	"html/template"

	"maturity-report/internal/models"
	computemetrics "maturity-report/internal/stages/compute-metrics"
)

// SectionKind names a section layout. Each kind has a template of the same name.
type SectionKind string

const (
	KindCoverHeader       SectionKind = "cover-header"
	KindSectionHeader     SectionKind = "section-header"
	KindReportDetails     SectionKind = "report-details"
	KindScoreSnapshot     SectionKind = "score-snapshot"
	KindKeyFindings       SectionKind = "key-findings"
	KindCapabilityGrid    SectionKind = "capability-grid"
	KindAnalysisPanel     SectionKind = "analysis-panel"
	KindIndustryInsights  SectionKind = "industry-insights"
	KindPriorities        SectionKind = "priorities"
	KindAnalysisNarrative SectionKind = "analysis-narrative"
	KindRecommendations   SectionKind = "recommendations"
	KindCallToAction      SectionKind = "call-to-action"
	KindContactBlock      SectionKind = "contact-block"
)

type Section interface {
	Kind() SectionKind
}

// Document is the print-ready report. It is immutable once composed.
type Document struct {
	Title    string
	ReportID string
	Pages    []Page
}

type Page struct {
	Number   int
	Sections []Section
}

type CoverHeader struct {
	Title    string
	Subtitle string
	Tagline  string
}

type SectionHeader struct {
	Title string
}

type ReportDetails struct {
	PreparedFor    string
	Company        string
	ReportID       string
	Industry       string
	AssessmentDate string
}

type SnapshotPanel struct {
	Heading     string
	Score       int
	Level       computemetrics.Level
	Description string
}

type ScoreSnapshot struct {
	Panels []SnapshotPanel
}

type KeyFindings struct {
	Strongest         string
	GrowthOpportunity string
	CurrentPhase      computemetrics.Level
}

type CapabilityPanel struct {
	Category  models.Category
	ScoreText string
	Label     string
	Icon      string
	Level     computemetrics.Level
	// IndicatorPercent is the bar width, clamped to [0,100].
	IndicatorPercent float64
	TextStyle        template.CSS
	BarStyle         template.CSS
}

type CapabilityGrid struct {
	Panels []CapabilityPanel
}

type AnalysisPanel struct {
	Category  models.Category
	Heading   string
	Narrative string
	Benchmark string
	Style     template.CSS
}

type IndustryInsights struct {
	Text string
}

type Priorities struct {
	Heading       string
	Intro         string
	Opportunities string
	Challenges    string
}

type AnalysisNarrative struct {
	Heading        string
	Analysis       string
	CrossReference string
}

type Recommendations struct {
	Heading string
	Items   []string
}

type CallToAction struct {
	Heading    string
	Pitch      string
	Button     string
	BookingURL string
	ListIntro  string
	Items      []string
}

type ContactBlock struct {
	Heading   string
	Email     string
	Website   string
	Assistant string
	Phone     string
	Footer    string
}

func (CoverHeader) Kind() SectionKind       { return KindCoverHeader }
func (SectionHeader) Kind() SectionKind     { return KindSectionHeader }
func (ReportDetails) Kind() SectionKind     { return KindReportDetails }
func (ScoreSnapshot) Kind() SectionKind     { return KindScoreSnapshot }
func (KeyFindings) Kind() SectionKind       { return KindKeyFindings }
func (CapabilityGrid) Kind() SectionKind    { return KindCapabilityGrid }
func (AnalysisPanel) Kind() SectionKind     { return KindAnalysisPanel }
func (IndustryInsights) Kind() SectionKind  { return KindIndustryInsights }
func (Priorities) Kind() SectionKind        { return KindPriorities }
func (AnalysisNarrative) Kind() SectionKind { return KindAnalysisNarrative }
func (Recommendations) Kind() SectionKind   { return KindRecommendations }
func (CallToAction) Kind() SectionKind      { return KindCallToAction }
func (ContactBlock) Kind() SectionKind      { return KindContactBlock }
