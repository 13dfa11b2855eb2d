// internal/models/category.go
package models

// Category is one of the five fixed assessment dimensions.
type Category string

const (
	CategoryStrategy Category = "strategy"
	CategoryTools    Category = "tools"
	CategoryPeople   Category = "people"
	CategoryData     Category = "data"
	CategoryEthics   Category = "ethics"
)

// Categories is the report-wide category order. Tie-breaks, the capability
// grid and the analysis page all iterate in this order.
var Categories = []Category{
	CategoryStrategy,
	CategoryTools,
	CategoryPeople,
	CategoryData,
	CategoryEthics,
}

// CategoryInfo is the static presentation metadata of a category.
type CategoryInfo struct {
	Label     string
	Icon      string
	TextColor string
	BarColor  string
	// Narrative is a fmt pattern taking the category's maturity tier.
	Narrative string
	Benchmark string
}

var categoryTable = map[Category]CategoryInfo{
	CategoryStrategy: {
		Label:     "Strategy & Planning",
		Icon:      "🧠",
		TextColor: "#1e40af",
		BarColor:  "#3b82f6",
		Narrative: "At the %s stage, your organization is actively working to integrate AI into core business objectives and strategic planning processes.",
		Benchmark: "Research shows 39% of companies are in emerging phase, 31% developing, 22% expanding, and only 1% achieve strategic maturity. [McKinsey 2024]",
	},
	CategoryTools: {
		Label:     "Tools & Integration",
		Icon:      "🛠",
		TextColor: "#d97706",
		BarColor:  "#f59e0b",
		Narrative: "Your technical infrastructure rates as %s for AI implementation. This evaluates not just the tools you've adopted, but how seamlessly they work together.",
		Benchmark: "Only 22% of organizations have architecture ready to support AI workloads, despite 65% using AI regularly. Just 1% achieve mature integration. [Databricks 2024, McKinsey 2024]",
	},
	CategoryPeople: {
		Label:     "People & Skills",
		Icon:      "👥",
		TextColor: "#059669",
		BarColor:  "#10b981",
		Narrative: "Your workforce exhibits %s AI capability, indicating how prepared your team is to leverage AI tools effectively.",
		Benchmark: "70% of business leaders report skills gaps limiting growth, with only 12% of IT professionals actually possessing AI skills despite widespread adoption. [Springboard 2024, Deloitte 2024]",
	},
	CategoryData: {
		Label:     "Data Readiness",
		Icon:      "📊",
		TextColor: "#dc2626",
		BarColor:  "#ef4444",
		Narrative: "Your data foundation measures %s for AI applications. This critical dimension determines whether your information assets are sufficiently organized and accessible.",
		Benchmark: "96% of organizations experience data quality issues in AI projects, with only 18% having clear strategies. [Forrester/PwC 2024, McKinsey 2024]",
	},
	CategoryEthics: {
		Label:     "Ethics & Governance",
		Icon:      "🧭",
		TextColor: "#7c3aed",
		BarColor:  "#8b5cf6",
		Narrative: "Your approach to responsible AI practices achieves %s maturity, encompassing policies, oversight mechanisms, and cultural practices.",
		Benchmark: "Only 18% have implemented policies, and just 21% have fully operationalized responsible AI across their organizations. [McKinsey 2024, Accenture 2024]",
	},
}

// Info returns the static metadata for c. Unknown categories yield the zero value.
func (c Category) Info() CategoryInfo {
	return categoryTable[c]
}

// Label is the human readable category name used in the report and the email.
func (c Category) Label() string {
	return categoryTable[c].Label
}

func (c Category) String() string {
	return string(c)
}

// IsValid returns true if c is one of the five fixed categories.
func (c Category) IsValid() bool {
	_, ok := categoryTable[c]
	return ok
}
