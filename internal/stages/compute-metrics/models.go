package computemetrics

import "maturity-report/internal/models"

// Level is a maturity tier.
type Level string

const (
	LevelEmerging   Level = "Emerging"
	LevelDeveloping Level = "Developing"
	LevelAdvanced   Level = "Advanced"
	LevelLeading    Level = "Leading"
)

func (l Level) String() string {
	return string(l)
}

// Metrics are the aggregates derived from one ScoreSet.
type Metrics struct {
	OverallScore int                       `json:"overallScore"`
	OverallLevel Level                     `json:"overallLevel"`
	Levels       map[models.Category]Level `json:"levels"`
	Strongest    models.Category           `json:"strongest"`
	Weakest      models.Category           `json:"weakest"`
}

// Level returns the tier of c.
func (m Metrics) Level(c models.Category) Level {
	return m.Levels[c]
}
