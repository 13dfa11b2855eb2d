package computemetrics

import (
	"math"

	"maturity-report/internal/models"
)

const StageName = "compute-metrics"

// MaturityLevel maps a score onto its tier. Boundaries are inclusive upper
// bounds: (-inf,2] Emerging, (2,3] Developing, (3,4] Advanced, above Leading.
func MaturityLevel(score float64) Level {
	switch {
	case score <= 2:
		return LevelEmerging
	case score <= 3:
		return LevelDeveloping
	case score <= 4:
		return LevelAdvanced
	default:
		return LevelLeading
	}
}

// Compute derives the report aggregates. It is total: any ScoreSet yields
// a Metrics value.
func Compute(scores models.ScoreSet) Metrics {
	var sum float64
	levels := make(map[models.Category]Level, len(models.Categories))
	for _, c := range models.Categories {
		v := scores.Get(c)
		sum += v
		levels[c] = MaturityLevel(v)
	}

	overall := roundHalfUp(sum / float64(len(models.Categories)))

	return Metrics{
		OverallScore: overall,
		OverallLevel: MaturityLevel(float64(overall)),
		Levels:       levels,
		Strongest:    extreme(scores, func(candidate, current float64) bool { return candidate > current }),
		Weakest:      extreme(scores, func(candidate, current float64) bool { return candidate < current }),
	}
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// extreme folds left over the category order. A later category only takes
// over when better reports a strict improvement, so ties keep the earlier one.
func extreme(scores models.ScoreSet, better func(candidate, current float64) bool) models.Category {
	holder := models.Categories[0]
	for _, c := range models.Categories[1:] {
		if better(scores.Get(c), scores.Get(holder)) {
			holder = c
		}
	}
	return holder
}
