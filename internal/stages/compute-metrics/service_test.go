package computemetrics

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"maturity-report/internal/models"
)

func TestMaturityLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0, LevelEmerging},
		{1, LevelEmerging},
		{2, LevelEmerging},
		{2.01, LevelDeveloping},
		{3, LevelDeveloping},
		{3.5, LevelAdvanced},
		{4, LevelAdvanced},
		{4.1, LevelLeading},
		{5, LevelLeading},
		{-1, LevelEmerging},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaturityLevel(tt.score), "score %v", tt.score)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		scores    models.ScoreSet
		overall   int
		level     Level
		strongest models.Category
		weakest   models.Category
	}{
		{
			name:      "typical submission",
			scores:    models.ScoreSet{Strategy: 4, Tools: 3, People: 2, Data: 2, Ethics: 1},
			overall:   2,
			level:     LevelEmerging,
			strongest: models.CategoryStrategy,
			weakest:   models.CategoryEthics,
		},
		{
			name:      "ties resolve to the earlier category",
			scores:    models.ScoreSet{Strategy: 3, Tools: 3, People: 1, Data: 1, Ethics: 1},
			overall:   2,
			level:     LevelEmerging,
			strongest: models.CategoryStrategy,
			weakest:   models.CategoryPeople,
		},
		{
			name:      "half rounds up",
			scores:    models.ScoreSet{Strategy: 3, Tools: 3, People: 3, Data: 2, Ethics: 1.5},
			overall:   3,
			level:     LevelDeveloping,
			strongest: models.CategoryStrategy,
			weakest:   models.CategoryEthics,
		},
		{
			name:      "all equal",
			scores:    models.ScoreSet{Strategy: 5, Tools: 5, People: 5, Data: 5, Ethics: 5},
			overall:   5,
			level:     LevelLeading,
			strongest: models.CategoryStrategy,
			weakest:   models.CategoryStrategy,
		},
		{
			name:      "later strict maximum wins",
			scores:    models.ScoreSet{Strategy: 1, Tools: 2, People: 2, Data: 4, Ethics: 4},
			overall:   3,
			level:     LevelDeveloping,
			strongest: models.CategoryData,
			weakest:   models.CategoryStrategy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.scores)
			assert.Equal(t, tt.overall, m.OverallScore)
			assert.Equal(t, tt.level, m.OverallLevel)
			assert.Equal(t, tt.strongest, m.Strongest)
			assert.Equal(t, tt.weakest, m.Weakest)
			assert.Len(t, m.Levels, 5)
			for _, c := range models.Categories {
				assert.Equal(t, MaturityLevel(tt.scores.Get(c)), m.Level(c))
			}
		})
	}
}

func genScores() gopter.Gen {
	score := gen.Float64Range(0, 5)
	return gopter.CombineGens(score, score, score, score, score).Map(func(vs []interface{}) models.ScoreSet {
		return models.ScoreSet{
			Strategy: vs[0].(float64),
			Tools:    vs[1].(float64),
			People:   vs[2].(float64),
			Data:     vs[3].(float64),
			Ethics:   vs[4].(float64),
		}
	})
}

func TestCompute_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("overall score is the rounded mean within [0,5]", prop.ForAll(
		func(s models.ScoreSet) bool {
			m := Compute(s)
			mean := (s.Strategy + s.Tools + s.People + s.Data + s.Ethics) / 5
			return m.OverallScore == int(math.Floor(mean+0.5)) &&
				m.OverallScore >= 0 && m.OverallScore <= 5
		},
		genScores(),
	))

	properties.Property("strongest holds the maximum and weakest the minimum", prop.ForAll(
		func(s models.ScoreSet) bool {
			m := Compute(s)
			for _, c := range models.Categories {
				if s.Get(c) > s.Get(m.Strongest) || s.Get(c) < s.Get(m.Weakest) {
					return false
				}
			}
			return true
		},
		genScores(),
	))

	properties.Property("extremes are the first category holding the value", prop.ForAll(
		func(s models.ScoreSet) bool {
			m := Compute(s)
			for _, c := range models.Categories {
				if c == m.Strongest {
					break
				}
				if s.Get(c) == s.Get(m.Strongest) {
					return false
				}
			}
			for _, c := range models.Categories {
				if c == m.Weakest {
					break
				}
				if s.Get(c) == s.Get(m.Weakest) {
					return false
				}
			}
			return true
		},
		genScores(),
	))

	properties.TestingRun(t)
}

func TestMaturityLevel_Monotone(t *testing.T) {
	rank := map[Level]int{LevelEmerging: 0, LevelDeveloping: 1, LevelAdvanced: 2, LevelLeading: 3}

	properties := gopter.NewProperties(nil)
	properties.Property("higher scores never yield a lower tier", prop.ForAll(
		func(a, b float64) bool {
			lo, hi := math.Min(a, b), math.Max(a, b)
			return rank[MaturityLevel(lo)] <= rank[MaturityLevel(hi)]
		},
		gen.Float64Range(-1, 6),
		gen.Float64Range(-1, 6),
	))
	properties.Property("tier changes only across 2, 3 and 4", prop.ForAll(
		func(a, b float64) bool {
			for _, boundary := range []float64{2, 3, 4} {
				if (a <= boundary) != (b <= boundary) {
					return true
				}
			}
			return MaturityLevel(a) == MaturityLevel(b)
		},
		gen.Float64Range(-1, 6),
		gen.Float64Range(-1, 6),
	))
	properties.TestingRun(t)
}
