package careers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLabelThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, LabelExcellent},
		{80, LabelExcellent},
		{79, LabelGreat},
		{60, LabelGreat},
		{40, LabelGood},
		{20, LabelFair},
		{19, LabelLow},
		{0, LabelLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchLabel(tc.score), "score %d", tc.score)
	}
}

func TestCombinedScoreClamps(t *testing.T) {
	w := Weights{Semantic: 1, Trait: 1, Marks: 1}
	assert.Equal(t, 1.0, CombinedScore(Signals{Semantic: 1, Trait: 1, Marks: 1}, w))
	assert.Equal(t, 0.0, CombinedScore(Signals{}, w))
	assert.Equal(t, 0.0, CombinedScore(Signals{Semantic: 1}, Weights{Semantic: -2}))

	def := DefaultConfig().Weights
	assert.InDelta(t, 0.65*0.5+0.25*0.2+0.1*1, CombinedScore(Signals{Semantic: 0.5, Trait: 0.2, Marks: 1}, def), 1e-12)
}

func TestFinalScore(t *testing.T) {
	assert.Equal(t, 50, FinalScore(0.5, 1))
	assert.Equal(t, 12, FinalScore(0.125, 1), "halves round to even")
	assert.Equal(t, 0, FinalScore(0, 0.6))
	assert.Equal(t, 100, FinalScore(1, 0.6))
	assert.Equal(t, 66, FinalScore(0.5, 0.6))
	assert.Equal(t, 100, FinalScore(3, 0.6))
	assert.Equal(t, 0, FinalScore(-1, 0.6))
}

func TestFinalScoreMonotonic(t *testing.T) {
	for _, exp := range []float64{0.3, 0.6, 1, 2} {
		prev := -1
		for i := 0; i <= 1000; i++ {
			score := FinalScore(float64(i)/1000, exp)
			require.GreaterOrEqual(t, score, prev, "exponent %v step %d", exp, i)
			require.True(t, score >= 0 && score <= 100)
			prev = score
		}
	}
}

func TestRankIsStableAndTruncates(t *testing.T) {
	candidates := []scored{
		{entity: CareerEntity{ID: "a"}, final: 40},
		{entity: CareerEntity{ID: "b"}, final: 70},
		{entity: CareerEntity{ID: "c"}, final: 40},
		{entity: CareerEntity{ID: "d"}, final: 70},
		{entity: CareerEntity{ID: "e"}, final: 10},
	}
	results := rank(candidates, nil, 4)
	require.Len(t, results, 4)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.Equal(t, LabelGreat, results[0].MatchLabel)
	assert.Equal(t, LabelGood, results[2].MatchLabel)
}

func TestBuildResultFillsSentinels(t *testing.T) {
	c := scored{
		entity: CareerEntity{
			ID:     "swe",
			Title:  "Software Engineer",
			Skills: []string{"Go", "SQL", "Kubernetes", "Linux"},
		},
		similarity: Similarity{Raw: 0.42, Normalized: 0.12345, Available: true},
		signals:    Signals{Semantic: 0.12345, Trait: 0.5, Marks: 0},
		final:      35,
	}
	traits := TraitProfile{"Technical": 9, "Analytical": 7, "Social": 1}
	r := buildResult(c, traits)

	assert.Equal(t, IndustryFitUnavailable, r.IndustryFit)
	assert.Equal(t, FutureScopeUnavailable, r.FutureScope)
	assert.Equal(t, SalaryInfoUnavailable, r.SalaryInfo)
	assert.Equal(t, []string{}, r.Path)
	assert.Equal(t, 0.42, r.SemanticSimilarityRaw)
	assert.Equal(t, LabelFair, r.MatchLabel)
	assert.Equal(t,
		"This career aligns with Technical, Analytical. Key skills: Go, SQL, Kubernetes. "+
			"Model signals: semantic match: 0.123, trait alignment: 0.5, marks alignment: 0.0.",
		r.Explanation)
}

func TestBuildResultKeepsAuthoredText(t *testing.T) {
	c := scored{entity: CareerEntity{
		ID:          "x",
		Explanation: "Because you like puzzles.",
		IndustryFit: "IT services",
		FutureScope: "Strong",
		SalaryInfo:  "6-12 LPA",
	}}
	r := buildResult(c, nil)
	assert.Equal(t, "Because you like puzzles.", r.Explanation)
	assert.Equal(t, "IT services", r.IndustryFit)
	assert.Equal(t, "Strong", r.FutureScope)
	assert.Equal(t, "6-12 LPA", r.SalaryInfo)
}

func TestSynthesizeExplanationWithoutTraitsOrSkills(t *testing.T) {
	got := synthesizeExplanation(CareerEntity{}, nil, Signals{Semantic: 1})
	assert.Equal(t, "This career aligns with your strengths. Model signals: semantic match: 1.0, trait alignment: 0.0, marks alignment: 0.0.", got)
}

func TestTopTraits(t *testing.T) {
	traits := TraitProfile{"Social": 5, "Analytical": 5, "Creative": 9, "Grit": 5}
	assert.Equal(t, []string{"Creative", "Analytical", "Social", "Grit"}, TopTraits(traits, 5))
	assert.Equal(t, []string{"Creative", "Analytical"}, TopTraits(traits, 2))
	assert.Nil(t, TopTraits(nil, 2))
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "5.0", FormatDecimal(5))
	assert.Equal(t, "0.0", FormatDecimal(0))
	assert.Equal(t, "7.25", FormatDecimal(7.25))
	assert.Equal(t, "-3.0", FormatDecimal(-3))
	assert.Equal(t, "0.123", formatSignal(0.12345))
}
