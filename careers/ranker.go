package careers

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Match labels, from best to worst.
const (
	LabelExcellent = "Excellent match"
	LabelGreat     = "Great match"
	LabelGood      = "Good match"
	LabelFair      = "Fair match"
	LabelLow       = "Low match"
)

type labelThreshold struct {
	min   int
	label string
}

// labelTable is walked in order; the first satisfied threshold wins.
var labelTable = []labelThreshold{
	{80, LabelExcellent},
	{60, LabelGreat},
	{40, LabelGood},
	{20, LabelFair},
	{0, LabelLow},
}

// MatchLabel maps a final score to its qualitative label.
func MatchLabel(score int) string {
	for _, t := range labelTable {
		if score >= t.min {
			return t.label
		}
	}
	return LabelLow
}

// Signals holds the three per-entity inputs to the combiner.
type Signals struct {
	Semantic float64
	Trait    float64
	Marks    float64
}

// CombinedScore fuses the signals with the configured weights and clamps the
// sum to [0,1]. Weights are not normalised.
func CombinedScore(sig Signals, w Weights) float64 {
	return clamp01(w.Semantic*sig.Semantic + w.Trait*sig.Trait + w.Marks*sig.Marks)
}

// FinalScore applies the uplift exponent to a combined score and converts it
// to an integer percentage. Halves round to even.
func FinalScore(combined, exponent float64) int {
	uplifted := math.Pow(clamp01(combined), exponent)
	return int(math.RoundToEven(clamp01(uplifted) * 100))
}

// scored pairs an entity with its signals ahead of sorting.
type scored struct {
	entity     CareerEntity
	similarity Similarity
	signals    Signals
	final      int
}

// rank orders candidates by final score, keeping corpus order among equal
// scores, and converts the first topK into results.
func rank(candidates []scored, traits TraitProfile, topK int) []RecommendationResult {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].final > candidates[j].final
	})
	if topK >= 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	out := make([]RecommendationResult, len(candidates))
	for i, c := range candidates {
		out[i] = buildResult(c, traits)
	}
	return out
}

func buildResult(c scored, traits TraitProfile) RecommendationResult {
	e := c.entity
	explanation := e.Explanation
	if explanation == "" {
		explanation = synthesizeExplanation(e, traits, c.signals)
	}
	return RecommendationResult{
		ID:                           e.ID,
		Title:                        e.Title,
		Description:                  e.Description,
		Skills:                       cloneStrings(e.Skills),
		Path:                         cloneStrings(e.Path),
		SubjectsNeeded:               cloneStrings(e.SubjectsNeeded),
		Explanation:                  explanation,
		IndustryFit:                  orDefault(e.IndustryFit, IndustryFitUnavailable),
		FutureScope:                  orDefault(e.FutureScope, FutureScopeUnavailable),
		SalaryInfo:                   orDefault(e.SalaryInfo, SalaryInfoUnavailable),
		SemanticSimilarityRaw:        c.similarity.Raw,
		SemanticSimilarityNormalized: c.similarity.Normalized,
		TraitAlignment:               c.signals.Trait,
		MarksAlignment:               c.signals.Marks,
		FinalScore:                   c.final,
		MatchLabel:                   MatchLabel(c.final),
	}
}

// synthesizeExplanation writes a short explanation for entities that carry
// no authored one.
func synthesizeExplanation(e CareerEntity, traits TraitProfile, sig Signals) string {
	top := "your strengths"
	if names := TopTraits(traits, 2); len(names) > 0 {
		top = strings.Join(names, ", ")
	}
	parts := []string{fmt.Sprintf("This career aligns with %s.", top)}
	if len(e.Skills) > 0 {
		skills := e.Skills
		if len(skills) > 3 {
			skills = skills[:3]
		}
		parts = append(parts, fmt.Sprintf("Key skills: %s.", strings.Join(skills, ", ")))
	}
	parts = append(parts, fmt.Sprintf("Model signals: semantic match: %s, trait alignment: %s, marks alignment: %s.",
		formatSignal(sig.Semantic), formatSignal(sig.Trait), formatSignal(sig.Marks)))
	return strings.Join(parts, " ")
}

// TopTraits returns up to n trait names ordered by descending value. Ties
// keep canonical trait order, followed by unrecognised keys in name order.
func TopTraits(traits TraitProfile, n int) []string {
	if len(traits) == 0 || n <= 0 {
		return nil
	}
	names := make([]string, 0, len(traits))
	known := make(map[string]struct{}, len(Traits))
	for _, t := range Traits {
		known[string(t)] = struct{}{}
		if _, ok := traits[string(t)]; ok {
			names = append(names, string(t))
		}
	}
	var extra []string
	for key := range traits {
		if _, ok := known[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	sort.SliceStable(names, func(i, j int) bool {
		return traits[names[i]] > traits[names[j]]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func formatSignal(v float64) string {
	return FormatDecimal(math.Round(v*1000) / 1000)
}

// FormatDecimal renders v in its shortest form, keeping at least one
// fractional digit: 5 becomes "5.0" and 7.25 stays "7.25".
func FormatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
