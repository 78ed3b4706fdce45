// Package profile turns questionnaire answers and marks payloads into the
// trait and marks profiles the recommender consumes, and summarises them as
// the profile text used for semantic matching.
package profile

import (
	"math"
	"strconv"
	"strings"

	"yashubustudio/careermatch/careers"
)

const (
	minAnswer     = 1.0
	maxAnswer     = 5.0
	neutralAnswer = 3.0

	// NeutralTrait is the score given to a trait nothing measured.
	NeutralTrait = 5.0
)

// NormalizeAnswers converts raw answers to the 1-5 scale. Numbers and numeric
// strings are clamped; anything else becomes the neutral 3.0.
func NormalizeAnswers(raw []any) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		f, ok := toFloat(v)
		if !ok {
			out[i] = neutralAnswer
			continue
		}
		out[i] = math.Min(math.Max(f, minAnswer), maxAnswer)
	}
	return out
}

// AnswersFromFields collects answers stored as q1..q25 fields, skipping
// absent questions.
func AnswersFromFields(fields map[string]any) []any {
	var out []any
	for i := 1; i <= QuestionCount; i++ {
		if v, ok := fields["q"+strconv.Itoa(i)]; ok {
			out = append(out, v)
		}
	}
	return out
}

// TraitScores aggregates normalised answers into 0-10 trait scores rounded
// to two decimals. Unanswered questions count as 3.0 and a trait with no
// weight scores NeutralTrait.
func TraitScores(answers []float64) careers.TraitProfile {
	raw := make([]float64, len(careers.Traits))
	weights := make([]float64, len(careers.Traits))
	pos := make(map[careers.Trait]int, len(careers.Traits))
	for i, t := range careers.Traits {
		pos[t] = i
	}
	for q, wmap := range questionWeights {
		val := neutralAnswer
		if q < len(answers) {
			val = answers[q]
		}
		for trait, w := range wmap {
			i := pos[trait]
			raw[i] += val * w
			weights[i] += w
		}
	}

	scores := make(careers.TraitProfile, len(careers.Traits))
	for i, t := range careers.Traits {
		denom := weights[i] * maxAnswer
		if denom <= 0 {
			scores[string(t)] = NeutralTrait
			continue
		}
		scores[string(t)] = round2(math.Min(math.Max(raw[i]/denom*10, 0), 10))
	}
	return scores
}

// CoerceTraits converts a decoded traits object into a TraitProfile.
// Numeric strings are parsed and non-numeric values are dropped.
func CoerceTraits(raw map[string]any) careers.TraitProfile {
	if len(raw) == 0 {
		return nil
	}
	out := make(careers.TraitProfile, len(raw))
	for name, v := range raw {
		if f, ok := toFloat(v); ok {
			out[name] = f
		}
	}
	return out
}

// DefaultTraits scores every trait NeutralTrait.
func DefaultTraits() careers.TraitProfile {
	out := make(careers.TraitProfile, len(careers.Traits))
	for _, t := range careers.Traits {
		out[string(t)] = NeutralTrait
	}
	return out
}

// ResolveTraits returns traits, or DefaultTraits when it is empty.
func ResolveTraits(traits careers.TraitProfile) careers.TraitProfile {
	if len(traits) == 0 {
		return DefaultTraits()
	}
	return traits
}

// Personality labels a profile by its two strongest traits.
func Personality(traits careers.TraitProfile) string {
	return strings.Join(careers.TopTraits(traits, 2), " / ")
}

// Cognitive holds the cognitive indices derived from trait scores.
type Cognitive struct {
	LogicalReasoning  float64 `json:"LogicalReasoning"`
	AnalyticalAbility float64 `json:"AnalyticalAbility"`
	CreativeThinking  float64 `json:"CreativeThinking"`
	CognitiveIndex    float64 `json:"CognitiveIndex"`
}

// CognitiveFromTraits derives the cognitive indices. Missing traits count as 0.
func CognitiveFromTraits(traits careers.TraitProfile) Cognitive {
	logical := traits[string(careers.TraitLogical)]
	analytical := traits[string(careers.TraitAnalytical)]
	creative := traits[string(careers.TraitCreative)]
	return Cognitive{
		LogicalReasoning:  round2(logical),
		AnalyticalAbility: round2(analytical),
		CreativeThinking:  round2(creative),
		CognitiveIndex:    round2(0.5*analytical + 0.3*logical + 0.2*creative),
	}
}

// pairs renders the indices as "name:value" in a fixed order.
func (c Cognitive) pairs() []string {
	return []string{
		"LogicalReasoning:" + formatNumber(c.LogicalReasoning),
		"AnalyticalAbility:" + formatNumber(c.AnalyticalAbility),
		"CreativeThinking:" + formatNumber(c.CreativeThinking),
		"CognitiveIndex:" + formatNumber(c.CognitiveIndex),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatNumber(v float64) string {
	return careers.FormatDecimal(v)
}

// toFloat accepts JSON numbers, Go numeric types and numeric strings.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case bool:
		if n {
			f = 1
		}
	case interface{ Float64() (float64, error) }:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
