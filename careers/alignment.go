package careers

import (
	"math"
	"sort"
	"strings"
)

// levelAliases maps accepted academic level spellings to their canonical name.
var levelAliases = map[string]string{
	LevelTenth:   LevelTenth,
	"10th":       LevelTenth,
	LevelTwelfth: LevelTwelfth,
	"12th":       LevelTwelfth,
}

// traitValue looks trait up in profile, preferring an exact key and falling
// back to a case-insensitive match. Among several case variants the
// lexically smallest key wins.
func traitValue(profile TraitProfile, trait Trait) (float64, bool) {
	if v, ok := profile[string(trait)]; ok {
		return v, true
	}
	var matches []string
	for key := range profile {
		if strings.EqualFold(strings.TrimSpace(key), string(trait)) {
			matches = append(matches, key)
		}
	}
	if len(matches) == 0 {
		return 0, false
	}
	sort.Strings(matches)
	return profile[matches[0]], true
}

// TraitAlignment scores how well an entity matches a trait profile. Each
// trait's relevance is the larger of its keyword fraction in the folded
// entity text and the rescaled cosine similarity between the trait and
// entity embeddings; relevances are averaged with weights value/10.
// It returns 0 when no trait carries positive weight.
func TraitAlignment(index *TraitIndex, profile TraitProfile, entity CareerEntity) float64 {
	if index == nil || len(profile) == 0 {
		return 0
	}
	folded := foldText(alignmentText(entity))
	var accum, total float64
	for _, trait := range Traits {
		raw, ok := traitValue(profile, trait)
		if !ok {
			continue
		}
		weight := clamp(raw, 0, 10) / 10
		if weight <= 0 {
			continue
		}
		relevance := keywordFraction(index.Keywords(trait), folded)
		if entity.HasEmbedding() {
			if vec, ok := index.Vector(trait); ok {
				sim := cosineSimilarity(vec, entity.Embedding)
				relevance = math.Max(relevance, clamp01((sim+1)/2))
			}
		}
		accum += weight * relevance
		total += weight
	}
	if total <= 0 {
		return 0
	}
	return accum / total
}

// flattenMarks merges the recognised academic levels into one subject map,
// keeping the highest score seen for each lower-cased subject. Unknown
// levels and NaN scores are ignored.
func flattenMarks(marks MarksProfile) map[string]float64 {
	out := make(map[string]float64)
	for level, subjects := range marks {
		if _, ok := levelAliases[strings.ToLower(strings.TrimSpace(level))]; !ok {
			continue
		}
		for subject, score := range subjects {
			key := strings.ToLower(strings.TrimSpace(subject))
			if key == "" || math.IsNaN(score) {
				continue
			}
			if prev, seen := out[key]; !seen || score > prev {
				out[key] = score
			}
		}
	}
	return out
}

// MarksAlignment scores how well an entity matches academic marks. Each
// subject contributes the fraction of its keywords found in the folded
// entity text, weighted by score/100. It returns 0 when no subject carries
// positive weight.
func MarksAlignment(marks MarksProfile, entity CareerEntity) float64 {
	subjects := flattenMarks(marks)
	if len(subjects) == 0 {
		return 0
	}
	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	sort.Strings(names)

	folded := foldText(alignmentText(entity))
	var accum, total float64
	for _, name := range names {
		weight := clamp(subjects[name], 0, 100) / 100
		if weight <= 0 {
			continue
		}
		accum += weight * keywordFraction(subjectKeywords(name), folded)
		total += weight
	}
	if total <= 0 {
		return 0
	}
	return accum / total
}
