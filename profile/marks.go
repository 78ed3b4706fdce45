package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"yashubustudio/careermatch/careers"
)

// Subjects recognised when marks arrive as flat subject keys.
var (
	tenthSubjects   = []string{"math", "science", "social", "english"}
	twelfthSubjects = []string{"math", "physics", "chemistry", "biology"}
)

// Academic strength classes.
const (
	StrengthExcellent        = "Excellent"
	StrengthGood             = "Good"
	StrengthAverage          = "Average"
	StrengthNeedsImprovement = "Needs Improvement"
	StrengthNoData           = "No Data"
)

// NormalizeMarks shapes a marks payload into a MarksProfile. The payload may
// wrap everything in "marks", use "tenth"/"10th" and "twelfth"/"12th" level
// objects, or list subjects flat, in which case the known subjects of each
// level are picked out. Non-numeric scores are dropped.
func NormalizeMarks(payload map[string]any) careers.MarksProfile {
	if len(payload) == 0 {
		return careers.MarksProfile{}
	}
	if inner, ok := payload["marks"].(map[string]any); ok {
		payload = inner
	}
	out := careers.MarksProfile{}
	if level, ok := levelPayload(payload, careers.LevelTenth, "10th", tenthSubjects); ok {
		out[careers.LevelTenth] = level
	}
	if level, ok := levelPayload(payload, careers.LevelTwelfth, "12th", twelfthSubjects); ok {
		out[careers.LevelTwelfth] = level
	}
	return out
}

func levelPayload(payload map[string]any, name, alias string, flat []string) (map[string]float64, bool) {
	for _, key := range []string{name, alias} {
		if raw, ok := payload[key]; ok {
			obj, _ := raw.(map[string]any)
			return numericSubjects(obj), true
		}
	}
	picked := map[string]any{}
	for _, subject := range flat {
		if v, ok := payload[subject]; ok {
			picked[subject] = v
		}
	}
	if len(picked) == 0 {
		return nil, false
	}
	return numericSubjects(picked), true
}

func numericSubjects(obj map[string]any) map[string]float64 {
	out := make(map[string]float64, len(obj))
	for subject, v := range obj {
		if f, ok := toFloat(v); ok {
			out[subject] = f
		}
	}
	return out
}

// AcademicStrengths classifies the mean score of each level, keyed "10th"
// and "12th".
func AcademicStrengths(marks careers.MarksProfile) map[string]string {
	return map[string]string{
		"10th": classifyMean(levelMean(marks[careers.LevelTenth])),
		"12th": classifyMean(levelMean(marks[careers.LevelTwelfth])),
	}
}

func levelMean(subjects map[string]float64) float64 {
	var sum float64
	n := 0
	for _, v := range subjects {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func classifyMean(avg float64) string {
	switch {
	case avg >= 85:
		return StrengthExcellent
	case avg >= 70:
		return StrengthGood
	case avg >= 50:
		return StrengthAverage
	case avg > 0:
		return StrengthNeedsImprovement
	default:
		return StrengthNoData
	}
}

// ProfileText summarises a profile for semantic matching: the top four
// traits, the cognitive indices and the top three subjects of each level,
// joined by " | ".
func ProfileText(traits careers.TraitProfile, cognitive Cognitive, marks careers.MarksProfile) string {
	top := careers.TopTraits(traits, 4)
	traitParts := make([]string, len(top))
	for i, name := range top {
		traitParts[i] = fmt.Sprintf("%s:%s", name, formatNumber(traits[name]))
	}
	parts := []string{
		"TopTraits: " + strings.Join(traitParts, ", "),
		strings.Join(cognitive.pairs(), " "),
	}
	for _, level := range []string{careers.LevelTenth, careers.LevelTwelfth} {
		subjects := marks[level]
		if len(subjects) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s_strengths: %s", level, topSubjects(subjects, 3)))
	}
	return strings.Join(parts, " | ")
}

// topSubjects renders the n highest scores as "subject:score", breaking ties
// by subject name.
func topSubjects(subjects map[string]float64, n int) string {
	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := subjects[names[i]], subjects[names[j]]
		if a == b {
			return names[i] < names[j]
		}
		return a > b
	})
	if len(names) > n {
		names = names[:n]
	}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fmt.Sprintf("%s:%s", name, formatNumber(subjects[name]))
	}
	return strings.Join(out, ", ")
}
