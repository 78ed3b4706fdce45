package careers

import (
	"sort"
	"strconv"
	"strings"
)

// Field precedence lists for corpus records. The first candidate holding a
// non-empty value wins.
var (
	idFields          = []string{"career_id", "id"}
	titleFields       = []string{"title", "name", "career"}
	descriptionFields = []string{"description"}
	skillFields       = []string{"skills_required", "skills"}
	pathFields        = []string{"path", "career_path"}
	subjectFields     = []string{"subjects_needed", "required_subjects", "subjects"}
	explanationFields = []string{"explanation_text", "explanation", "why_match"}
	industryFields    = []string{"industry_fit", "industry"}
	futureScopeFields = []string{"future_scope_india", "future_scope", "future_outlook"}
	salaryFields      = []string{"salary_range_india", "salary_breakdown", "salary_range", "salary_info", "salary"}
)

// Sentinels reported when an entity carries no enrichment text.
const (
	IndustryFitUnavailable = "Industry insights not available."
	FutureScopeUnavailable = "Future scope data not available."
	SalaryInfoUnavailable  = "Salary info not available."
)

// firstText returns the rendered value of the first candidate key that is
// present and non-empty, or "".
func firstText(rec map[string]any, keys []string) string {
	for _, key := range keys {
		if s := renderValue(rec[key]); s != "" {
			return s
		}
	}
	return ""
}

// firstList returns the first candidate key holding a non-empty list. A bare
// string counts as a single-element list.
func firstList(rec map[string]any, keys []string) []string {
	for _, key := range keys {
		var out []string
		switch v := rec[key].(type) {
		case []any:
			out = make([]string, 0, len(v))
			for _, item := range v {
				if s := renderValue(item); s != "" {
					out = append(out, s)
				}
			}
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out = []string{s}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{}
}

// orDefault returns value unless it is empty.
func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// renderValue turns a decoded JSON value into display text. Objects render
// as "key: value" pairs in key order so output is stable.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := renderValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := renderValue(val[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}
