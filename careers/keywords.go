package careers

import "strings"

// TraitKeywords lists the terms that signal each trait in career text.
var TraitKeywords = map[Trait][]string{
	TraitAnalytical: {"analysis", "analyze", "analytical", "data", "statistics", "research", "modeling"},
	TraitLogical:    {"logic", "logical", "reasoning", "patterns", "algorithm", "deductive", "pattern"},
	TraitTechnical:  {"programming", "software", "engineer", "technology", "technical", "coding", "developer", "it"},
	TraitPractical:  {"hands-on", "practical", "mechanical", "craft", "field", "construction", "repair", "technician"},
	TraitSocial:     {"communication", "community", "counseling", "social", "customer", "service", "people"},
	TraitLeadership: {"manage", "manager", "lead", "leadership", "coordinate", "supervise", "director"},
	TraitCreative:   {"design", "creative", "art", "visual", "writer", "content", "innovation"},
}

// SubjectKeywords lists the terms that tie a school subject to career text.
// Subjects missing from the table use their own name as the only keyword.
var SubjectKeywords = map[string][]string{
	"math":      {"math", "mathematics", "calculus", "algebra", "statistics"},
	"physics":   {"physics", "mechanics", "thermodynamics", "electromagnetics"},
	"chemistry": {"chemistry", "chemical", "biochemistry", "organic"},
	"biology":   {"biology", "biological", "life science", "microbiology"},
	"computer":  {"computer", "programming", "computer science", "cs", "software", "coding"},
	"english":   {"communication", "writing", "english", "language", "literature"},
	"science":   {"science"},
	"social":    {"history", "geography", "political", "economics", "social"},
}

// subjectKeywords returns the keyword list for a lower-cased subject name.
func subjectKeywords(subject string) []string {
	if kws := SubjectKeywords[subject]; len(kws) > 0 {
		return kws
	}
	return []string{subject}
}

// keywordFraction is the share of keywords found as substrings of folded,
// which must already be lower-cased.
func keywordFraction(keywords []string, folded string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	found := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(folded, strings.ToLower(kw)) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}
