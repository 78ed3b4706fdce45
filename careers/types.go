package careers

// Trait is one of the fixed psychometric traits.
type Trait string

const (
	TraitAnalytical Trait = "Analytical"
	TraitLogical    Trait = "Logical"
	TraitTechnical  Trait = "Technical"
	TraitPractical  Trait = "Practical"
	TraitSocial     Trait = "Social"
	TraitLeadership Trait = "Leadership"
	TraitCreative   Trait = "Creative"
)

// Traits lists the closed trait set in its canonical order. Iteration over
// trait maps always follows this order so results are reproducible.
var Traits = []Trait{
	TraitAnalytical,
	TraitLogical,
	TraitTechnical,
	TraitPractical,
	TraitSocial,
	TraitLeadership,
	TraitCreative,
}

// Academic levels recognised in a MarksProfile.
const (
	LevelTenth   = "tenth"
	LevelTwelfth = "twelfth"
)

// TraitProfile maps trait names to intensities on a 0-10 scale.
type TraitProfile map[string]float64

// MarksProfile maps an academic level to subject scores on a 0-100 scale.
type MarksProfile map[string]map[string]float64

// CareerEntity is one recommendable career as loaded from the corpus.
type CareerEntity struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Skills         []string `json:"skills"`
	Path           []string `json:"path"`
	SubjectsNeeded []string `json:"subjects_needed"`

	// Authored enrichment text; empty when the record carried none.
	Explanation string `json:"explanation,omitempty"`
	IndustryFit string `json:"industry_fit,omitempty"`
	FutureScope string `json:"future_scope,omitempty"`
	SalaryInfo  string `json:"salary_info,omitempty"`

	SearchableText string    `json:"-"`
	Embedding      []float32 `json:"-"`
}

// HasEmbedding reports whether the corpus load produced a vector for the entity.
func (e CareerEntity) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// Request carries the per-call inputs of a recommendation.
type Request struct {
	ProfileText string
	Traits      TraitProfile
	Marks       MarksProfile
	TopK        int
}

// RecommendationResult is one ranked output row.
type RecommendationResult struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Skills         []string `json:"skills"`
	Path           []string `json:"path"`
	SubjectsNeeded []string `json:"subjects_needed"`
	Explanation    string   `json:"explanation"`
	IndustryFit    string   `json:"industry_fit"`
	FutureScope    string   `json:"future_scope"`
	SalaryInfo     string   `json:"salary_info"`

	SemanticSimilarityRaw        float64 `json:"semantic_similarity_raw"`
	SemanticSimilarityNormalized float64 `json:"semantic_similarity_normalized"`
	TraitAlignment               float64 `json:"trait_alignment"`
	MarksAlignment               float64 `json:"marks_alignment"`
	FinalScore                   int     `json:"final_score"`
	MatchLabel                   string  `json:"match_label"`
}
