package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"yashubustudio/careermatch/careers"
	"yashubustudio/careermatch/profile"
)

type psychometricPayload struct {
	Traits  map[string]any `json:"traits"`
	Answers []any          `json:"answers"`
}

// RecommendationRequest is the body of POST /api/recommendations. Every field
// is optional.
type RecommendationRequest struct {
	ProfileText   string               `json:"profile_text"`
	Traits        map[string]any       `json:"traits"`
	Answers       []any                `json:"answers"`
	Psychometric  *psychometricPayload `json:"psychometric"`
	Marks         map[string]any       `json:"marks"`
	SubjectScores map[string]any       `json:"subject_scores"`
	TopK          int                  `json:"top_k"`
}

// Diagnostic explains how a request was interpreted.
type Diagnostic struct {
	ProfileText       string            `json:"profile_text"`
	Cognitive         profile.Cognitive `json:"cognitive"`
	AcademicStrengths map[string]string `json:"academic_strengths"`
}

// RecommendationResponse is the success body of POST /api/recommendations.
type RecommendationResponse struct {
	Success         bool                           `json:"success"`
	RequestID       string                         `json:"request_id"`
	Recommendations []careers.RecommendationResult `json:"recommendations"`
	Diagnostic      Diagnostic                     `json:"diagnostic"`
}

// Recommendations ranks careers for the posted profile.
func (s *Server) Recommendations(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TopK < 0 {
		fail(c, http.StatusBadRequest, "top_k must be positive")
		return
	}

	traits := profile.ResolveTraits(requestTraits(req))
	marksPayload := req.Marks
	if len(marksPayload) == 0 {
		marksPayload = req.SubjectScores
	}
	marks := profile.NormalizeMarks(marksPayload)
	cognitive := profile.CognitiveFromTraits(traits)
	profileText := req.ProfileText
	if profileText == "" {
		profileText = profile.ProfileText(traits, cognitive, marks)
	}

	recs, err := s.recommender.Recommend(c.Request.Context(), careers.Request{
		ProfileText: profileText,
		Traits:      traits,
		Marks:       marks,
		TopK:        req.TopK,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("recommendation failed")
		fail(c, statusFor(err), "failed to generate recommendations")
		return
	}

	c.JSON(http.StatusOK, RecommendationResponse{
		Success:         true,
		RequestID:       c.GetString(requestIDKey),
		Recommendations: recs,
		Diagnostic: Diagnostic{
			ProfileText:       profileText,
			Cognitive:         cognitive,
			AcademicStrengths: profile.AcademicStrengths(marks),
		},
	})
}

// requestTraits picks explicit traits first, then traits derived from
// answers. The result may be empty.
func requestTraits(req RecommendationRequest) careers.TraitProfile {
	if traits := profile.CoerceTraits(req.Traits); len(traits) > 0 {
		return traits
	}
	answers := req.Answers
	if req.Psychometric != nil {
		if traits := profile.CoerceTraits(req.Psychometric.Traits); len(traits) > 0 {
			return traits
		}
		if len(answers) == 0 {
			answers = req.Psychometric.Answers
		}
	}
	if len(answers) > 0 {
		return profile.TraitScores(profile.NormalizeAnswers(answers))
	}
	return nil
}

// Psychometric scores questionnaire answers posted either as an "answers"
// array or as q1..q25 fields.
func (s *Server) Psychometric(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	raw, _ := body["answers"].([]any)
	if len(raw) == 0 {
		raw = profile.AnswersFromFields(body)
	}
	if len(raw) == 0 {
		fail(c, http.StatusBadRequest, "no valid psychometric data")
		return
	}

	answers := profile.NormalizeAnswers(raw)
	traits := profile.TraitScores(answers)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"answers":     answers,
		"traits":      traits,
		"personality": profile.Personality(traits),
		"cognitive":   profile.CognitiveFromTraits(traits),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, careers.ErrCorpusNotFound),
		errors.Is(err, careers.ErrEmptyCorpus),
		errors.Is(err, careers.ErrEmbedderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
