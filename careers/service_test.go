package careers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCorpus = `{"careers": [
	{"career_id": "swe", "title": "Software Developer", "description": "Builds software with programming and coding", "skills_required": ["Programming", "Algorithms"], "path": ["BTech CS", "Developer"]},
	{"career_id": "chef", "title": "Pastry Chef", "description": "Bakes bread and cakes", "skills_required": ["Baking"]},
	{"career_id": "counsel", "title": "School Counselor", "description": "Counseling students and community service", "skills_required": ["Communication", "Empathy"]},
	{"career_id": "designer", "title": "Graphic Designer", "description": "Visual design and creative content", "skills_required": ["Design", "Illustration"]},
	{"career_id": "analyst", "title": "Data Analyst", "description": "Data analysis, statistics and research", "skills_required": ["Statistics", "SQL"]},
	{"career_id": "mechanic", "title": "Automobile Technician", "description": "Hands-on repair of mechanical systems", "skills_required": ["Repair"]},
	{"career_id": "manager", "title": "Operations Manager", "description": "Lead and coordinate teams", "skills_required": ["Leadership"]},
	{"career_id": "chemist", "title": "Chemist", "description": "Chemical research in a laboratory", "skills_required": ["Chemistry"]}
]}`

func TestRecommendEmptyInputs(t *testing.T) {
	svc := newTestService(t, NewHashingEmbedder(128), testConfig(writeCorpus(t, sampleCorpus)))

	results, err := svc.Recommend(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, results, 6)
	for i, r := range results {
		assert.Equal(t, 0.0, r.TraitAlignment)
		assert.Equal(t, 0.0, r.MarksAlignment)
		assert.True(t, r.FinalScore >= 0 && r.FinalScore <= 100)
		assert.Equal(t, MatchLabel(r.FinalScore), r.MatchLabel)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].FinalScore, r.FinalScore)
			assert.GreaterOrEqual(t, results[i-1].SemanticSimilarityNormalized, r.SemanticSimilarityNormalized)
		}
	}
}

func TestRecommendTopK(t *testing.T) {
	svc := newTestService(t, NewHashingEmbedder(128), testConfig(writeCorpus(t, sampleCorpus)))
	ctx := context.Background()

	results, err := svc.Recommend(ctx, Request{ProfileText: "data", TopK: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = svc.Recommend(ctx, Request{ProfileText: "data", TopK: 50})
	require.NoError(t, err)
	assert.Len(t, results, 8)
}

func TestRecommendIsDeterministic(t *testing.T) {
	svc := newTestService(t, NewHashingEmbedder(128), testConfig(writeCorpus(t, sampleCorpus)))
	req := Request{
		ProfileText: "TopTraits: Technical:9, Analytical:8",
		Traits:      TraitProfile{"Technical": 9, "Analytical": 8, "Creative": 2},
		Marks:       MarksProfile{"tenth": {"math": 92, "english": 70}, "twelfth": {"physics": 80}},
		TopK:        8,
	}
	first, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Recommend(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRecommendTechnicalTraitFavoursTechnicalCareer(t *testing.T) {
	svc := newTestService(t, NewHashingEmbedder(128), testConfig(writeCorpus(t, sampleCorpus)))
	results, err := svc.Recommend(context.Background(), Request{
		Traits: TraitProfile{"Technical": 10},
		TopK:   8,
	})
	require.NoError(t, err)

	byID := map[string]RecommendationResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	assert.Greater(t, byID["swe"].TraitAlignment, byID["chef"].TraitAlignment)
}

func TestRecommendTieKeepsCorpusOrder(t *testing.T) {
	doc := `[
		{"id": "first", "title": "Identical Role", "description": "same words"},
		{"id": "other", "title": "Different Career", "description": "unrelated"},
		{"id": "second", "title": "Identical Role", "description": "same words"}
	]`
	svc := newTestService(t, NewHashingEmbedder(128), testConfig(writeCorpus(t, doc)))
	results, err := svc.Recommend(context.Background(), Request{ProfileText: "identical role", TopK: 3})
	require.NoError(t, err)

	pos := map[string]int{}
	for i, r := range results {
		pos[r.ID] = i
	}
	require.Equal(t, results[pos["first"]].FinalScore, results[pos["second"]].FinalScore)
	assert.Less(t, pos["first"], pos["second"])
}

func TestRecommendFlatSimilarity(t *testing.T) {
	doc := `[{"id": "a", "title": "Alpha"}, {"id": "b", "title": "Beta"}]`
	embedder := &funcEmbedder{embed: func(text string) ([]float32, error) {
		if strings.Contains(text, "Alpha") || strings.Contains(text, "Beta") {
			return unitAt(0.3), nil
		}
		return []float32{1, 0}, nil
	}}
	svc := newTestService(t, embedder, testConfig(writeCorpus(t, doc)))

	results, err := svc.Recommend(context.Background(), Request{ProfileText: "anything"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.InDelta(t, 0.3, r.SemanticSimilarityRaw, 1e-6)
		assert.InDelta(t, 0.5, r.SemanticSimilarityNormalized, 1e-6)
	}
	assert.Equal(t, "a", results[0].ID)
}

func TestRecommendUsesDefaultProfileText(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	embedder := &funcEmbedder{embed: func(text string) ([]float32, error) {
		mu.Lock()
		queries = append(queries, text)
		mu.Unlock()
		return []float32{1, 1}, nil
	}}
	svc := newTestService(t, embedder, testConfig(writeCorpus(t, `["Nurse"]`)))
	require.NoError(t, svc.EnsureLoaded(context.Background()))

	mu.Lock()
	queries = nil
	mu.Unlock()
	_, err := svc.Recommend(context.Background(), Request{ProfileText: "   "})
	require.NoError(t, err)
	assert.Equal(t, []string{"student seeking career guidance"}, queries)
}

func TestEmbeddingUnavailableEntity(t *testing.T) {
	doc := `[{"id": "ok1", "title": "Good One"}, {"id": "broken", "title": "Broken"}, {"id": "ok2", "title": "Good Two"}]`
	embedder := &funcEmbedder{
		failBatch: failBatchContaining("Broken"),
		embed: func(text string) ([]float32, error) {
			switch {
			case strings.Contains(text, "Broken"):
				return nil, errors.New("cannot encode")
			case strings.Contains(text, "Good One"):
				return unitAt(0.2), nil
			case strings.Contains(text, "Good Two"):
				return unitAt(0.6), nil
			}
			return []float32{1, 0}, nil
		},
	}
	svc := newTestService(t, embedder, testConfig(writeCorpus(t, doc)))
	require.NoError(t, svc.EnsureLoaded(context.Background()))

	results, err := svc.Recommend(context.Background(), Request{ProfileText: "query", TopK: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byID := map[string]RecommendationResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	assert.Equal(t, 0.0, byID["broken"].SemanticSimilarityRaw)
	assert.Equal(t, 0.0, byID["broken"].SemanticSimilarityNormalized)
	assert.InDelta(t, 0.0, byID["ok1"].SemanticSimilarityNormalized, 1e-6)
	assert.InDelta(t, 1.0, byID["ok2"].SemanticSimilarityNormalized, 1e-6)
	assert.Equal(t, "ok2", results[0].ID)
}

func TestEmbedCorpusPerEntityFallback(t *testing.T) {
	doc := `[{"id": "a", "title": "Alpha"}, {"id": "b", "title": "Broken"}]`
	embedder := &funcEmbedder{
		failBatch: failBatchContaining("Broken"),
		embed: func(text string) ([]float32, error) {
			if strings.Contains(text, "Broken") {
				return nil, errors.New("cannot encode")
			}
			return []float32{1, 0}, nil
		},
	}
	svc := newTestService(t, embedder, testConfig(writeCorpus(t, doc)))
	entities, err := ParseCorpus([]byte(doc))
	require.NoError(t, err)

	unavailable, err := svc.embedCorpus(context.Background(), entities)
	require.NoError(t, err)
	assert.Equal(t, 1, unavailable)
	assert.True(t, entities[0].HasEmbedding())
	assert.False(t, entities[1].HasEmbedding())

	allBroken := []CareerEntity{{ID: "x", SearchableText: "Broken"}}
	_, err = svc.embedCorpus(context.Background(), allBroken)
	assert.Error(t, err)
}

func TestEnsureLoadedLoadsOnce(t *testing.T) {
	embedder := &funcEmbedder{embed: hashingFunc()}
	svc := newTestService(t, embedder, testConfig(writeCorpus(t, sampleCorpus)))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.EnsureLoaded(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	batch, _ := embedder.calls()
	assert.Equal(t, 2, batch, "one corpus batch and one trait batch")
	assert.Equal(t, 8, svc.CorpusSize())
}

func TestInvalidateReloads(t *testing.T) {
	embedder := &funcEmbedder{embed: hashingFunc()}
	path := writeCorpus(t, `["Nurse", "Pilot"]`)
	svc := newTestService(t, embedder, testConfig(path))
	ctx := context.Background()

	require.NoError(t, svc.EnsureLoaded(ctx))
	assert.Equal(t, 2, svc.CorpusSize())

	require.NoError(t, os.WriteFile(path, []byte(`["Nurse", "Pilot", "Judge"]`), 0o644))
	require.NoError(t, svc.EnsureLoaded(ctx))
	assert.Equal(t, 2, svc.CorpusSize(), "cache survives until invalidated")

	svc.Invalidate()
	assert.Equal(t, 0, svc.CorpusSize())
	assert.Nil(t, svc.Entities())
	require.NoError(t, svc.EnsureLoaded(ctx))
	assert.Equal(t, 3, svc.CorpusSize())

	batch, _ := embedder.calls()
	assert.Equal(t, 4, batch)
}

func TestEnsureLoadedMissingCorpusIsRetried(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "careers.json")
	svc := newTestService(t, NewHashingEmbedder(32), testConfig(path))

	err := svc.EnsureLoaded(context.Background())
	assert.ErrorIs(t, err, ErrCorpusNotFound)
	_, err = svc.Recommend(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrCorpusNotFound)

	require.NoError(t, os.WriteFile(path, []byte(`["Nurse"]`), 0o644))
	require.NoError(t, svc.EnsureLoaded(context.Background()))
	assert.Equal(t, 1, svc.CorpusSize())
}

func TestEnsureLoadedEmptyCorpus(t *testing.T) {
	svc := newTestService(t, NewHashingEmbedder(32), testConfig(writeCorpus(t, `[]`)))
	assert.ErrorIs(t, svc.EnsureLoaded(context.Background()), ErrEmptyCorpus)
}

func TestEntitiesReturnsCopy(t *testing.T) {
	svc := newTestService(t, NewHashingEmbedder(32), testConfig(writeCorpus(t, sampleCorpus)))
	require.NoError(t, svc.EnsureLoaded(context.Background()))

	entities := svc.Entities()
	require.Len(t, entities, 8)
	entities[0].Skills[0] = "mutated"
	entities[0].Embedding[0] = 42

	again := svc.Entities()
	assert.Equal(t, "Programming", again[0].Skills[0])
	assert.NotEqual(t, float32(42), again[0].Embedding[0])
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
	assert.Equal(t, "", RequestIDFrom(context.Background()))
}

func TestNewServiceRequiresEmbedder(t *testing.T) {
	_, err := NewService(nil, DefaultConfig(), zerolog.Nop())
	assert.Error(t, err)
}

func TestNewServiceKeepsZeroWeights(t *testing.T) {
	path := writeCorpus(t, sampleCorpus)
	svc := newTestService(t, NewHashingEmbedder(64), Config{
		CorpusPath: path,
		Embedder:   EmbedderConfig{Provider: ProviderHashing},
	})

	cfg := svc.Config()
	assert.Equal(t, Weights{}, cfg.Weights)
	assert.Equal(t, 0.0, cfg.FlatSimilarityDivisor)
	assert.Equal(t, DefaultConfig().TopK, cfg.TopK)
	assert.Equal(t, DefaultConfig().UpliftExponent, cfg.UpliftExponent)

	recs, err := svc.Recommend(context.Background(), Request{ProfileText: "software programming", Traits: TraitProfile{"Technical": 9}})
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Equal(t, 0, r.FinalScore)
		assert.Equal(t, LabelLow, r.MatchLabel)
	}
}
