package careers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyCorpus means the corpus document parsed but held no entries.
var ErrEmptyCorpus = errors.New("corpus contains no careers")

// Observer receives engine events for instrumentation.
type Observer interface {
	CorpusLoaded(entities, unavailable int, took time.Duration)
	CorpusLoadFailed(err error)
	RecommendationServed(returned int, took time.Duration)
	RecommendationFailed(err error)
	SimilarityUnavailable(entities int)
}

type nopObserver struct{}

func (nopObserver) CorpusLoaded(int, int, time.Duration) {}
func (nopObserver) CorpusLoadFailed(error) {}
func (nopObserver) RecommendationServed(int, time.Duration) {}
func (nopObserver) RecommendationFailed(error) {}
func (nopObserver) SimilarityUnavailable(int) {}

// Option customises a Service.
type Option func(*Service)

// WithObserver routes engine events to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request id that Recommend logs instead of
// generating its own.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// corpusState is one loaded generation of the corpus and trait index. It is
// never mutated after load.
type corpusState struct {
	path        string
	entities    []CareerEntity
	traits      *TraitIndex
	unavailable int
}

// Service owns the process-wide corpus and trait caches and serves
// recommendations against them.
type Service struct {
	embedder Embedder
	cfg      Config
	logger   zerolog.Logger
	observer Observer

	group singleflight.Group

	mu    sync.RWMutex
	state *corpusState
	gen   uint64
}

// NewService constructs a service. Nothing is loaded until EnsureLoaded or
// the first Recommend call.
//
// Zero weights and a zero flat-similarity divisor are kept as given, so a
// bare Config{} scores every career 0. Start from DefaultConfig or
// LoadConfig and override fields from there.
func NewService(embedder Embedder, cfg Config, logger zerolog.Logger, opts ...Option) (*Service, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		embedder: embedder,
		cfg:      cfg,
		logger:   logger.With().Str("component", "careers").Logger(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the configuration the service runs with.
func (s *Service) Config() Config {
	return s.cfg
}

// Close releases embedder resources.
func (s *Service) Close() error {
	return s.embedder.Close()
}

// EnsureLoaded populates the corpus and trait caches once per generation.
// Concurrent callers share a single load; a failed load is not cached and
// the next call retries.
func (s *Service) EnsureLoaded(ctx context.Context) error {
	_, err := s.snapshot(ctx)
	return err
}

// Invalidate drops the cached corpus and trait index. The next call to
// EnsureLoaded or Recommend reloads them.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.state = nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.logger.Info().Uint64("generation", gen).Msg("corpus cache invalidated")
}

// Entities returns a copy of the loaded corpus, or nil before the first load.
func (s *Service) Entities() []CareerEntity {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	if st == nil {
		return nil
	}
	out := make([]CareerEntity, len(st.entities))
	for i, e := range st.entities {
		e.Skills = cloneStrings(e.Skills)
		e.Path = cloneStrings(e.Path)
		e.SubjectsNeeded = cloneStrings(e.SubjectsNeeded)
		e.Embedding = cloneVector(e.Embedding)
		out[i] = e
	}
	return out
}

// CorpusSize reports how many entities are loaded, 0 before the first load.
func (s *Service) CorpusSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return 0
	}
	return len(s.state.entities)
}

func (s *Service) snapshot(ctx context.Context) (*corpusState, error) {
	for {
		s.mu.RLock()
		st, gen := s.state, s.gen
		s.mu.RUnlock()
		if st != nil {
			return st, nil
		}

		v, err, _ := s.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
			s.mu.RLock()
			cur := s.state
			s.mu.RUnlock()
			if cur != nil {
				return cur, nil
			}
			loaded, err := s.load(ctx)
			if err != nil {
				return nil, err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.gen != gen {
				return nil, nil
			}
			s.state = loaded
			return loaded, nil
		})
		if err != nil {
			return nil, err
		}
		if st, _ := v.(*corpusState); st != nil {
			return st, nil
		}
		// Invalidated while loading; retry against the new generation.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (s *Service) load(ctx context.Context) (*corpusState, error) {
	start := time.Now()
	st, err := s.loadCorpus(ctx)
	if err != nil {
		s.observer.CorpusLoadFailed(err)
		s.logger.Error().Err(err).Msg("corpus load failed")
		return nil, err
	}
	took := time.Since(start)
	s.observer.CorpusLoaded(len(st.entities), st.unavailable, took)
	s.logger.Info().
		Str("path", st.path).
		Int("entities", len(st.entities)).
		Int("embeddings_unavailable", st.unavailable).
		Str("model", s.embedder.ModelID()).
		Dur("took", took).
		Msg("corpus loaded")
	return st, nil
}

func (s *Service) loadCorpus(ctx context.Context) (*corpusState, error) {
	path, err := ResolveCorpusPath(s.cfg.CorpusPath, s.cfg.CorpusFallbackPath)
	if err != nil {
		return nil, err
	}
	entities, err := ReadCorpus(path)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, path)
	}
	unavailable, err := s.embedCorpus(ctx, entities)
	if err != nil {
		return nil, err
	}
	traits, err := BuildTraitIndex(ctx, s.embedder, TraitKeywords)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int("traits", len(Traits)).Msg("trait index built")
	return &corpusState{
		path:        path,
		entities:    entities,
		traits:      traits,
		unavailable: unavailable,
	}, nil
}

// embedCorpus fills entity embeddings with one batch call, falling back to
// per-entity calls when the batch fails. It returns how many entities were
// left without a vector and fails only when none could be embedded.
func (s *Service) embedCorpus(ctx context.Context, entities []CareerEntity) (int, error) {
	texts := make([]string, len(entities))
	for i, e := range entities {
		texts[i] = e.SearchableText
	}
	vecs, err := s.embedder.EmbedTexts(ctx, texts)
	if err == nil && len(vecs) != len(texts) {
		err = fmt.Errorf("got %d vectors for %d careers", len(vecs), len(texts))
	}
	if err == nil {
		unavailable := 0
		for i := range entities {
			entities[i].Embedding = vecs[i]
			if len(vecs[i]) == 0 {
				unavailable++
			}
		}
		if unavailable == len(entities) {
			return 0, fmt.Errorf("embed corpus: %w", ErrEmbedderUnavailable)
		}
		return unavailable, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}

	s.logger.Warn().Err(err).Msg("batch corpus embedding failed, embedding careers one by one")
	unavailable := 0
	var lastErr error
	for i := range entities {
		vec, err := s.embedder.EmbedText(ctx, texts[i])
		if err != nil || len(vec) == 0 {
			if err == nil {
				err = ErrEmbedderUnavailable
			}
			lastErr = err
			unavailable++
			s.logger.Warn().Err(err).Str("career_id", entities[i].ID).Msg("career embedding unavailable")
			continue
		}
		entities[i].Embedding = vec
	}
	if unavailable == len(entities) {
		return 0, fmt.Errorf("embed corpus: %w", lastErr)
	}
	return unavailable, nil
}

// Recommend ranks the corpus for one profile. It returns either the full
// ranking or an error, never a partial list.
func (s *Service) Recommend(ctx context.Context, req Request) ([]RecommendationResult, error) {
	start := time.Now()
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := s.logger.With().Str("request_id", requestID).Logger()

	results, err := s.recommend(ctx, req, logger)
	if err != nil {
		s.observer.RecommendationFailed(err)
		logger.Error().Err(err).Msg("recommendation failed")
		return nil, err
	}
	took := time.Since(start)
	s.observer.RecommendationServed(len(results), took)
	logger.Info().
		Int("returned", len(results)).
		Int("top_k", req.TopK).
		Dur("took", took).
		Msg("recommendation served")
	return results, nil
}

func (s *Service) recommend(ctx context.Context, req Request, logger zerolog.Logger) ([]RecommendationResult, error) {
	st, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	profileText := NormalizeText(req.ProfileText)
	if profileText == "" {
		profileText = s.cfg.DefaultProfileText
	}
	query, err := s.embedder.EmbedText(ctx, profileText)
	if err != nil {
		return nil, fmt.Errorf("embed profile text: %w", err)
	}

	entities := make([]CareerEntity, len(st.entities))
	vectors := make([][]float32, len(st.entities))
	unavailable := 0
	for i, e := range st.entities {
		if !e.HasEmbedding() {
			vec, err := s.embedder.EmbedText(ctx, e.SearchableText)
			if err != nil || len(vec) == 0 {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				unavailable++
				logger.Warn().Err(err).Str("career_id", e.ID).Msg("similarity unavailable for career")
			} else {
				e.Embedding = vec
			}
		}
		entities[i] = e
		vectors[i] = e.Embedding
	}
	if unavailable > 0 {
		s.observer.SimilarityUnavailable(unavailable)
	}

	sims := similarities(query, vectors, s.cfg.FlatSimilarityDivisor)
	candidates := make([]scored, len(entities))
	for i, e := range entities {
		sig := Signals{
			Semantic: sims[i].Normalized,
			Trait:    TraitAlignment(st.traits, req.Traits, e),
			Marks:    MarksAlignment(req.Marks, e),
		}
		candidates[i] = scored{
			entity:     e,
			similarity: sims[i],
			signals:    sig,
			final:      FinalScore(CombinedScore(sig, s.cfg.Weights), s.cfg.UpliftExponent),
		}
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	return rank(candidates, req.Traits, topK), nil
}
