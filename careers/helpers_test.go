package careers

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// funcEmbedder embeds through a user-supplied function and counts calls.
type funcEmbedder struct {
	mu          sync.Mutex
	embed       func(text string) ([]float32, error)
	failBatch   func(texts []string) error
	batchCalls  int
	singleCalls int
}

func (f *funcEmbedder) ModelID() string { return "func" }
func (f *funcEmbedder) Close() error    { return nil }

func (f *funcEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.singleCalls++
	f.mu.Unlock()
	return f.embed(text)
}

func (f *funcEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batchCalls++
	f.mu.Unlock()
	if f.failBatch != nil {
		if err := f.failBatch(texts); err != nil {
			return nil, err
		}
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := f.embed(t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *funcEmbedder) calls() (batch, single int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batchCalls, f.singleCalls
}

// failBatchContaining fails any batch that includes a text containing marker.
func failBatchContaining(marker string) func([]string) error {
	return func(texts []string) error {
		for _, t := range texts {
			if strings.Contains(t, marker) {
				return errors.New("batch endpoint down")
			}
		}
		return nil
	}
}

func hashingFunc() func(string) ([]float32, error) {
	h := NewHashingEmbedder(64)
	return func(text string) ([]float32, error) {
		return h.EmbedText(context.Background(), text)
	}
}

// unitAt returns a 2-d unit vector whose cosine with (1, 0) is cos.
func unitAt(cos float64) []float32 {
	return []float32{float32(cos), float32(math.Sqrt(1 - cos*cos))}
}

func writeCorpus(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "careers.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func testConfig(corpusPath string) Config {
	cfg := DefaultConfig()
	cfg.CorpusPath = corpusPath
	cfg.CorpusFallbackPath = ""
	cfg.Embedder.Provider = ProviderHashing
	cfg.Embedder.CacheDir = ""
	return cfg
}

func newTestService(t *testing.T, embedder Embedder, cfg Config) *Service {
	t.Helper()
	svc, err := NewService(embedder, cfg, zerolog.Nop())
	require.NoError(t, err)
	return svc
}
