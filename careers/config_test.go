package careers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Weights{Semantic: 0.65, Trait: 0.25, Marks: 0.10}, cfg.Weights)
	assert.Equal(t, 0.6, cfg.UpliftExponent)
	assert.Equal(t, 0.6, cfg.FlatSimilarityDivisor)
	assert.Equal(t, 6, cfg.TopK)
	assert.Equal(t, "student seeking career guidance", cfg.DefaultProfileText)
}

func TestApplyDefaultsKeepsZeroWeights(t *testing.T) {
	cfg := Config{Weights: Weights{Semantic: 1}}
	cfg.ApplyDefaults()
	assert.Equal(t, Weights{Semantic: 1}, cfg.Weights)
	assert.Equal(t, 6, cfg.TopK)
	assert.Equal(t, 0.6, cfg.UpliftExponent)
	assert.Equal(t, ProviderONNX, cfg.Embedder.Provider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Embedder.Provider = "word2vec"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.UpliftExponent = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Embedder.ModelPath = ""
	assert.Error(t, cfg.Validate(), "onnx needs a model path")

	cfg.Embedder.Provider = ProviderHashing
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
corpus_path: data/careers.json
top_k: 4
weights:
  semantic: 0.5
  trait: 0.3
  marks: 0.2
embedder:
  provider: hashing
  dimensions: 128
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CAREERMATCH_WEIGHTS__MARKS", "0.4")
	t.Setenv("FINAL_UPLIFT_EXP", "0.8")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data/careers.json", cfg.CorpusPath)
	assert.Equal(t, "model/careers_india.json", cfg.CorpusFallbackPath)
	assert.Equal(t, 4, cfg.TopK)
	assert.Equal(t, 0.5, cfg.Weights.Semantic)
	assert.Equal(t, 0.4, cfg.Weights.Marks)
	assert.Equal(t, 0.8, cfg.UpliftExponent)
	assert.Equal(t, ProviderHashing, cfg.Embedder.Provider)
	assert.Equal(t, 128, cfg.Embedder.Dimensions)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "embedder.model_path", envKey("CAREERMATCH_EMBEDDER__MODEL_PATH"))
	assert.Equal(t, "top_k", envKey("CAREERMATCH_TOP_K"))
	assert.Equal(t, "", envKey(ConfigPathEnvVar))
	assert.Equal(t, "weights.semantic", envKey("WEIGHT_SBERT"))
	assert.Equal(t, "", envKey("HOME"))
}
