package careers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	defaultConfigFile = "config.yaml"

	// ConfigPathEnvVar overrides the configuration file location.
	ConfigPathEnvVar = "CAREERMATCH_CONFIG"

	envPrefix = "CAREERMATCH_"
)

// Embedding provider names accepted in EmbedderConfig.Provider.
const (
	ProviderONNX    = "onnx"
	ProviderOpenAI  = "openai"
	ProviderHashing = "hashing"
)

// Weights scales the three signals before they are summed. They are used
// as given and are not normalised to sum to one.
type Weights struct {
	Semantic float64 `koanf:"semantic" json:"semantic"`
	Trait    float64 `koanf:"trait" json:"trait"`
	Marks    float64 `koanf:"marks" json:"marks"`
}

// EmbedderConfig selects and configures the Embedding Provider.
type EmbedderConfig struct {
	Provider      string `koanf:"provider" json:"provider" validate:"oneof=onnx openai hashing"`
	ModelName     string `koanf:"model_name" json:"modelName"`
	OrtLibrary    string `koanf:"ort_library" json:"ortLibrary"`
	ModelPath     string `koanf:"model_path" json:"modelPath" validate:"required_if=Provider onnx"`
	TokenizerPath string `koanf:"tokenizer_path" json:"tokenizerPath" validate:"required_if=Provider onnx"`
	MaxSeqLen     int    `koanf:"max_seq_len" json:"maxSeqLen" validate:"gte=0"`
	CacheDir      string `koanf:"cache_dir" json:"cacheDir"`
	APIKey        string `koanf:"api_key" json:"-"`
	BaseURL       string `koanf:"base_url" json:"baseUrl"`
	Dimensions    int    `koanf:"dimensions" json:"dimensions" validate:"gte=0"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `koanf:"addr" json:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format" validate:"omitempty,oneof=json console"`
}

// Config aggregates runtime settings.
type Config struct {
	CorpusPath         string `koanf:"corpus_path" json:"corpusPath" validate:"required"`
	CorpusFallbackPath string `koanf:"corpus_fallback_path" json:"corpusFallbackPath"`

	Weights Weights `koanf:"weights" json:"weights"`

	// UpliftExponent is applied to the combined score. Values below one lift
	// low scores; 0.6 is a tuning heuristic.
	UpliftExponent float64 `koanf:"uplift_exponent" json:"upliftExponent" validate:"gt=0"`
	// FlatSimilarityDivisor rescales raw similarities when the corpus-wide
	// span is too small for min-max scaling. 0.6 is a tuning heuristic.
	FlatSimilarityDivisor float64 `koanf:"flat_similarity_divisor" json:"flatSimilarityDivisor" validate:"gte=0"`

	TopK               int    `koanf:"top_k" json:"topK" validate:"gt=0"`
	DefaultProfileText string `koanf:"default_profile_text" json:"defaultProfileText"`

	Embedder EmbedderConfig `koanf:"embedder" json:"embedder"`
	Server   ServerConfig   `koanf:"server" json:"server"`
	Log      LogConfig      `koanf:"log" json:"log"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		CorpusPath:         "model/careers_india_enriched.json",
		CorpusFallbackPath: "model/careers_india.json",
		Weights: Weights{
			Semantic: 0.65,
			Trait:    0.25,
			Marks:    0.10,
		},
		UpliftExponent:        0.6,
		FlatSimilarityDivisor: 0.6,
		TopK:                  6,
		DefaultProfileText:    "student seeking career guidance",
		Embedder: EmbedderConfig{
			Provider:      ProviderONNX,
			ModelName:     "all-MiniLM-L6-v2",
			ModelPath:     "models/all-MiniLM-L6-v2/model.onnx",
			TokenizerPath: "models/all-MiniLM-L6-v2/tokenizer.json",
			MaxSeqLen:     256,
			CacheDir:      "cache",
			Dimensions:    384,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// ApplyDefaults populates zero values with defaults. Weights are left as
// they are because zero is a meaningful weight.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.CorpusPath == "" {
		c.CorpusPath = def.CorpusPath
	}
	if c.UpliftExponent == 0 {
		c.UpliftExponent = def.UpliftExponent
	}
	if c.TopK <= 0 {
		c.TopK = def.TopK
	}
	if strings.TrimSpace(c.DefaultProfileText) == "" {
		c.DefaultProfileText = def.DefaultProfileText
	}
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = def.Embedder.Provider
	}
	if c.Embedder.ModelName == "" {
		c.Embedder.ModelName = def.Embedder.ModelName
	}
	if c.Embedder.MaxSeqLen == 0 {
		c.Embedder.MaxSeqLen = def.Embedder.MaxSeqLen
	}
	if c.Embedder.Dimensions == 0 {
		c.Embedder.Dimensions = def.Embedder.Dimensions
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for values the engine cannot use.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig layers defaults, an optional YAML file and environment
// variables. An empty path falls back to $CAREERMATCH_CONFIG and then
// config.yaml; a missing default file is not an error.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(ConfigPathEnvVar)
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// legacyEnv maps the variable names used by earlier deployments.
var legacyEnv = map[string]string{
	"SBERT_MODEL":      "embedder.model_name",
	"CAREERS_JSON":     "corpus_path",
	"WEIGHT_SBERT":     "weights.semantic",
	"WEIGHT_TRAIT":     "weights.trait",
	"WEIGHT_MARKS":     "weights.marks",
	"FINAL_UPLIFT_EXP": "uplift_exponent",
}

// envKey turns CAREERMATCH_EMBEDDER__MODEL_PATH into embedder.model_path.
// Unknown variables map to "" and are skipped.
func envKey(key string) string {
	if strings.HasPrefix(key, envPrefix) {
		if key == ConfigPathEnvVar {
			return ""
		}
		trimmed := strings.TrimPrefix(key, envPrefix)
		return strings.ToLower(strings.ReplaceAll(trimmed, "__", "."))
	}
	return legacyEnv[key]
}
