package careers

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"yashubustudio/careermatch/emb"
)

// ErrEmbedderUnavailable is returned by providers that were closed or never
// initialised.
var ErrEmbedderUnavailable = errors.New("embedder is not initialized")

// Embedder is the Embedding Provider: text in, fixed-length vector out.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
	ModelID() string
}

// NewEmbedder builds the provider named in cfg and wraps it with the vector
// cache.
func NewEmbedder(cfg EmbedderConfig) (Embedder, error) {
	var (
		inner Embedder
		err   error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderONNX, "":
		inner, err = NewOrtEmbedder(cfg)
	case ProviderOpenAI:
		inner, err = NewOpenAIEmbedder(cfg)
	case ProviderHashing:
		inner = NewHashingEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s embedder: %w", cfg.Provider, err)
	}
	return NewCachingEmbedder(inner, cfg.CacheDir)
}

// OrtEmbedder runs a local ONNX sentence encoder.
type OrtEmbedder struct {
	mu      sync.RWMutex
	enc     *emb.Encoder
	modelID string
}

// NewOrtEmbedder initializes the ONNX Runtime encoder.
func NewOrtEmbedder(cfg EmbedderConfig) (*OrtEmbedder, error) {
	modelID := cfg.ModelName
	if modelID == "" && cfg.ModelPath != "" {
		modelID = filepath.Base(filepath.Dir(cfg.ModelPath))
	}
	encoder := &emb.Encoder{}
	if err := encoder.Init(emb.Config{
		OrtDLL:        cfg.OrtLibrary,
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLen,
	}); err != nil {
		return nil, err
	}
	return &OrtEmbedder{enc: encoder, modelID: modelID}, nil
}

// Close releases ORT resources.
func (o *OrtEmbedder) Close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.enc != nil {
		o.enc.Close()
		o.enc = nil
	}
	return nil
}

// ModelID returns the identifier used for cache keys.
func (o *OrtEmbedder) ModelID() string {
	return "onnx:" + o.modelID
}

// EmbedText embeds a single string.
func (o *OrtEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.enc == nil {
		return nil, ErrEmbedderUnavailable
	}
	return o.enc.Encode(text)
}

// EmbedTexts embeds a slice of strings sequentially.
func (o *OrtEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := o.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// CachingEmbedder memoises vectors in memory and, when a directory is
// configured, on disk. Texts are normalised before lookup and encoding.
type CachingEmbedder struct {
	inner    Embedder
	cacheDir string
	memCache map[string][]float32
	mu       sync.RWMutex
}

// NewCachingEmbedder wraps inner and prepares the cache directory.
func NewCachingEmbedder(inner Embedder, cacheDir string) (*CachingEmbedder, error) {
	if inner == nil {
		return nil, errors.New("embedder is required")
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &CachingEmbedder{
		inner:    inner,
		cacheDir: cacheDir,
		memCache: make(map[string][]float32),
	}, nil
}

// ModelID returns the wrapped provider's identifier.
func (c *CachingEmbedder) ModelID() string {
	return c.inner.ModelID()
}

// Close drops the memory cache and closes the wrapped provider.
func (c *CachingEmbedder) Close() error {
	c.mu.Lock()
	c.memCache = make(map[string][]float32)
	c.mu.Unlock()
	return c.inner.Close()
}

// EmbedText embeds a single string with caching.
func (c *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	normalized := NormalizeText(text)
	key := c.cacheKey(normalized)
	if vec, ok := c.lookup(key); ok {
		return vec, nil
	}
	vec, err := c.inner.EmbedText(ctx, normalized)
	if err != nil {
		return nil, err
	}
	c.store(key, vec)
	return cloneVector(vec), nil
}

// EmbedTexts embeds all cache misses in one call to the wrapped provider.
func (c *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missTexts []string
	var missIdx []int
	for i, t := range texts {
		normalized := NormalizeText(t)
		keys[i] = c.cacheKey(normalized)
		if vec, ok := c.lookup(keys[i]); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, normalized)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := c.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		c.store(keys[i], vecs[j])
		out[i] = cloneVector(vecs[j])
	}
	return out, nil
}

func (c *CachingEmbedder) lookup(key string) ([]float32, bool) {
	c.mu.RLock()
	vec, ok := c.memCache[key]
	c.mu.RUnlock()
	if ok {
		return cloneVector(vec), true
	}
	vec, err := c.loadFromDisk(key)
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	c.memCache[key] = vec
	c.mu.Unlock()
	return cloneVector(vec), true
}

func (c *CachingEmbedder) store(key string, vec []float32) {
	c.mu.Lock()
	c.memCache[key] = cloneVector(vec)
	c.mu.Unlock()
	_ = c.saveToDisk(key, vec)
}

func (c *CachingEmbedder) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.inner.ModelID())
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachingEmbedder) loadFromDisk(key string) ([]float32, error) {
	if c.cacheDir == "" {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(c.cacheDir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("cache file too small: %s", path)
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if length == 0 || len(data) != length*4 {
		return nil, fmt.Errorf("cache length mismatch: %s", path)
	}
	vec := make([]float32, length)
	for i := 0; i < length; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}

func (c *CachingEmbedder) saveToDisk(key string, vec []float32) error {
	if c.cacheDir == "" || len(vec) == 0 {
		return nil
	}
	path := filepath.Join(c.cacheDir, key+".bin")
	tmp := path + ".tmp"
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
