package careers

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingEmbedder is a deterministic bag-of-words provider: every token is
// hashed into one of a fixed number of buckets and the counts are
// L2-normalised. It needs no model files, which makes it useful offline and
// in tests.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder returns a provider producing vectors of length dims.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = 384
	}
	return &HashingEmbedder{dims: dims}
}

// ModelID returns the identifier used for cache keys.
func (h *HashingEmbedder) ModelID() string {
	return "hashing"
}

// Close is a no-op.
func (h *HashingEmbedder) Close() error {
	return nil
}

// EmbedText hashes the tokens of text into a vector.
func (h *HashingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, h.dims)
	for _, tok := range tokenize(text) {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(tok))
		vec[int(hasher.Sum32()%uint32(h.dims))]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

// EmbedTexts hashes each text in turn.
func (h *HashingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := h.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
