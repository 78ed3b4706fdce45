package careers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilaritiesMinMax(t *testing.T) {
	query := []float32{1, 0}
	sims := similarities(query, [][]float32{unitAt(0.2), unitAt(0.8), unitAt(0.5)}, 0.6)
	require.Len(t, sims, 3)

	assert.InDelta(t, 0.2, sims[0].Raw, 1e-6)
	assert.InDelta(t, 0.0, sims[0].Normalized, 1e-6)
	assert.InDelta(t, 1.0, sims[1].Normalized, 1e-6)
	assert.InDelta(t, 0.5, sims[2].Normalized, 1e-6)
}

func TestSimilaritiesFlatFallback(t *testing.T) {
	query := []float32{1, 0}
	sims := similarities(query, [][]float32{unitAt(0.3), unitAt(0.3)}, 0.6)
	for _, s := range sims {
		assert.True(t, s.Available)
		assert.InDelta(t, 0.3, s.Raw, 1e-6)
		assert.InDelta(t, 0.5, s.Normalized, 1e-6)
	}

	high := similarities(query, [][]float32{unitAt(0.9)}, 0.6)
	assert.Equal(t, 1.0, high[0].Normalized)

	disabled := similarities(query, [][]float32{unitAt(0.3), unitAt(0.3)}, 0)
	assert.Equal(t, 0.0, disabled[0].Normalized)
}

func TestSimilaritiesSkipUnavailable(t *testing.T) {
	query := []float32{1, 0}
	sims := similarities(query, [][]float32{unitAt(0.4), nil, unitAt(0.6)}, 0.6)

	assert.False(t, sims[1].Available)
	assert.Equal(t, 0.0, sims[1].Raw)
	assert.Equal(t, 0.0, sims[1].Normalized)
	assert.InDelta(t, 0.0, sims[0].Normalized, 1e-6)
	assert.InDelta(t, 1.0, sims[2].Normalized, 1e-6)
}

func TestSimilaritiesAllUnavailable(t *testing.T) {
	sims := similarities([]float32{1, 0}, [][]float32{nil, nil}, 0.6)
	assert.Equal(t, []Similarity{{}, {}}, sims)
}
