package careers

import "math"

// flatSpanEpsilon is the largest min-max span treated as a flat similarity
// distribution.
const flatSpanEpsilon = 1e-9

// Similarity is the semantic signal of one entity for one request.
type Similarity struct {
	Raw        float64
	Normalized float64
	// Available is false when the entity had no embedding, in which case
	// both values are zero.
	Available bool
}

// similarities scores query against every corpus vector. Raw values are
// cosine similarities; normalized values are a min-max rescale over the
// available entities, or clamp(raw/flatDivisor, 0, 1) when the span is at
// most flatSpanEpsilon. A nil vector marks an unavailable entity, which is
// excluded from the span and scores zero.
func similarities(query []float32, vectors [][]float32, flatDivisor float64) []Similarity {
	out := make([]Similarity, len(vectors))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, vec := range vectors {
		if len(vec) == 0 {
			continue
		}
		raw := cosineSimilarity(query, vec)
		out[i] = Similarity{Raw: raw, Available: true}
		lo = math.Min(lo, raw)
		hi = math.Max(hi, raw)
	}
	if math.IsInf(lo, 1) {
		return out
	}

	span := hi - lo
	for i := range out {
		if !out[i].Available {
			continue
		}
		if span > flatSpanEpsilon {
			out[i].Normalized = (out[i].Raw - lo) / span
		} else {
			out[i].Normalized = flatNormalize(out[i].Raw, flatDivisor)
		}
	}
	return out
}

// flatNormalize rescales a raw similarity when min-max scaling is degenerate.
// A non-positive divisor disables the fallback.
func flatNormalize(raw, divisor float64) float64 {
	if divisor <= 0 {
		return 0
	}
	return clamp01(raw / divisor)
}
