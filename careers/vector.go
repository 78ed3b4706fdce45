package careers

import "math"

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is empty or has zero norm. Vectors of different length are
// compared over their common prefix.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cloneVector(vec []float32) []float32 {
	if vec == nil {
		return nil
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}
