package indexer

import "math"

// NormalizeVector scales v to unit length in a new slice.
// With unit vectors, squared L2 distance ranks neighbours exactly as
// cosine distance does. A zero vector is returned as zeros.
func NormalizeVector(v []float32) []float32 {
	result := make([]float32, len(v))

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	if sum == 0 {
		return result
	}

	inv := 1 / math.Sqrt(sum)
	for i, val := range v {
		result[i] = float32(float64(val) * inv)
	}
	return result
}
