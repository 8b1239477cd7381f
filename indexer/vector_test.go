package indexer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
		want  []float32
	}{
		{name: "already unit", input: []float32{1, 0, 0}, want: []float32{1, 0, 0}},
		{name: "3-4-5", input: []float32{3, 4}, want: []float32{0.6, 0.8}},
		{name: "negative", input: []float32{-1, 2, -2}, want: []float32{-1.0 / 3, 2.0 / 3, -2.0 / 3}},
		{name: "zero vector", input: []float32{0, 0}, want: []float32{0, 0}},
		{name: "empty", input: []float32{}, want: []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeVector(tt.input)
			assert.InDeltaSlice(t, tt.want, got, 1e-6)
		})
	}
}

func TestNormalizeVector_DoesNotModifyInput(t *testing.T) {
	input := []float32{2, 0}
	got := NormalizeVector(input)

	assert.Equal(t, []float32{2, 0}, input)

	var sum float64
	for _, v := range got {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
}
