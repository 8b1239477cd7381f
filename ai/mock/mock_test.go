package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("cloud computing", 16)
	b := DeterministicVector("cloud computing", 16)
	c := DeterministicVector("cooking", 16)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestMockEmbedder(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	v, err := m.EmbedText(ctx, "x")
	require.NoError(t, err)
	assert.Len(t, v, DefaultDimension)

	m.Dimension = 8
	vs, err := m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Len(t, vs[0], 8)
	assert.Equal(t, 2, m.CallCount())

	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{float32(len(text))}, nil
	}
	vs, err = m.EmbedTexts(ctx, []string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{3}}, vs)

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Nil(t, m.EmbedTextFunc)
}

func TestMockCriteriaExtractor_Heuristic(t *testing.T) {
	m := NewMockCriteriaExtractor()
	ctx := context.Background()

	tests := []struct {
		query     string
		years     int
		org       []string
		expertise []string
	}{
		{query: "Find experts who worked at Google", org: []string{"Google"}},
		{query: "Find experts in Cloud Computing more than 5 years of experience", years: 5, expertise: []string{"Cloud Computing"}},
		{query: "i want people who working in the AppGenius Inc. more tha 12 yeasr of exxperinse", years: 0},
		{query: "anyone with 10+ years at AppGenius Inc.", years: 10, org: []string{"AppGenius Inc."}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, err := m.ExtractCriteria(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.years, c.MinYears())
			assert.Equal(t, tt.org, c.Organization)
			assert.Equal(t, tt.expertise, c.Expertise)
		})
	}
	assert.Equal(t, len(tests), m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	mp := p.(*MockProvider)

	assert.Same(t, mp.GetMockEmbedder(), p.Embedder())
	assert.Same(t, mp.GetMockExtractor(), p.CriteriaExtractor())
	assert.False(t, mp.Closed())
	require.NoError(t, p.Close())
	assert.True(t, mp.Closed())
}
