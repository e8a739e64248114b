package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "scaled", a: []float32{1, 2, 3}, b: []float32{2, 4, 6}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "empty a", a: nil, b: []float32{1}, want: 0},
		{name: "empty b", a: []float32{1}, b: []float32{}, want: 0},
		{name: "dimension mismatch", a: []float32{1, 0}, b: []float32{1, 0, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "near zero norm", a: []float32{1e-30, 0}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestSimilarity_SelfIsOne(t *testing.T) {
	vectors := [][]float32{
		{1},
		{0.3, -0.7, 0.2},
		{1e-3, 5e-4, 2e-3, 9e-4},
		{1000, -2000, 3000},
	}
	for _, v := range vectors {
		assert.InDelta(t, 1.0, Similarity(v, v), 1e-6)
	}
}

func TestSimilarity_EmptyIsZero(t *testing.T) {
	v := []float32{0.5, 0.5}
	assert.Equal(t, float32(0), Similarity(v, nil))
	assert.Equal(t, float32(0), Similarity(nil, v))
	assert.Equal(t, float32(0), Similarity([]float32{}, []float32{}))
}

func TestSimilarity_Clamping(t *testing.T) {
	t.Run("anti-correlated clamps to zero", func(t *testing.T) {
		a := []float32{1, 0.5}
		b := []float32{-1, -0.5}
		require.Less(t, Cosine(a, b), 0.0)
		assert.Equal(t, float32(0), Similarity(a, b))
	})

	t.Run("positive similarity passes through", func(t *testing.T) {
		a := []float32{1, 1}
		b := []float32{1, 0}
		assert.InDelta(t, 1/math.Sqrt2, Similarity(a, b), 1e-6)
	})

	t.Run("never exceeds one", func(t *testing.T) {
		a := []float32{0.1, 0.1, 0.1}
		assert.LessOrEqual(t, Similarity(a, a), float32(1))
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{name: "unit vector remains unchanged", input: []float32{1, 0, 0}, expected: []float32{1, 0, 0}},
		{name: "scale non-unit vector", input: []float32{3, 4}, expected: []float32{0.6, 0.8}},
		{name: "negative values", input: []float32{-1, 1}, expected: []float32{-1 / float32(math.Sqrt2), 1 / float32(math.Sqrt2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			require.Len(t, result, len(tt.expected))
			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6, "element %d", i)
			}
		})
	}
}

func TestNormalize_ZeroAndEmpty(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
	assert.Empty(t, Normalize(nil))

	input := []float32{3, 4}
	_ = Normalize(input)
	assert.Equal(t, []float32{3, 4}, input, "input should not be modified")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]float32{0.1, -0.2}))
	assert.ErrorIs(t, Validate([]float32{0.1, float32(math.NaN())}), ErrNonFinite)
	assert.ErrorIs(t, Validate([]float32{float32(math.Inf(1))}), ErrNonFinite)
	assert.ErrorIs(t, Validate([]float32{float32(math.Inf(-1)), 0}), ErrNonFinite)
}
