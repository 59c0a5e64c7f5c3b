package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder_DeterministicForSameText(t *testing.T) {
	e := NewHashEmbedder(16)
	a, err := e.Embed(context.Background(), "rate hikes and credit spreads")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "rate hikes and credit spreads")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHashEmbedder_IsUnitNorm(t *testing.T) {
	e := NewHashEmbedder(32)
	v, err := e.Embed(context.Background(), "quarterly earnings call")
	require.NoError(t, err)

	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-5)
}

func TestCosine_IdenticalVectorsGiveOne(t *testing.T) {
	e := NewHashEmbedder(8)
	v, err := e.Embed(context.Background(), "private credit")
	require.NoError(t, err)

	sim, err := Cosine(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestCosine_DimensionMismatchErrors(t *testing.T) {
	_, err := Cosine(Vector{1, 0}, Vector{1, 0, 0})
	assert.Error(t, err)
}

func TestRemoteEmbedder_NoFnConfiguredFailsClosed(t *testing.T) {
	e := NewRemoteEmbedder(4, nil)
	_, err := e.Embed(context.Background(), "anything")
	assert.Error(t, err)
}

func TestRemoteEmbedder_NormalizesProviderOutput(t *testing.T) {
	e := NewRemoteEmbedder(3, func(ctx context.Context, text string) ([]float32, error) {
		return []float32{3, 4, 0}, nil
	})
	v, err := e.Embed(context.Background(), "macro outlook")
	require.NoError(t, err)

	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-6)
}

func TestRemoteEmbedder_WrongDimensionErrors(t *testing.T) {
	e := NewRemoteEmbedder(3, func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	})
	_, err := e.Embed(context.Background(), "macro outlook")
	assert.Error(t, err)
}
