package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"

	"golang.org/x/text/unicode/norm"
)

// Embedder maps text to a unit-norm vector of fixed dimension. Callers
// must treat any error as "embedding unavailable" and fall back to a
// null user vector (spec.md section 4.2) rather than aborting the
// surrounding request.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dimensions() int
}

// HashEmbedder is a deterministic, offline stand-in for a real embedding
// model: the same text always maps to the same vector, and similar text
// does not reliably map to similar vectors. It exists for tests and for
// environments with no embedding provider configured, never for
// production ranking quality.
type HashEmbedder struct {
	dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Dimensions() int { return h.dims }

func (h *HashEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	normalized := norm.NFC.String(text)
	sum := sha256.Sum256([]byte(normalized))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	v := make(Vector, h.dims)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return Normalize(v), nil
}

// RemoteEmbedder calls an external embedding provider through a pluggable
// function, matching spec.md's treatment of the embedding model as an
// external collaborator (section 1, out of scope) the core only consumes
// through an interface. Fn is expected to be supplied by the outer
// application wiring (an HTTP client against the provider's API); a nil
// Fn makes every call fail closed, which callers already handle via the
// embedding_unavailable fallback.
type RemoteEmbedder struct {
	dims int
	Fn   func(ctx context.Context, text string) ([]float32, error)
}

func NewRemoteEmbedder(dims int, fn func(ctx context.Context, text string) ([]float32, error)) *RemoteEmbedder {
	return &RemoteEmbedder{dims: dims, Fn: fn}
}

func (r *RemoteEmbedder) Dimensions() int { return r.dims }

func (r *RemoteEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	if r.Fn == nil {
		return nil, fmt.Errorf("embedding: no remote provider configured")
	}
	raw, err := r.Fn(ctx, norm.NFC.String(text))
	if err != nil {
		return nil, fmt.Errorf("embedding: remote provider call failed: %w", err)
	}
	if len(raw) != r.dims {
		return nil, fmt.Errorf("embedding: remote provider returned dimension %d, want %d", len(raw), r.dims)
	}
	return Normalize(Vector(raw)), nil
}
