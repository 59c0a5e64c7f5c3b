// Package uservector implements C3, the user-interest-vector builder.
package uservector

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/rohankatakam/foryou-podcast-core/internal/embedding"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// CatalogLookup is the narrow catalog surface the builder needs: episode
// embeddings by id.
type CatalogLookup interface {
	Get(id uuid.UUID) (*models.Episode, bool)
}

// Builder produces V_activity from an engagement snapshot, per spec.md
// section 4.3.
type Builder struct {
	embedder   embedding.Embedder
	catalog    CatalogLookup
	wBookmark  float64
	lambdaUser float64
	nMax       int
}

func New(embedder embedding.Embedder, catalog CatalogLookup, wBookmark, lambdaUser float64, nMax int) *Builder {
	return &Builder{
		embedder:   embedder,
		catalog:    catalog,
		wBookmark:  wBookmark,
		lambdaUser: lambdaUser,
		nMax:       nMax,
	}
}

// Build returns a unit vector, or nil (cold start). snapshot must already
// be in reverse-chronological order, the order engagement.Log.Snapshot
// returns. An embedding-provider failure on the interests fallback path
// degrades to nil rather than propagating, per spec.md's
// embedding_unavailable policy.
func (b *Builder) Build(ctx context.Context, snapshot []models.Engagement, interests []string, now time.Time) (embedding.Vector, error) {
	interactions := selectInteractions(snapshot, b.nMax)
	if len(interactions) == 0 {
		return b.coldStart(ctx, interests)
	}

	dims := b.embedder.Dimensions()
	weightedSum := make([]float64, dims)
	var totalWeight float64

	for _, it := range interactions {
		ep, ok := b.catalog.Get(it.EpisodeID)
		if !ok || len(ep.Embedding) != dims {
			continue
		}

		daysSince := now.Sub(it.Timestamp).Hours() / 24
		w := weightType(it.Type, b.wBookmark) * math.Exp(-b.lambdaUser*daysSince)

		e64 := make([]float64, dims)
		for i, x := range ep.Embedding {
			e64[i] = float64(x)
		}
		floats.AddScaled(weightedSum, w, e64)
		totalWeight += w
	}

	if totalWeight == 0 {
		return b.coldStart(ctx, interests)
	}

	floats.Scale(1/totalWeight, weightedSum)
	mean := make(embedding.Vector, dims)
	for i, x := range weightedSum {
		mean[i] = float32(x)
	}
	return embedding.Normalize(mean), nil
}

func (b *Builder) coldStart(ctx context.Context, interests []string) (embedding.Vector, error) {
	if len(interests) == 0 {
		return nil, nil
	}

	v, err := b.embedder.Embed(ctx, strings.Join(interests, ", "))
	if err != nil {
		return nil, nil
	}
	return embedding.Normalize(v), nil
}

// selectInteractions takes the N_max most recent view/bookmark entries
// (dismisses never contribute, per spec.md section 9's open-question
// resolution) and deduplicates by episode id, keeping the stronger
// signal and discarding the weaker/older duplicate.
func selectInteractions(snapshot []models.Engagement, nMax int) []models.Engagement {
	capped := make([]models.Engagement, 0, nMax)
	for _, e := range snapshot {
		if e.Type != models.EngagementView && e.Type != models.EngagementBookmark {
			continue
		}
		capped = append(capped, e)
		if len(capped) == nMax {
			break
		}
	}
	return dedupeByEpisode(capped)
}

func dedupeByEpisode(interactions []models.Engagement) []models.Engagement {
	best := make(map[uuid.UUID]models.Engagement, len(interactions))
	order := make([]uuid.UUID, 0, len(interactions))

	for _, e := range interactions {
		existing, ok := best[e.EpisodeID]
		if !ok {
			best[e.EpisodeID] = e
			order = append(order, e.EpisodeID)
			continue
		}
		if signalStrength(e.Type) > signalStrength(existing.Type) {
			best[e.EpisodeID] = e
		}
	}

	out := make([]models.Engagement, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	// order isn't load-bearing for the algorithm (it's a weighted sum),
	// but keep it deterministic for tests.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func signalStrength(t models.EngagementType) int {
	if t == models.EngagementBookmark {
		return 2
	}
	return 1
}

func weightType(t models.EngagementType, wBookmark float64) float64 {
	if t == models.EngagementBookmark {
		return wBookmark
	}
	return 1.0
}
