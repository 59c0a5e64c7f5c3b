// Package rerank implements C7, the greedy slot-by-slot diversity
// reranker. This generalizes the teacher's
// DiversityFilter.applyIntraListDiversityFilter greedy-selection loop
// (internal/services/diversity_filter.go) from a single intra-list
// similarity penalty to the five interacting adjustments of spec.md
// section 4.7, with explicit immutable state carried between slots.
package rerank

import (
	"github.com/rohankatakam/foryou-podcast-core/internal/candidates"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// Params are the reranker's tunables, spec.md section 4.7.
type Params struct {
	SeriesCap        int
	AdjacencyPenalty float64
	TopicThreshold   int
	TopicPenalty     float64
	EntityThreshold  int
	EntityPenalty    float64
	ContrarianBoost  float64
}

// Rerank greedily fills up to size slots from pool, applying the
// diversity penalties and narrative boost after each selection. It stops
// early if the pool is exhausted or every remaining candidate's
// temp_score is 0 (all series caps hit).
func Rerank(pool []candidates.Candidate, size int, params Params) []candidates.Candidate {
	remaining := append([]candidates.Candidate(nil), pool...)
	state := NewState()
	out := make([]candidates.Candidate, 0, size)

	for len(out) < size && len(remaining) > 0 {
		idx, best := selectSlot(remaining, state, params)
		if best == 0 {
			break
		}

		out = append(out, remaining[idx])
		state = state.Apply(remaining[idx].View)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	return out
}

func selectSlot(remaining []candidates.Candidate, state State, params Params) (int, float64) {
	bestIdx := 0
	bestTemp := tempScore(remaining[0], state, params)

	for i := 1; i < len(remaining); i++ {
		t := tempScore(remaining[i], state, params)
		if t > bestTemp || (t == bestTemp && betterTiebreak(remaining[i], remaining[bestIdx])) {
			bestIdx, bestTemp = i, t
		}
	}

	return bestIdx, bestTemp
}

// tempScore applies the five adjustments of spec.md section 4.7 in
// order. The series cap is a hard gate (returns 0 outright); the rest
// are multiplicative.
func tempScore(c candidates.Candidate, state State, p Params) float64 {
	if state.SeriesCount[c.Episode.SeriesID] >= p.SeriesCap {
		return 0
	}

	t := c.Score.BaseScore

	if c.View.PrimaryEntity != nil && state.LastEntity != nil && *c.View.PrimaryEntity == *state.LastEntity {
		t *= p.AdjacencyPenalty
	}
	if c.View.PrimaryTopic != nil && state.TopicCount[*c.View.PrimaryTopic] >= p.TopicThreshold {
		t *= p.TopicPenalty
	}
	if c.View.PrimaryEntity != nil && state.EntityCount[*c.View.PrimaryEntity] >= p.EntityThreshold {
		t *= p.EntityPenalty
	}
	if state.LastPOV != nil && *state.LastPOV == models.POVConsensus && c.View.POV == models.POVContrarian {
		t *= p.ContrarianBoost
	}

	return t
}

// betterTiebreak applies (-base_score, published_at desc, id asc) to
// break temp_score ties deterministically.
func betterTiebreak(a, b candidates.Candidate) bool {
	if a.Score.BaseScore != b.Score.BaseScore {
		return a.Score.BaseScore > b.Score.BaseScore
	}
	if !a.Episode.PublishedAt.Equal(b.Episode.PublishedAt) {
		return a.Episode.PublishedAt.After(b.Episode.PublishedAt)
	}
	return a.Episode.ID.String() < b.Episode.ID.String()
}
