// Package candidates implements C6, bounded top-K candidate selection.
//
// The catalog can be arbitrarily large while N_candidates stays fixed, so
// a bounded min-heap keeps this component's memory at O(N_candidates)
// regardless of catalog size. No example repository in the corpus ships a
// bounded-top-K container; container/heap is the standard-library answer
// to exactly this shape of problem and is used here for that reason.
package candidates

import (
	"container/heap"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/embedding"
	"github.com/rohankatakam/foryou-podcast-core/internal/gate"
	"github.com/rohankatakam/foryou-podcast-core/internal/scoring"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// Candidate is a scored, gate-passing episode.
type Candidate struct {
	Episode *models.Episode
	View    models.View
	Score   scoring.Score
}

// Selector streams the catalog, gates and scores each episode, and keeps
// the top N_candidates by BaseScore.
type Selector struct {
	scoreParams Params
	ciMin       int
	nCandidates int
	logger      *logrus.Logger
}

// Params bundles the scorer tunables the selector needs to compute each
// candidate's score.
type Params = scoring.Params

func New(scoreParams Params, ciMin, nCandidates int, logger *logrus.Logger) *Selector {
	return &Selector{scoreParams: scoreParams, ciMin: ciMin, nCandidates: nCandidates, logger: logger}
}

// Select runs the gate and scorer over every view and returns the top
// N_candidates sorted in descending BaseScore order, tie-broken by
// (-BaseScore, published_at desc, id asc).
func (s *Selector) Select(views []models.View, userVector embedding.Vector, excludedIDs map[uuid.UUID]struct{}) []Candidate {
	h := &candidateHeap{}
	heap.Init(h)

	for _, v := range views {
		result := gate.Evaluate(v.Episode, excludedIDs, s.ciMin)
		if !result.Pass {
			continue
		}

		score, err := scoring.Compute(v.Episode, v, userVector, s.scoreParams)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).WithField("episode_id", v.Episode.ID).Warn("candidates: scoring failed, excluding episode")
			}
			continue
		}

		cand := Candidate{Episode: v.Episode, View: v, Score: score}
		if h.Len() < s.nCandidates {
			heap.Push(h, cand)
		} else if betterRank(cand, (*h)[0]) {
			heap.Pop(h)
			heap.Push(h, cand)
		}
	}

	out := make([]Candidate, h.Len())
	copy(out, *h)
	sort.Slice(out, func(i, j int) bool { return betterRank(out[i], out[j]) })
	return out
}

// betterRank reports whether a should be ranked ahead of b under the
// tie-break rule (-BaseScore, published_at desc, id asc).
func betterRank(a, b Candidate) bool {
	if a.Score.BaseScore != b.Score.BaseScore {
		return a.Score.BaseScore > b.Score.BaseScore
	}
	if !a.Episode.PublishedAt.Equal(b.Episode.PublishedAt) {
		return a.Episode.PublishedAt.After(b.Episode.PublishedAt)
	}
	return a.Episode.ID.String() < b.Episode.ID.String()
}

// candidateHeap is a min-heap over "worseness": its root is always the
// weakest candidate currently held, so Selector can evict it in O(log N)
// when a better candidate arrives.
type candidateHeap []Candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	// h[i] is worse than h[j] iff h[j] outranks h[i].
	return betterRank(h[j], h[i])
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(Candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
