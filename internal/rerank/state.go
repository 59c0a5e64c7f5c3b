package rerank

import (
	"github.com/google/uuid"

	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// State carries the reranker's trackers across slots. It is treated as an
// immutable value: Apply returns a new State rather than mutating the
// receiver, which makes each slot's selection independently testable and
// keeps Q5 (determinism) trivially true by construction.
type State struct {
	SeriesCount map[uuid.UUID]int
	TopicCount  map[string]int
	EntityCount map[string]int
	LastEntity  *string
	LastPOV     *models.POV
}

// NewState returns the empty state a new session's queue build starts
// from.
func NewState() State {
	return State{
		SeriesCount: make(map[uuid.UUID]int),
		TopicCount:  make(map[string]int),
		EntityCount: make(map[string]int),
	}
}

func (s State) clone() State {
	next := State{
		SeriesCount: make(map[uuid.UUID]int, len(s.SeriesCount)),
		TopicCount:  make(map[string]int, len(s.TopicCount)),
		EntityCount: make(map[string]int, len(s.EntityCount)),
		LastEntity:  s.LastEntity,
		LastPOV:     s.LastPOV,
	}
	for k, v := range s.SeriesCount {
		next.SeriesCount[k] = v
	}
	for k, v := range s.TopicCount {
		next.TopicCount[k] = v
	}
	for k, v := range s.EntityCount {
		next.EntityCount[k] = v
	}
	return next
}

// Apply returns the state after selecting the given view for a slot.
func (s State) Apply(v models.View) State {
	next := s.clone()

	next.SeriesCount[v.Episode.SeriesID]++
	if v.PrimaryTopic != nil {
		next.TopicCount[*v.PrimaryTopic]++
	}
	if v.PrimaryEntity != nil {
		next.EntityCount[*v.PrimaryEntity]++
		entity := *v.PrimaryEntity
		next.LastEntity = &entity
	} else {
		next.LastEntity = nil
	}

	pov := v.POV
	next.LastPOV = &pov

	return next
}
