package gate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

func TestEvaluate_RejectsLowCredibility(t *testing.T) {
	ep := &models.Episode{ID: uuid.New(), Credibility: 1, Insight: 4}
	res := Evaluate(ep, nil, 5)
	assert.False(t, res.Pass)
	assert.Equal(t, ReasonCredibility, res.Reason)
}

func TestEvaluate_RejectsBelowCombinedFloor(t *testing.T) {
	ep := &models.Episode{ID: uuid.New(), Credibility: 2, Insight: 2}
	res := Evaluate(ep, nil, 5)
	assert.False(t, res.Pass)
	assert.Equal(t, ReasonCombined, res.Reason)
}

func TestEvaluate_RejectsExcluded(t *testing.T) {
	ep := &models.Episode{ID: uuid.New(), Credibility: 3, Insight: 3}
	excluded := map[uuid.UUID]struct{}{ep.ID: {}}
	res := Evaluate(ep, excluded, 5)
	assert.False(t, res.Pass)
	assert.Equal(t, ReasonExcluded, res.Reason)
}

func TestEvaluate_PassesWhenAllGatesClear(t *testing.T) {
	ep := &models.Episode{ID: uuid.New(), Credibility: 3, Insight: 3}
	res := Evaluate(ep, nil, 5)
	assert.True(t, res.Pass)
	assert.Equal(t, ReasonNone, res.Reason)
}

func TestEvaluate_CombinedFloorIsTunable(t *testing.T) {
	ep := &models.Episode{ID: uuid.New(), Credibility: 2, Insight: 2}
	res := Evaluate(ep, nil, 4)
	assert.True(t, res.Pass)
}
