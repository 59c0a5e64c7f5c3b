package rerank

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/foryou-podcast-core/internal/candidates"
	"github.com/rohankatakam/foryou-podcast-core/internal/scoring"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

func defaultParams() Params {
	return Params{
		SeriesCap:        2,
		AdjacencyPenalty: 0.80,
		TopicThreshold:   2,
		TopicPenalty:     0.85,
		EntityThreshold:  3,
		EntityPenalty:    0.70,
		ContrarianBoost:  1.15,
	}
}

func strPtr(s string) *string { return &s }

func candidateWith(t *testing.T, baseScore float64, seriesID uuid.UUID, topic, entity *string, pov models.POV) candidates.Candidate {
	t.Helper()
	ep := &models.Episode{ID: uuid.New(), SeriesID: seriesID, PublishedAt: time.Now()}
	return candidates.Candidate{
		Episode: ep,
		View: models.View{
			Episode:       ep,
			PrimaryTopic:  topic,
			PrimaryEntity: entity,
			POV:           pov,
		},
		Score: scoring.Score{BaseScore: baseScore},
	}
}

func TestRerank_SeriesCapNeverExceeded(t *testing.T) {
	series := uuid.New()
	var pool []candidates.Candidate
	for i := 0; i < 5; i++ {
		pool = append(pool, candidateWith(t, 0.9-float64(i)*0.01, series, nil, nil, models.POVConsensus))
	}

	out := Rerank(pool, 10, defaultParams())

	count := 0
	for _, c := range out {
		if c.Episode.SeriesID == series {
			count++
		}
	}
	assert.LessOrEqual(t, count, defaultParams().SeriesCap)
}

func TestRerank_ContrarianBoostAppliesOnlyAfterConsensus(t *testing.T) {
	consensus := candidateWith(t, 0.9, uuid.New(), nil, nil, models.POVConsensus)
	contrarianHigh := candidateWith(t, 0.85, uuid.New(), nil, nil, models.POVContrarian)
	contrarianLow := candidateWith(t, 0.5, uuid.New(), nil, nil, models.POVContrarian)

	pool := []candidates.Candidate{consensus, contrarianHigh, contrarianLow}
	out := Rerank(pool, 3, defaultParams())

	require.Len(t, out, 3)
	assert.Equal(t, consensus.Episode.ID, out[0].Episode.ID)
	assert.Equal(t, contrarianHigh.Episode.ID, out[1].Episode.ID)
}

func TestRerank_StopsWhenAllRemainingScoreZero(t *testing.T) {
	series := uuid.New()
	pool := []candidates.Candidate{
		candidateWith(t, 0.9, series, nil, nil, models.POVConsensus),
		candidateWith(t, 0.8, series, nil, nil, models.POVConsensus),
		candidateWith(t, 0.7, series, nil, nil, models.POVConsensus), // same series, hits cap
	}

	params := defaultParams()
	params.SeriesCap = 2
	out := Rerank(pool, 10, params)

	assert.Len(t, out, 2)
}

func TestRerank_TopicSaturationPenalizesThirdOccurrence(t *testing.T) {
	topic := strPtr("Macro")
	pool := []candidates.Candidate{
		candidateWith(t, 0.70, uuid.New(), topic, nil, models.POVConsensus),
		candidateWith(t, 0.69, uuid.New(), topic, nil, models.POVConsensus),
		candidateWith(t, 0.68, uuid.New(), topic, nil, models.POVConsensus),
		candidateWith(t, 0.60, uuid.New(), nil, nil, models.POVConsensus),
	}

	out := Rerank(pool, 4, defaultParams())
	require.Len(t, out, 4)
	// third Macro episode is saturated (topic_count already 2), so its
	// penalized temp_score should drop it below the unrelated episode.
	assert.NotEqual(t, pool[2].Episode.ID, out[2].Episode.ID)
}

func TestRerank_OutputNeverExceedsRequestedSize(t *testing.T) {
	var pool []candidates.Candidate
	for i := 0; i < 20; i++ {
		pool = append(pool, candidateWith(t, 0.5, uuid.New(), nil, nil, models.POVConsensus))
	}

	out := Rerank(pool, 10, defaultParams())
	assert.Len(t, out, 10)
}
