// Package scoring implements C5, the three-component scorer.
package scoring

import (
	"math"

	"github.com/rohankatakam/foryou-podcast-core/internal/embedding"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// Params are the scorer's tunables, spec.md section 4.5.
type Params struct {
	WInsight    float64
	WCred       float64
	LambdaFresh float64
	FloorFresh  float64
	WSim        float64
	WAlpha      float64
	WFresh      float64
}

// Score is the per-episode scoring tuple returned for observability.
type Score struct {
	BaseScore float64
	SSim      float64
	SAlpha    float64
	SFresh    float64
}

// Compute computes BaseScore and its three components for one gate-passing
// episode. userVector is nil for cold start, in which case S_sim is the
// neutral 0.5 (spec.md section 9's committed open-question resolution).
func Compute(ep *models.Episode, view models.View, userVector embedding.Vector, p Params) (Score, error) {
	sSim, err := similarity(userVector, ep.Embedding)
	if err != nil {
		return Score{}, err
	}

	sAlpha := (p.WInsight*float64(ep.Insight) + p.WCred*float64(ep.Credibility)) / 4.0
	sFresh := math.Max(p.FloorFresh, math.Exp(-p.LambdaFresh*float64(view.DaysOld)))
	base := p.WSim*sSim + p.WAlpha*sAlpha + p.WFresh*sFresh

	return Score{BaseScore: base, SSim: sSim, SAlpha: sAlpha, SFresh: sFresh}, nil
}

func similarity(userVector embedding.Vector, episodeEmbedding []float32) (float64, error) {
	if userVector == nil {
		return 0.5, nil
	}

	cos, err := embedding.Cosine(userVector, embedding.Vector(episodeEmbedding))
	if err != nil {
		return 0, err
	}
	return math.Max(0, cos), nil
}
