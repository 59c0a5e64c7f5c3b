// Package gate implements C4, the sequential quality gate.
package gate

import (
	"github.com/google/uuid"

	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// Reason names which rule rejected an episode, in spec.md section 4.4's
// taxonomy.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonCredibility Reason = "gate_1_credibility"
	ReasonCombined    Reason = "gate_2_combined"
	ReasonExcluded    Reason = "gate_3_excluded"
)

// Result is the outcome of evaluating one episode.
type Result struct {
	Pass   bool
	Reason Reason
}

// Evaluate runs the three gates in order, short-circuiting on the first
// failure: cheapest checks first, set-membership last.
func Evaluate(ep *models.Episode, excludedIDs map[uuid.UUID]struct{}, ciMin int) Result {
	if ep.Credibility < 2 {
		return Result{Reason: ReasonCredibility}
	}
	if ep.Credibility+ep.Insight < ciMin {
		return Result{Reason: ReasonCombined}
	}
	if _, excluded := excludedIDs[ep.ID]; excluded {
		return Result{Reason: ReasonExcluded}
	}
	return Result{Pass: true}
}
