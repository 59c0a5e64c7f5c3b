package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
)

// POV classifies an episode's narrative stance, used only by the reranker's
// contrarian boost.
type POV string

const (
	POVConsensus  POV = "Consensus"
	POVContrarian POV = "Contrarian"
)

// NonConsensusLevel mirrors the ingestion pipeline's classification of how
// far an episode sits from prevailing market opinion.
type NonConsensusLevel string

const (
	NonConsensus        NonConsensusLevel = "non_consensus"
	HighlyNonConsensus  NonConsensusLevel = "highly_non_consensus"
)

// EntityMention is a named entity (company, ticker, asset class) referenced
// in an episode, with a relevance score assigned at ingestion time.
type EntityMention struct {
	Name      string `json:"name" db:"name" validate:"required"`
	Relevance int    `json:"relevance" db:"relevance" validate:"min=0,max=4"`
	Context   string `json:"context,omitempty" db:"context"`
}

// PersonMention is a named person (host, guest, executive) referenced in an
// episode.
type PersonMention struct {
	Name      string  `json:"name" db:"name" validate:"required"`
	Relevance int     `json:"relevance" db:"relevance" validate:"min=0,max=4"`
	Title     *string `json:"title,omitempty" db:"title"`
	Context   string  `json:"context,omitempty" db:"context"`
}

// Episode is the immutable catalog record described by the data model.
// Quality scores are on the 1-4 scale enforced by the quality gate.
type Episode struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	ContentID    *string            `json:"content_id,omitempty" db:"content_id"`
	PublishedAt  time.Time          `json:"published_at" db:"published_at"`
	SeriesID     uuid.UUID          `json:"series_id" db:"series_id"`
	SeriesName   string             `json:"series_name" db:"series_name"`
	Credibility  int                `json:"credibility" db:"credibility" validate:"required,min=1,max=4"`
	Insight      int                `json:"insight" db:"insight" validate:"required,min=1,max=4"`
	Information  int                `json:"information" db:"information" validate:"min=1,max=4"`
	Entertainment int               `json:"entertainment" db:"entertainment" validate:"min=1,max=4"`
	Categories   []string           `json:"categories,omitempty" db:"categories"`
	Subcategories []string          `json:"subcategories,omitempty" db:"subcategories"`
	Entities     []EntityMention    `json:"entities,omitempty" db:"entities"`
	People       []PersonMention    `json:"people,omitempty" db:"people"`
	NonConsensus *NonConsensusLevel `json:"non_consensus_level,omitempty" db:"non_consensus_level"`
	Embedding    []float32          `json:"-" db:"embedding"`
}

// View carries the per-request derived fields computed from an Episode at
// recommendation time (spec.md section 3). It is never persisted.
type View struct {
	Episode      *Episode
	DaysOld      int
	PrimaryTopic *string
	PrimaryEntity *string
	POV          POV
}

// Derive computes the request-time projection of an episode. now must be
// UTC to match PublishedAt's invariant.
func (e *Episode) Derive(now time.Time) View {
	v := View{Episode: e, DaysOld: int(now.Sub(e.PublishedAt).Hours() / 24)}

	if len(e.Categories) > 0 {
		topic := e.Categories[0]
		v.PrimaryTopic = &topic
	}

	if len(e.Entities) > 0 {
		best := e.Entities[0]
		for _, ent := range e.Entities[1:] {
			if ent.Relevance > best.Relevance {
				best = ent
			}
		}
		name := best.Name
		v.PrimaryEntity = &name
	}

	v.POV = POVConsensus
	if e.NonConsensus != nil {
		switch *e.NonConsensus {
		case NonConsensus, HighlyNonConsensus:
			v.POV = POVContrarian
		}
	}

	return v
}

// Validate checks the invariants of spec.md section 3 that struct tags
// cannot express: embedding unit-norm, credibility/insight presence. A
// failing episode must be excluded from ranking and logged as a
// data-quality fault rather than causing the request to fail.
func (e *Episode) Validate() error {
	if e.Credibility < 1 || e.Credibility > 4 {
		return fmt.Errorf("episode %s: credibility %d out of range [1,4]", e.ID, e.Credibility)
	}
	if e.Insight < 1 || e.Insight > 4 {
		return fmt.Errorf("episode %s: insight %d out of range [1,4]", e.ID, e.Insight)
	}
	if e.PublishedAt.IsZero() {
		return fmt.Errorf("episode %s: missing publication timestamp", e.ID)
	}
	if len(e.Embedding) == 0 {
		return fmt.Errorf("episode %s: missing embedding", e.ID)
	}

	norm := vectorNorm(e.Embedding)
	if math.Abs(norm-1.0) > 1e-5 {
		return fmt.Errorf("episode %s: embedding norm %.8f not unit (tolerance 1e-5)", e.ID, norm)
	}

	return nil
}

func vectorNorm(v []float32) float64 {
	f64 := make([]float64, len(v))
	for i, x := range v {
		f64[i] = float64(x)
	}
	return math.Sqrt(floats.Dot(f64, f64))
}
