// Package ranking wires C1-C9 together into create_session, load_more,
// append_engagement, and reset_engagements, and implements the error
// taxonomy of spec.md section 7.
package ranking

import (
	"errors"

	"github.com/rohankatakam/foryou-podcast-core/internal/session"
)

// Sentinel errors surfaced to callers. Data-quality faults are recovered
// inside the catalog (its dataQualityFaults counter) and never reach this
// package as errors; a user-vector build error, including an embedding
// failure, is recovered by CreateSession, which falls back to a null user
// vector.
var (
	// ErrConfigMissing: no catalog or embeddings loaded.
	ErrConfigMissing = errors.New("config_missing: catalog is not ready")

	// ErrSessionNotFound: load_more against an unknown or expired session.
	// Aliases session.ErrSessionNotFound so callers can match on either.
	ErrSessionNotFound = session.ErrSessionNotFound

	// ErrDeadlineExceeded: create_session exceeded its configured budget.
	ErrDeadlineExceeded = errors.New("deadline_exceeded")
)

// EmptyFeedReason explains why create_session returned zero episodes,
// which is not itself an error (spec.md's empty_feed policy): the
// caller gets a normal response with a diagnostic reason attached.
type EmptyFeedReason string

const (
	EmptyFeedNone           EmptyFeedReason = ""
	EmptyFeedAllGateRejects EmptyFeedReason = "empty_feed: all candidates rejected by quality gates"
	EmptyFeedCatalogEmpty   EmptyFeedReason = "empty_feed: catalog has no episodes"
)
