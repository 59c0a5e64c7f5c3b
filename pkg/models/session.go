package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoredEpisode is one entry of a session queue: an episode that survived
// the gate, was scored, and was placed by the reranker.
type ScoredEpisode struct {
	EpisodeID       uuid.UUID `json:"episode_id"`
	SeriesID        uuid.UUID `json:"series_id"`
	BaseScore       float64   `json:"base_score"`
	SSim            float64   `json:"s_sim"`
	SAlpha          float64   `json:"s_alpha"`
	SFresh          float64   `json:"s_fresh"`
	SimilarityScore float64   `json:"similarity_score"`
	QueuePosition   int       `json:"queue_position"`
	PrimaryTopic    *string   `json:"primary_topic,omitempty"`
	PrimaryEntity   *string   `json:"primary_entity,omitempty"`
	POV             POV       `json:"pov"`
}

// DebugInfo is the observability block required by S1.
type DebugInfo struct {
	CandidateCount         int       `json:"candidate_count"`
	UserVectorEpisodeCount int       `json:"user_vector_episode_count"`
	TopSimilaritySamples   []float64 `json:"top_similarity_samples"`
	DataQualityFaults      int       `json:"data_quality_faults"`
}

// CreateSessionRequest is the S1 request body.
type CreateSessionRequest struct {
	UserID             uuid.UUID    `json:"user_id" validate:"required"`
	RecentEngagements  []Engagement `json:"recent_engagements,omitempty"`
	ExcludedIDs        []uuid.UUID  `json:"excluded_ids,omitempty"`
	PageSize           int          `json:"page_size,omitempty" validate:"omitempty,min=1,max=100"`
}

// CreateSessionResponse is the S1 response body.
type CreateSessionResponse struct {
	SessionID       uuid.UUID       `json:"session_id"`
	Page            []ScoredEpisode `json:"page"`
	TotalInQueue    int             `json:"total_in_queue"`
	ShownCount      int             `json:"shown_count"`
	RemainingCount  int             `json:"remaining_count"`
	ColdStart       bool            `json:"cold_start"`
	Debug           DebugInfo       `json:"debug"`
	EmptyFeedReason string          `json:"empty_feed_reason,omitempty"`
}

// LoadMoreRequest is the S2 request.
type LoadMoreRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	N         int       `json:"n,omitempty" validate:"omitempty,min=1,max=100"`
	Cursor    *int       `json:"cursor,omitempty"`
}

// LoadMoreResponse is the S2 response.
type LoadMoreResponse struct {
	Episodes       []ScoredEpisode `json:"episodes"`
	ShownCount     int             `json:"shown_count"`
	RemainingCount int             `json:"remaining_count"`
}

// EpisodeLookupResponse is the S6 response: an episode plus its derived
// fields and, when available, related episodes from the entity graph.
type EpisodeLookupResponse struct {
	Episode         *Episode    `json:"episode"`
	PrimaryTopic    *string     `json:"primary_topic,omitempty"`
	PrimaryEntity   *string     `json:"primary_entity,omitempty"`
	POV             POV         `json:"pov"`
	DaysOld         int         `json:"days_old"`
	RelatedEpisodes []uuid.UUID `json:"related_episodes,omitempty"`
}

// CategoriesResponse is the S5 response.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// HealthResponse is the S7 response.
type HealthResponse struct {
	Status        string    `json:"status"`
	CatalogReady  bool      `json:"catalog_ready"`
	EpisodeCount  int       `json:"episode_count"`
	CheckedAt     time.Time `json:"checked_at"`
}
