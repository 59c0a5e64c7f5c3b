package models

import (
	"time"

	"github.com/google/uuid"
)

// EngagementType is one of the three append-only event kinds the engagement
// log accepts.
type EngagementType string

const (
	EngagementView     EngagementType = "view"
	EngagementBookmark EngagementType = "bookmark"
	EngagementDismiss  EngagementType = "dismiss"
)

// Engagement is a single append-only record owned exclusively by the
// engagement log (C9). The user-vector builder only ever borrows a
// read-only snapshot.
type Engagement struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id" validate:"required"`
	EpisodeID uuid.UUID      `json:"episode_id" db:"episode_id" validate:"required"`
	Type      EngagementType `json:"type" db:"type" validate:"required,oneof=view bookmark dismiss"`
	Timestamp time.Time      `json:"timestamp" db:"timestamp"`
}

// User is the opaque account record. DisplayName is carried for the outer
// application only; the core never reads it.
type User struct {
	ID                uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName       string    `json:"display_name,omitempty" db:"display_name"`
	CategoryInterests []string  `json:"category_interests,omitempty" db:"category_interests"`
}

// AppendEngagementRequest is the S3 request body.
type AppendEngagementRequest struct {
	UserID    uuid.UUID      `json:"user_id" validate:"required"`
	EpisodeID uuid.UUID      `json:"episode_id" validate:"required"`
	Type      EngagementType `json:"type" validate:"required,oneof=view bookmark dismiss"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
}
