// Package userstore resolves a user's declared category interests, the
// only profile field the ranking core reads (for cold-start user-vector
// construction, spec.md section 4.3).
package userstore

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Store resolves category interests, checking the Hot Redis tier before
// falling back to Postgres, mirroring the teacher's
// UserInteractionService.GetUserProfile cache-then-query shape.
type Store struct {
	pg     pgQuerier
	hot    *redis.Client
	logger *logrus.Logger
}

func New(pg pgQuerier, hot *redis.Client, logger *logrus.Logger) *Store {
	return &Store{pg: pg, hot: hot, logger: logger}
}

const interestsQuery = `SELECT category_interests FROM users WHERE user_id = $1`

func cacheKey(userID uuid.UUID) string {
	return "user_interests:v1:" + userID.String()
}

// Interests returns the user's declared category interests, or an
// empty slice if the user has none on file. A cache or database error
// degrades to an empty slice rather than failing create_session -
// interests are an optional cold-start signal, not a precondition.
func (s *Store) Interests(ctx context.Context, userID uuid.UUID) []string {
	if s.hot != nil {
		if cached, err := s.hot.Get(ctx, cacheKey(userID)).Result(); err == nil {
			var interests []string
			if json.Unmarshal([]byte(cached), &interests) == nil {
				return interests
			}
		}
	}

	interests := s.query(ctx, userID)

	if s.hot != nil {
		if data, err := json.Marshal(interests); err == nil {
			if err := s.hot.Set(ctx, cacheKey(userID), data, 0).Err(); err != nil && s.logger != nil {
				s.logger.WithError(err).Warn("userstore: failed to cache interests")
			}
		}
	}

	return interests
}

func (s *Store) query(ctx context.Context, userID uuid.UUID) []string {
	rows, err := s.pg.Query(ctx, interestsQuery, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("userstore: failed to query interests")
		}
		return nil
	}
	defer rows.Close()

	var interests []string
	if rows.Next() {
		if err := rows.Scan(&interests); err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("userstore: failed to scan interests")
			}
			return nil
		}
	}
	return interests
}
