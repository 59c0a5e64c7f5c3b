// Package engagement implements C9, the append-only per-user engagement
// log consumed by the user vector builder (C3) and the quality gate (C4).
package engagement

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/messaging"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// pgExecQuerier is the minimal pgxpool.Pool surface the log needs.
// Accepting the interface lets tests substitute pashagolub/pgxmock/v3.
type pgExecQuerier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const stripeCount = 64

// stripedLocks serializes append/reset per user id without a single
// global lock, matching the "per-user lock" guarantee of spec.md section 5.
type stripedLocks struct {
	mu [stripeCount]sync.Mutex
}

func (s *stripedLocks) For(userID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	return &s.mu[h.Sum32()%stripeCount]
}

// Log is the Postgres-backed append-only engagement store. Append writes
// synchronously to Postgres, the durable source of truth consulted by
// Snapshot, and publishes a best-effort copy to Kafka for analytics.
type Log struct {
	pg     pgExecQuerier
	bus    *messaging.MessageBus
	logger *logrus.Logger
	locks  stripedLocks
}

func New(pg pgExecQuerier, bus *messaging.MessageBus, logger *logrus.Logger) *Log {
	return &Log{pg: pg, bus: bus, logger: logger}
}

// Append records a new engagement. Atomic with respect to Snapshot: once
// this returns, a subsequent Snapshot for the same user observes it.
func (l *Log) Append(ctx context.Context, e models.Engagement) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	lock := l.locks.For(e.UserID)
	lock.Lock()
	defer lock.Unlock()

	const insert = `
INSERT INTO engagements (id, user_id, episode_id, type, timestamp)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := l.pg.Exec(ctx, insert, e.ID, e.UserID, e.EpisodeID, e.Type, e.Timestamp); err != nil {
		return fmt.Errorf("engagement: append failed: %w", err)
	}

	if l.bus != nil {
		l.bus.PublishEngagement(ctx, e)
	}

	return nil
}

// Snapshot returns a consistent, reverse-chronological copy of a user's
// engagement history. Borrowed by C3; never mutated by the caller.
func (l *Log) Snapshot(ctx context.Context, userID uuid.UUID) ([]models.Engagement, error) {
	const query = `
SELECT id, user_id, episode_id, type, timestamp
FROM engagements
WHERE user_id = $1
ORDER BY timestamp DESC`

	rows, err := l.pg.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("engagement: snapshot query failed: %w", err)
	}
	defer rows.Close()

	return scanEngagements(rows)
}

func scanEngagements(rows pgx.Rows) ([]models.Engagement, error) {
	var out []models.Engagement
	for rows.Next() {
		var e models.Engagement
		if err := rows.Scan(&e.ID, &e.UserID, &e.EpisodeID, &e.Type, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("engagement: scan failed: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("engagement: row iteration failed: %w", err)
	}
	return out, nil
}

// Reset deletes every engagement for a user. Destructive; used for
// testing and the explicit "reset" UX (S4).
func (l *Log) Reset(ctx context.Context, userID uuid.UUID) error {
	lock := l.locks.For(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := l.pg.Exec(ctx, `DELETE FROM engagements WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("engagement: reset failed: %w", err)
	}
	return nil
}

// ExcludedIDs computes the exclusion set of spec.md section 3: every
// episode id touched by any engagement, regardless of type.
func ExcludedIDs(snapshot []models.Engagement) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(snapshot))
	for _, e := range snapshot {
		out[e.EpisodeID] = struct{}{}
	}
	return out
}
