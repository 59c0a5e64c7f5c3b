// Package session implements C8, the session pool: a deterministic
// per-session queue built once by the reranker and paginated by cursor,
// never re-scored or re-ranked on load_more.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/candidates"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// Session is one browsing session's frozen queue plus its cursor.
type Session struct {
	mu sync.Mutex

	ID             uuid.UUID
	UserID         uuid.UUID
	Queue          []models.ScoredEpisode
	Cursor         int
	ColdStart      bool
	Debug          models.DebugInfo
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

func newSession(userID uuid.UUID, queue []models.ScoredEpisode, coldStart bool, debug models.DebugInfo, now time.Time) *Session {
	return &Session{
		ID:             uuid.New(),
		UserID:         userID,
		Queue:          queue,
		ColdStart:      coldStart,
		Debug:          debug,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// advance moves the cursor to the end of the served page if that is
// ahead of the current one; returns the page that was just served and the cursor
// state after serving it. Calling advance twice with the same
// requested cursor yields the same page (S2's idempotency guarantee).
func (s *Session) advance(n int, explicitCursor *int) ([]models.ScoredEpisode, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.Cursor
	if explicitCursor != nil {
		start = *explicitCursor
	}
	if start > len(s.Queue) {
		start = len(s.Queue)
	}
	end := start + n
	if end > len(s.Queue) {
		end = len(s.Queue)
	}

	out := s.Queue[start:end]
	if end > s.Cursor {
		s.Cursor = end
	}
	s.LastAccessedAt = time.Now()
	return out, s.Cursor, len(s.Queue) - s.Cursor
}

// Pool owns every live session. Map membership is guarded by mu; cursor
// advancement on an individual session is guarded by that session's own
// lock, mirroring the teacher's per-resource-lock convention
// (database.RedisClients' per-tier clients, UserInteractionService's
// channel-based workers operating independently of one another).
type Pool struct {
	mu           sync.RWMutex
	sessions     map[uuid.UUID]*Session
	warm         *redis.Client
	idleTimeout  time.Duration
	logger       *logrus.Logger
	stopReaper   chan struct{}
	reaperDone   chan struct{}
}

// New constructs a Pool and starts its background idle-session reaper,
// the same ticker-plus-stop-channel shape as the teacher's
// periodicSyncWorker.
func New(warm *redis.Client, idleTimeout time.Duration, logger *logrus.Logger) *Pool {
	p := &Pool{
		sessions:    make(map[uuid.UUID]*Session),
		warm:        warm,
		idleTimeout: idleTimeout,
		logger:      logger,
		stopReaper:  make(chan struct{}),
		reaperDone:  make(chan struct{}),
	}
	go p.reapLoop()
	return p
}

// Stop halts the background reaper. Safe to call once.
func (p *Pool) Stop() {
	close(p.stopReaper)
	<-p.reaperDone
}

func (p *Pool) reapLoop() {
	defer close(p.reaperDone)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.reapExpired(time.Now())
		case <-p.stopReaper:
			return
		}
	}
}

func (p *Pool) reapExpired(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, s := range p.sessions {
		s.mu.Lock()
		idle := now.Sub(s.LastAccessedAt)
		s.mu.Unlock()
		if idle > p.idleTimeout {
			delete(p.sessions, id)
		}
	}
}

// Create registers a freshly built queue as a new session and returns
// its first page.
func (p *Pool) Create(ctx context.Context, userID uuid.UUID, queue []models.ScoredEpisode, coldStart bool, debug models.DebugInfo, pageSize int, now time.Time) (*Session, []models.ScoredEpisode) {
	s := newSession(userID, queue, coldStart, debug, now)

	p.mu.Lock()
	p.sessions[s.ID] = s
	p.mu.Unlock()

	firstPage, _, _ := s.advance(pageSize, nil)
	p.mirrorToWarm(ctx, s)

	return s, firstPage
}

// ErrSessionNotFound is returned by Get/LoadMore when the session id is
// unknown or has been reaped.
var ErrSessionNotFound = fmt.Errorf("session_not_found")

// Get looks up a live session, lazily reaping it first if it has gone
// idle past the configured timeout (spec's "reaped lazily on access").
func (p *Pool) Get(id uuid.UUID) (*Session, error) {
	p.mu.RLock()
	s, ok := p.sessions[id]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	idle := time.Since(s.LastAccessedAt)
	s.mu.Unlock()
	if idle > p.idleTimeout {
		p.mu.Lock()
		delete(p.sessions, id)
		p.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	return s, nil
}

// LoadMore advances the session's cursor and returns the next n
// episodes. explicitCursor, when non-nil, makes the call idempotent
// with respect to that cursor value rather than the session's live
// cursor (S2's idempotency requirement).
func (p *Pool) LoadMore(id uuid.UUID, n int, explicitCursor *int) (episodes []models.ScoredEpisode, shown, remaining int, err error) {
	s, err := p.Get(id)
	if err != nil {
		return nil, 0, 0, err
	}

	episodes, shown, remaining = s.advance(n, explicitCursor)
	return episodes, shown, remaining, nil
}

// Invalidate discards every session belonging to a user, used by S4's
// reset-engagements.
func (p *Pool) Invalidate(userID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, s := range p.sessions {
		if s.UserID == userID {
			delete(p.sessions, id)
		}
	}
}

// warmRecord is what gets mirrored to the Warm Redis tier: the
// in-memory Pool stays authoritative and the write is best-effort. The
// record is written once, when the session is created; later cursor moves
// are not mirrored, and the pool never reads the records back, so a
// session does not survive a process restart.
type warmRecord struct {
	UserID uuid.UUID              `json:"user_id"`
	Queue  []models.ScoredEpisode `json:"queue"`
	Cursor int                    `json:"cursor"`
}

func (p *Pool) mirrorToWarm(ctx context.Context, s *Session) {
	if p.warm == nil {
		return
	}

	s.mu.Lock()
	rec := warmRecord{UserID: s.UserID, Queue: s.Queue, Cursor: s.Cursor}
	s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		if p.logger != nil {
			p.logger.WithError(err).Warn("session: failed to marshal warm-tier record")
		}
		return
	}

	if err := p.warm.Set(ctx, warmKey(s.ID), data, p.idleTimeout).Err(); err != nil {
		if p.logger != nil {
			p.logger.WithError(err).Warn("session: failed to mirror session to warm tier")
		}
	}
}

func warmKey(id uuid.UUID) string {
	return "session:v1:" + id.String()
}

// queueSource keeps this package's queue-entry conversion decoupled
// from the rerank package's own type, so session only depends on
// candidates.Candidate's field shape.
type queueSource = candidates.Candidate

// fromCandidates turns a reranked candidate list into the queue-entry
// DTO the API serializes, assigning each its 1-based queue_position.
func fromCandidates(ranked []queueSource) []models.ScoredEpisode {
	out := make([]models.ScoredEpisode, len(ranked))
	for i, c := range ranked {
		out[i] = models.ScoredEpisode{
			EpisodeID:       c.Episode.ID,
			SeriesID:        c.Episode.SeriesID,
			BaseScore:       c.Score.BaseScore,
			SSim:            c.Score.SSim,
			SAlpha:          c.Score.SAlpha,
			SFresh:          c.Score.SFresh,
			SimilarityScore: c.Score.SSim,
			QueuePosition:   i + 1,
			PrimaryTopic:    c.View.PrimaryTopic,
			PrimaryEntity:   c.View.PrimaryEntity,
			POV:             c.View.POV,
		}
	}
	return out
}

// BuildQueue runs the reranker once over the full candidate pool to
// produce a session's entire frozen queue (up to k*pages entries, or
// the whole pool if smaller), then projects it to the wire DTO. One
// rerank per session; load_more only ever slices this queue.
func BuildQueue(pool []candidates.Candidate, rerank func([]candidates.Candidate, int) []candidates.Candidate, k, pages int) []models.ScoredEpisode {
	size := k * pages
	if size <= 0 || size > len(pool) {
		size = len(pool)
	}
	ranked := rerank(pool, size)
	return fromCandidates(ranked)
}
