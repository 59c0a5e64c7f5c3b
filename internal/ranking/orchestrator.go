package ranking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/candidates"
	"github.com/rohankatakam/foryou-podcast-core/internal/catalog"
	"github.com/rohankatakam/foryou-podcast-core/internal/config"
	"github.com/rohankatakam/foryou-podcast-core/internal/embedding"
	"github.com/rohankatakam/foryou-podcast-core/internal/engagement"
	"github.com/rohankatakam/foryou-podcast-core/internal/rerank"
	"github.com/rohankatakam/foryou-podcast-core/internal/session"
	"github.com/rohankatakam/foryou-podcast-core/internal/uservector"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// InterestStore resolves a user's declared category interests for
// cold-start user-vector construction.
type InterestStore interface {
	Interests(ctx context.Context, userID uuid.UUID) []string
}

// Orchestrator wires C1-C9 together to serve S1-S4. Each field is one
// pipeline stage; Orchestrator itself holds no ranking logic of its
// own beyond sequencing.
type Orchestrator struct {
	catalog   *catalog.Catalog
	embedder  embedding.Embedder
	vectors   *uservector.Builder
	selector  *candidates.Selector
	rerankCfg rerank.Params
	sessions  *session.Pool
	log       *engagement.Log
	interests InterestStore
	cfg       config.RankingConfig
	logger    *logrus.Logger
}

func New(
	cat *catalog.Catalog,
	embedder embedding.Embedder,
	vectors *uservector.Builder,
	selector *candidates.Selector,
	rerankCfg rerank.Params,
	sessions *session.Pool,
	log *engagement.Log,
	interests InterestStore,
	cfg config.RankingConfig,
	logger *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		catalog:   cat,
		embedder:  embedder,
		vectors:   vectors,
		selector:  selector,
		rerankCfg: rerankCfg,
		sessions:  sessions,
		log:       log,
		interests: interests,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateSession runs the full C1-C8 pipeline and registers a new
// session, per S1.
func (o *Orchestrator) CreateSession(ctx context.Context, req models.CreateSessionRequest, now time.Time) (*models.CreateSessionResponse, error) {
	if !o.catalog.Ready() {
		return nil, ErrConfigMissing
	}

	deadline := o.cfg.CreateSessionDeadline
	if deadline <= 0 {
		deadline = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = o.cfg.K
	}

	snapshot, err := o.log.Snapshot(ctx, req.UserID)
	if err != nil {
		if o.logger != nil {
			o.logger.WithError(err).Warn("ranking: failed to load engagement snapshot, proceeding cold")
		}
		snapshot = nil
	}
	if len(req.RecentEngagements) > 0 {
		snapshot = req.RecentEngagements
	}

	excluded := engagement.ExcludedIDs(snapshot)
	for _, id := range req.ExcludedIDs {
		excluded[id] = struct{}{}
	}

	interests := o.interests.Interests(ctx, req.UserID)

	userVector, err := o.vectors.Build(ctx, snapshot, interests, now)
	if err != nil {
		if o.logger != nil {
			o.logger.WithError(err).Warn("ranking: embedding_unavailable, degrading to null user vector")
		}
		userVector = nil
	}

	if err := ctx.Err(); err != nil {
		return nil, ErrDeadlineExceeded
	}

	views := o.catalog.Iter(now)
	pool := o.selector.Select(views, userVector, excluded)

	ranked := session.BuildQueue(pool, func(c []candidates.Candidate, n int) []candidates.Candidate {
		return rerank.Rerank(c, n, o.rerankCfg)
	}, pageSize, o.cfg.Pages)

	debug := models.DebugInfo{
		CandidateCount:         len(pool),
		UserVectorEpisodeCount: countInteractions(snapshot),
		TopSimilaritySamples:   topSimilarities(pool, 5),
	}

	s, page := o.sessions.Create(ctx, req.UserID, ranked, userVector == nil, debug, pageSize, now)

	var reason EmptyFeedReason
	if len(ranked) == 0 {
		reason = EmptyFeedAllGateRejects
		if o.catalog.Len() == 0 {
			reason = EmptyFeedCatalogEmpty
		}
	}

	return &models.CreateSessionResponse{
		SessionID:       s.ID,
		Page:            page,
		TotalInQueue:    len(ranked),
		ShownCount:      len(page),
		RemainingCount:  len(ranked) - len(page),
		ColdStart:       userVector == nil,
		Debug:           debug,
		EmptyFeedReason: string(reason),
	}, nil
}

// LoadMore serves S2.
func (o *Orchestrator) LoadMore(req models.LoadMoreRequest) (*models.LoadMoreResponse, error) {
	n := req.N
	if n <= 0 {
		n = o.cfg.K
	}

	episodes, shown, remaining, err := o.sessions.LoadMore(req.SessionID, n, req.Cursor)
	if err != nil {
		return nil, err
	}

	return &models.LoadMoreResponse{
		Episodes:       episodes,
		ShownCount:     shown,
		RemainingCount: remaining,
	}, nil
}

// AppendEngagement serves S3: durably log the event and best-effort
// publish it, without mutating any live session's queue.
func (o *Orchestrator) AppendEngagement(ctx context.Context, req models.AppendEngagementRequest) error {
	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	return o.log.Append(ctx, models.Engagement{
		UserID:    req.UserID,
		EpisodeID: req.EpisodeID,
		Type:      req.Type,
		Timestamp: ts,
	})
}

// ResetEngagements serves S4: clear the log and invalidate any active
// sessions for the user.
func (o *Orchestrator) ResetEngagements(ctx context.Context, userID uuid.UUID) error {
	if err := o.log.Reset(ctx, userID); err != nil {
		return err
	}
	o.sessions.Invalidate(userID)
	return nil
}

func countInteractions(snapshot []models.Engagement) int {
	count := 0
	for _, e := range snapshot {
		if e.Type != models.EngagementDismiss {
			count++
		}
	}
	return count
}

func topSimilarities(pool []candidates.Candidate, n int) []float64 {
	if len(pool) < n {
		n = len(pool)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = pool[i].Score.SSim
	}
	return out
}
