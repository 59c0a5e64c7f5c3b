package services

import (
	"context"

	"github.com/rohankatakam/foryou-podcast-core/internal/candidates"
	"github.com/rohankatakam/foryou-podcast-core/internal/catalog"
	"github.com/rohankatakam/foryou-podcast-core/internal/config"
	"github.com/rohankatakam/foryou-podcast-core/internal/database"
	"github.com/rohankatakam/foryou-podcast-core/internal/embedding"
	"github.com/rohankatakam/foryou-podcast-core/internal/engagement"
	"github.com/rohankatakam/foryou-podcast-core/internal/explain"
	"github.com/rohankatakam/foryou-podcast-core/internal/messaging"
	"github.com/rohankatakam/foryou-podcast-core/internal/ranking"
	"github.com/rohankatakam/foryou-podcast-core/internal/rerank"
	"github.com/rohankatakam/foryou-podcast-core/internal/scoring"
	"github.com/rohankatakam/foryou-podcast-core/internal/session"
	"github.com/rohankatakam/foryou-podcast-core/internal/uservector"
	"github.com/rohankatakam/foryou-podcast-core/internal/userstore"

	"github.com/sirupsen/logrus"
)

// Services is the dependency-injection container wiring C1-C9 (the
// ranking pipeline) behind RankingOrchestrator, plus the ambient
// authentication, rate limiting, and messaging infrastructure the
// teacher's handlers already depend on.
type Services struct {
	Auth       *AuthService
	RateLimit  *RateLimitService
	MessageBus *messaging.MessageBus

	Catalog   *catalog.Catalog
	Embedder  embedding.Embedder
	UserStore *userstore.Store
	Explain   *explain.Service

	RankingOrchestrator *ranking.Orchestrator
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	authService := NewAuthService(cfg, logger, db.Redis.Hot)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis.Hot)

	messageBus, err := messaging.NewMessageBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(logger)
	if err := cat.LoadAll(context.Background(), db.PG); err != nil {
		return nil, err
	}

	baseEmbedder := embedding.NewHashEmbedder(cfg.Ranking.EmbeddingDimensions)
	embedder := embedding.NewCachedEmbedder(baseEmbedder, db.Redis.Cold, cfg.Ranking.EmbeddingCacheTTL, logger)

	userStore := userstore.New(db.PG, db.Redis.Hot, logger)
	explainService := explain.New(db.Neo4j, logger)
	explainService.Sync(context.Background(), cat.Episodes())

	vectors := uservector.New(embedder, cat, cfg.Ranking.WBookmark, cfg.Ranking.LambdaUser, cfg.Ranking.NMax)

	scoreParams := scoring.Params{
		WInsight:    cfg.Ranking.WInsight,
		WCred:       cfg.Ranking.WCred,
		LambdaFresh: cfg.Ranking.LambdaFresh,
		FloorFresh:  cfg.Ranking.FloorFresh,
		WSim:        cfg.Ranking.WSim,
		WAlpha:      cfg.Ranking.WAlpha,
		WFresh:      cfg.Ranking.WFresh,
	}
	selector := candidates.New(scoreParams, cfg.Ranking.CIMin, cfg.Ranking.NCandidates, logger)

	rerankParams := rerank.Params{
		SeriesCap:        cfg.Ranking.SeriesCap,
		AdjacencyPenalty: cfg.Ranking.AdjacencyPenalty,
		TopicThreshold:   cfg.Ranking.TopicThreshold,
		TopicPenalty:     cfg.Ranking.TopicPenalty,
		EntityThreshold:  cfg.Ranking.EntityThreshold,
		EntityPenalty:    cfg.Ranking.EntityPenalty,
		ContrarianBoost:  cfg.Ranking.ContrarianBoost,
	}

	sessionPool := session.New(db.Redis.Warm, cfg.Ranking.SessionTimeout, logger)
	engagementLog := engagement.New(db.PG, messageBus, logger)

	orchestrator := ranking.New(
		cat, embedder, vectors, selector, rerankParams, sessionPool, engagementLog,
		userStore, cfg.Ranking, logger,
	)

	return &Services{
		Auth:                authService,
		RateLimit:           rateLimitService,
		MessageBus:          messageBus,
		Catalog:             cat,
		Embedder:            embedder,
		UserStore:           userStore,
		Explain:             explainService,
		RankingOrchestrator: orchestrator,
	}, nil
}
