package ranking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/foryou-podcast-core/internal/candidates"
	"github.com/rohankatakam/foryou-podcast-core/internal/catalog"
	"github.com/rohankatakam/foryou-podcast-core/internal/config"
	"github.com/rohankatakam/foryou-podcast-core/internal/embedding"
	"github.com/rohankatakam/foryou-podcast-core/internal/engagement"
	"github.com/rohankatakam/foryou-podcast-core/internal/rerank"
	"github.com/rohankatakam/foryou-podcast-core/internal/scoring"
	"github.com/rohankatakam/foryou-podcast-core/internal/session"
	"github.com/rohankatakam/foryou-podcast-core/internal/uservector"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// unitVector returns a unit vector with most of its mass on dimension
// hot, so two episodes sharing a hot dimension score similarly.
func unitVector(dims, hot int) []float32 {
	v := make([]float32, dims)
	v[hot%dims] = 1
	return v
}

func seedCatalogRow(ep models.Episode) []interface{} {
	entities, _ := json.Marshal(ep.Entities)
	people, _ := json.Marshal(ep.People)
	var nonConsensus *string
	if ep.NonConsensus != nil {
		s := string(*ep.NonConsensus)
		nonConsensus = &s
	}
	return []interface{}{
		ep.ID, ep.ContentID, ep.PublishedAt, ep.SeriesID, ep.SeriesName,
		ep.Credibility, ep.Insight, ep.Information, ep.Entertainment,
		ep.Categories, ep.Subcategories, entities, people,
		nonConsensus, ep.Embedding,
	}
}

func buildCatalog(t *testing.T, episodes []models.Episode) *catalog.Catalog {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"id", "content_id", "published_at", "series_id", "series_name",
		"credibility", "insight", "information", "entertainment",
		"categories", "subcategories", "entities", "people",
		"non_consensus_level", "embedding"}
	rows := pgxmock.NewRows(cols)
	for _, ep := range episodes {
		rows = rows.AddRow(seedCatalogRow(ep)...)
	}
	mock.ExpectQuery("SELECT id, content_id, published_at").WillReturnRows(rows)

	c := catalog.New(testLogger())
	require.NoError(t, c.LoadAll(context.Background(), mock))
	return c
}

func newEpisode(t *testing.T, credibility, insight, daysOld int, categories []string, embedding []float32) models.Episode {
	t.Helper()
	return models.Episode{
		ID:            uuid.New(),
		SeriesID:      uuid.New(),
		SeriesName:    "series",
		Credibility:   credibility,
		Insight:       insight,
		Information:   2,
		Entertainment: 2,
		Categories:    categories,
		PublishedAt:   time.Now().Add(-time.Duration(daysOld) * 24 * time.Hour),
		Embedding:     embedding,
	}
}

func defaultRankingConfig() config.RankingConfig {
	return config.RankingConfig{
		WBookmark: 2.0, LambdaUser: 0.05, NMax: 10,
		CIMin:       5,
		WInsight:    0.5, WCred: 0.5, LambdaFresh: 0.03, FloorFresh: 0.10,
		WSim: 0.50, WAlpha: 0.35, WFresh: 0.15,
		NCandidates: 50,
		SeriesCap:   2, AdjacencyPenalty: 0.8, TopicThreshold: 2, TopicPenalty: 0.85,
		EntityThreshold: 3, EntityPenalty: 0.7, ContrarianBoost: 1.15,
		K: 10, Pages: 3, CreateSessionDeadline: 10 * time.Second,
	}
}

type emptyInterests struct{}

func (emptyInterests) Interests(ctx context.Context, userID uuid.UUID) []string { return nil }

func newOrchestrator(t *testing.T, episodes []models.Episode) *Orchestrator {
	t.Helper()

	cat := buildCatalog(t, episodes)
	cfg := defaultRankingConfig()
	dims := 4

	embedder := embedding.NewHashEmbedder(dims)
	vb := uservector.New(embedder, cat, cfg.WBookmark, cfg.LambdaUser, cfg.NMax)
	scoreParams := scoring.Params{
		WInsight: cfg.WInsight, WCred: cfg.WCred, LambdaFresh: cfg.LambdaFresh,
		FloorFresh: cfg.FloorFresh, WSim: cfg.WSim, WAlpha: cfg.WAlpha, WFresh: cfg.WFresh,
	}
	selector := candidates.New(scoreParams, cfg.CIMin, cfg.NCandidates, testLogger())
	rerankParams := rerank.Params{
		SeriesCap: cfg.SeriesCap, AdjacencyPenalty: cfg.AdjacencyPenalty,
		TopicThreshold: cfg.TopicThreshold, TopicPenalty: cfg.TopicPenalty,
		EntityThreshold: cfg.EntityThreshold, EntityPenalty: cfg.EntityPenalty,
		ContrarianBoost: cfg.ContrarianBoost,
	}

	pool := session.New(nil, 30*time.Minute, testLogger())
	t.Cleanup(pool.Stop)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	mock.ExpectQuery("SELECT id, user_id, episode_id, type, timestamp").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "episode_id", "type", "timestamp"}))
	log := engagement.New(mock, nil, testLogger())

	orch := New(cat, embedder, vb, selector, rerankParams, pool, log, emptyInterests{}, cfg, testLogger())
	return orch
}

func TestCreateSession_ColdStartExcludesLowCredibility(t *testing.T) {
	var episodes []models.Episode
	for i := 0; i < 20; i++ {
		episodes = append(episodes, newEpisode(t, 3, 3, i, []string{"Macro"}, unitVector(4, i%4)))
	}
	episodes = append(episodes, newEpisode(t, 1, 4, 0, []string{"Macro"}, unitVector(4, 0)))

	orch := newOrchestrator(t, episodes)

	resp, err := orch.CreateSession(context.Background(), models.CreateSessionRequest{UserID: uuid.New()}, time.Now())
	require.NoError(t, err)

	assert.True(t, resp.ColdStart)
	assert.Len(t, resp.Page, 10)
	for _, ep := range resp.Page {
		found, ok := byID(episodes, ep.EpisodeID)
		require.True(t, ok)
		assert.GreaterOrEqual(t, found.Credibility, 2)
	}
}

func TestCreateSession_ExcludedEpisodesNeverReturned(t *testing.T) {
	var episodes []models.Episode
	for i := 0; i < 15; i++ {
		episodes = append(episodes, newEpisode(t, 3, 3, i, []string{"Macro"}, unitVector(4, i%4)))
	}
	excluded := episodes[0].ID

	orch := newOrchestrator(t, episodes)
	resp, err := orch.CreateSession(context.Background(), models.CreateSessionRequest{
		UserID:      uuid.New(),
		ExcludedIDs: []uuid.UUID{excluded},
	}, time.Now())
	require.NoError(t, err)

	for _, ep := range resp.Page {
		assert.NotEqual(t, excluded, ep.EpisodeID)
	}
}

func TestCreateSession_SeriesCapRespectedAcrossFullQueue(t *testing.T) {
	series := uuid.New()
	var episodes []models.Episode
	for i := 0; i < 5; i++ {
		ep := newEpisode(t, 4, 4, i, []string{"Macro"}, unitVector(4, 0))
		ep.SeriesID = series
		episodes = append(episodes, ep)
	}
	for i := 0; i < 10; i++ {
		episodes = append(episodes, newEpisode(t, 3, 3, i, []string{"Crypto"}, unitVector(4, 2)))
	}

	orch := newOrchestrator(t, episodes)
	resp, err := orch.CreateSession(context.Background(), models.CreateSessionRequest{UserID: uuid.New()}, time.Now())
	require.NoError(t, err)

	s, err := orch.sessions.Get(resp.SessionID)
	require.NoError(t, err)

	count := 0
	for _, ep := range s.Queue {
		if ep.SeriesID == series {
			count++
		}
	}
	assert.LessOrEqual(t, count, 2)
}

func TestCreateSession_EmptyFeedWhenAllGatesFail(t *testing.T) {
	var episodes []models.Episode
	for i := 0; i < 5; i++ {
		episodes = append(episodes, newEpisode(t, 1, 1, i, []string{"Macro"}, unitVector(4, 0)))
	}

	orch := newOrchestrator(t, episodes)
	resp, err := orch.CreateSession(context.Background(), models.CreateSessionRequest{UserID: uuid.New()}, time.Now())
	require.NoError(t, err)

	assert.Empty(t, resp.Page)
	assert.Equal(t, string(EmptyFeedAllGateRejects), resp.EmptyFeedReason)
}

func TestLoadMore_ReturnsNextPageNotFirst(t *testing.T) {
	var episodes []models.Episode
	for i := 0; i < 30; i++ {
		episodes = append(episodes, newEpisode(t, 3, 3, i, []string{"Macro"}, unitVector(4, i%4)))
	}

	orch := newOrchestrator(t, episodes)
	created, err := orch.CreateSession(context.Background(), models.CreateSessionRequest{UserID: uuid.New()}, time.Now())
	require.NoError(t, err)

	more, err := orch.LoadMore(models.LoadMoreRequest{SessionID: created.SessionID, N: 10})
	require.NoError(t, err)

	firstIDs := map[uuid.UUID]bool{}
	for _, ep := range created.Page {
		firstIDs[ep.EpisodeID] = true
	}
	for _, ep := range more.Episodes {
		assert.False(t, firstIDs[ep.EpisodeID])
	}
}

func byID(episodes []models.Episode, id uuid.UUID) (models.Episode, bool) {
	for _, ep := range episodes {
		if ep.ID == id {
			return ep, true
		}
	}
	return models.Episode{}, false
}
