package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func unitVector(dims int, hot int) []float32 {
	v := make([]float32, dims)
	v[hot%dims] = 1.0
	return v
}

func seedCatalog(t *testing.T, episodes ...models.Episode) *Catalog {
	t.Helper()
	c := New(testLogger())
	byID := make(map[uuid.UUID]*models.Episode, len(episodes))
	for i := range episodes {
		byID[episodes[i].ID] = &episodes[i]
	}
	c.episodes = episodes
	c.byID = byID
	return c
}

func newTestEpisode(t *testing.T, categories []string) models.Episode {
	t.Helper()
	return models.Episode{
		ID:          uuid.New(),
		SeriesID:    uuid.New(),
		SeriesName:  "Test Series",
		PublishedAt: time.Now().Add(-24 * time.Hour),
		Credibility: 3,
		Insight:     3,
		Categories:  categories,
		Embedding:   unitVector(4, 0),
	}
}

func TestCatalog_GetReturnsSeededEpisode(t *testing.T) {
	ep := newTestEpisode(t, []string{"Macro"})
	c := seedCatalog(t, ep)

	got, ok := c.Get(ep.ID)
	require.True(t, ok)
	assert.Equal(t, ep.ID, got.ID)
}

func TestCatalog_GetMissingReturnsFalse(t *testing.T) {
	c := seedCatalog(t)
	_, ok := c.Get(uuid.New())
	assert.False(t, ok)
}

func TestCatalog_IterIsDeterministicByID(t *testing.T) {
	e1 := newTestEpisode(t, []string{"Macro"})
	e2 := newTestEpisode(t, []string{"Credit"})
	// seedCatalog doesn't sort; LoadAll does. Iter just walks whatever
	// order the snapshot holds, so seed in the sorted order directly.
	episodes := []models.Episode{e1, e2}
	if e2.ID.String() < e1.ID.String() {
		episodes = []models.Episode{e2, e1}
	}
	c := seedCatalog(t, episodes...)

	now := time.Now()
	views := c.Iter(now)
	require.Len(t, views, 2)
	assert.Equal(t, episodes[0].ID, views[0].Episode.ID)
	assert.Equal(t, episodes[1].ID, views[1].Episode.ID)
}

func TestCatalog_CategoriesDeduplicatesAndSorts(t *testing.T) {
	e1 := newTestEpisode(t, []string{"Macro"})
	e2 := newTestEpisode(t, []string{"Credit"})
	e3 := newTestEpisode(t, []string{"Macro"})
	c := seedCatalog(t, e1, e2, e3)

	assert.Equal(t, []string{"Credit", "Macro"}, c.Categories())
}

func TestCatalog_ReadyReflectsLoadState(t *testing.T) {
	empty := New(testLogger())
	assert.False(t, empty.Ready())

	loaded := seedCatalog(t, newTestEpisode(t, []string{"Macro"}))
	assert.True(t, loaded.Ready())
}
