// Package catalog implements C1, the read-only episode catalog view.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// pgQuerier is the minimal pgxpool.Pool surface LoadAll needs. Accepting
// the interface rather than the concrete pool lets tests substitute
// pashagolub/pgxmock/v3, the same seam the teacher uses for its own
// database-backed services.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

var dataQualityFaults = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "foryou_catalog_data_quality_faults_total",
	Help: "Episodes excluded from the catalog at load time for failing a data-quality invariant.",
})

func init() {
	prometheus.MustRegister(dataQualityFaults)
}

// Catalog is a read-through cache in front of Postgres. LoadAll/Reload
// build an immutable snapshot and swap it in atomically; Get/Iter only
// ever read the current snapshot, so they never block on a reload.
type Catalog struct {
	mu       sync.RWMutex
	episodes []models.Episode
	byID     map[uuid.UUID]*models.Episode
	logger   *logrus.Logger
}

func New(logger *logrus.Logger) *Catalog {
	return &Catalog{
		byID:   make(map[uuid.UUID]*models.Episode),
		logger: logger,
	}
}

const loadAllQuery = `
SELECT id, content_id, published_at, series_id, series_name,
       credibility, insight, information, entertainment,
       categories, subcategories, entities, people,
       non_consensus_level, embedding
FROM episodes
ORDER BY id`

// LoadAll streams every row once and replaces the snapshot. Episodes
// failing models.Episode.Validate are excluded and counted, never fatal
// to the load (spec's data_quality policy).
func (c *Catalog) LoadAll(ctx context.Context, pg pgQuerier) error {
	rows, err := pg.Query(ctx, loadAllQuery)
	if err != nil {
		return fmt.Errorf("catalog: query episodes: %w", err)
	}
	defer rows.Close()

	episodes, byID, err := scanEpisodes(rows, c.logger)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.episodes = episodes
	c.byID = byID
	c.mu.Unlock()

	c.logger.WithField("episode_count", len(episodes)).Info("catalog loaded")
	return nil
}

// Reload is the admin-triggered equivalent of LoadAll, kept as a distinct
// operation so callers can distinguish startup load from a live refresh.
func (c *Catalog) Reload(ctx context.Context, pg pgQuerier) error {
	return c.LoadAll(ctx, pg)
}

func scanEpisodes(rows pgx.Rows, logger *logrus.Logger) ([]models.Episode, map[uuid.UUID]*models.Episode, error) {
	var episodes []models.Episode

	for rows.Next() {
		var (
			ep              models.Episode
			entitiesRaw     []byte
			peopleRaw       []byte
			nonConsensusRaw *string
		)

		if err := rows.Scan(
			&ep.ID, &ep.ContentID, &ep.PublishedAt, &ep.SeriesID, &ep.SeriesName,
			&ep.Credibility, &ep.Insight, &ep.Information, &ep.Entertainment,
			&ep.Categories, &ep.Subcategories, &entitiesRaw, &peopleRaw,
			&nonConsensusRaw, &ep.Embedding,
		); err != nil {
			return nil, nil, fmt.Errorf("catalog: scan episode row: %w", err)
		}

		if len(entitiesRaw) > 0 {
			if err := json.Unmarshal(entitiesRaw, &ep.Entities); err != nil {
				logger.WithError(err).WithField("episode_id", ep.ID).Warn("catalog: malformed entities, excluding episode")
				dataQualityFaults.Inc()
				continue
			}
		}
		if len(peopleRaw) > 0 {
			if err := json.Unmarshal(peopleRaw, &ep.People); err != nil {
				logger.WithError(err).WithField("episode_id", ep.ID).Warn("catalog: malformed people, excluding episode")
				dataQualityFaults.Inc()
				continue
			}
		}
		if nonConsensusRaw != nil {
			level := models.NonConsensusLevel(*nonConsensusRaw)
			ep.NonConsensus = &level
		}

		if err := ep.Validate(); err != nil {
			logger.WithError(err).WithField("episode_id", ep.ID).Warn("catalog: excluding episode, invariant violation")
			dataQualityFaults.Inc()
			continue
		}

		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("catalog: row iteration: %w", err)
	}

	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].ID.String() < episodes[j].ID.String()
	})

	byID := make(map[uuid.UUID]*models.Episode, len(episodes))
	for i := range episodes {
		byID[episodes[i].ID] = &episodes[i]
	}

	return episodes, byID, nil
}

// Get returns the episode with the given id, if present in the catalog.
func (c *Catalog) Get(id uuid.UUID) (*models.Episode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ep, ok := c.byID[id]
	return ep, ok
}

// Iter returns every episode's derived-field projection for the given
// request time, in the catalog's deterministic id order.
func (c *Catalog) Iter(now time.Time) []models.View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	views := make([]models.View, len(c.episodes))
	for i := range c.episodes {
		views[i] = c.episodes[i].Derive(now)
	}
	return views
}

// Episodes returns a snapshot of every loaded episode, for consumers
// that build their own auxiliary index off the catalog (the entity
// graph's sync) rather than the per-request View projection.
func (c *Catalog) Episodes() []models.Episode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Episode, len(c.episodes))
	copy(out, c.episodes)
	return out
}

// Len returns the number of episodes currently loaded.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.episodes)
}

// Ready reports whether the catalog has been loaded at least once.
func (c *Catalog) Ready() bool {
	return c.Len() > 0
}

// Categories returns the distinct, sorted set of primary topics across the
// catalog, for S5.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	for i := range c.episodes {
		if len(c.episodes[i].Categories) == 0 {
			continue
		}
		seen[c.episodes[i].Categories[0]] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for topic := range seen {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}
