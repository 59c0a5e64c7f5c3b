// Package explain maintains the entity graph backing S6's "related
// episodes". It is a read-only auxiliary index over the loaded catalog:
// episode and entity/topic nodes and the edges between them, built once
// at startup (services.New); Catalog.Reload does not rebuild it. It never
// touches any user's engagement history, which is what keeps it out of
// collaborative filtering territory.
package explain

import (
	"context"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// Service owns the Neo4j-backed entity graph.
type Service struct {
	driver neo4j.DriverWithContext
	logger *logrus.Logger
}

func New(driver neo4j.DriverWithContext, logger *logrus.Logger) *Service {
	return &Service{driver: driver, logger: logger}
}

// Sync replaces the entity graph with edges derived from the given
// catalog snapshot. Episode nodes link to Topic and Entity nodes they
// mention; Related walks those shared nodes back out to sibling
// episodes. Best-effort: if clearing the old episode nodes fails, the
// failure is logged and the previous graph stays in place; once the clear
// has succeeded, an episode whose upsert fails is logged and left out of
// the new graph.
func (s *Service) Sync(ctx context.Context, episodes []models.Episode) {
	if s.driver == nil {
		return
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, `MATCH (n:Episode) DETACH DELETE n`, nil); err != nil {
		s.logger.WithError(err).Warn("explain: failed to clear episode graph, skipping sync")
		return
	}

	const upsertQuery = `
MERGE (e:Episode {id: $id})
SET e.series_id = $seriesId
FOREACH (topic IN $topics |
  MERGE (t:Topic {name: topic})
  MERGE (e)-[:ABOUT_TOPIC]->(t))
FOREACH (entity IN $entities |
  MERGE (n:Entity {name: entity})
  MERGE (e)-[:MENTIONS]->(n))`

	for i := range episodes {
		ep := &episodes[i]
		entityNames := make([]string, len(ep.Entities))
		for j, ent := range ep.Entities {
			entityNames[j] = ent.Name
		}

		params := map[string]interface{}{
			"id":       ep.ID.String(),
			"seriesId": ep.SeriesID.String(),
			"topics":   ep.Categories,
			"entities": entityNames,
		}
		if _, err := session.Run(ctx, upsertQuery, params); err != nil {
			s.logger.WithError(err).WithField("episode_id", ep.ID).Warn("explain: failed to upsert episode node")
		}
	}

	s.logger.WithField("episode_count", len(episodes)).Info("explain: entity graph synced")
}

const relatedQuery = `
MATCH (e:Episode {id: $id})-[:MENTIONS|ABOUT_TOPIC]->(shared)<-[:MENTIONS|ABOUT_TOPIC]-(other:Episode)
WHERE other.id <> $id
RETURN DISTINCT other.id AS id
LIMIT $limit`

// Related returns up to limit ids of episodes sharing at least one topic
// (category) or entity node with the given episode; the order of the
// returned ids is not defined. Returns nil
// (never an error) on any driver or parse fault: related episodes are an
// enrichment, not a required field of the S6 response.
func (s *Service) Related(ctx context.Context, episodeID uuid.UUID, limit int) []uuid.UUID {
	if s.driver == nil {
		return nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, relatedQuery, map[string]interface{}{
		"id":    episodeID.String(),
		"limit": limit,
	})
	if err != nil {
		s.logger.WithError(err).WithField("episode_id", episodeID).Warn("explain: related episodes query failed")
		return nil
	}

	var related []uuid.UUID
	for result.Next(ctx) {
		idStr, ok := result.Record().Values[0].(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		related = append(related, id)
	}
	if err := result.Err(); err != nil {
		s.logger.WithError(err).Warn("explain: related episodes result iteration failed")
		return nil
	}

	return related
}
