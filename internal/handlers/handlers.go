package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/services"
)

// Handlers groups the HTTP surface for S1-S7: sessions, engagements,
// catalog lookups, and health.
type Handlers struct {
	Health     *HealthHandler
	Session    *SessionHandler
	Engagement *EngagementHandler
	Catalog    *CatalogHandler
}

func New(logger *logrus.Logger, svc *services.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(logger, svc.Catalog),
		Session:    NewSessionHandler(logger, svc.RankingOrchestrator),
		Engagement: NewEngagementHandler(logger, svc.RankingOrchestrator),
		Catalog:    NewCatalogHandler(logger, svc.Catalog, svc.Explain),
	}
}
