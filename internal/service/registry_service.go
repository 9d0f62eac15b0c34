package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/model"
	"github.com/ecliptic-games/matchmaking/internal/repository"
	"github.com/ecliptic-games/matchmaking/pkg/regions"
)

// RegistryService manages the live game-host pool and host stats reports.
type RegistryService struct {
	registry repository.ServerRegistry
	stats    repository.StatsRepository
	hub      Broadcaster
}

// NewRegistryService creates a RegistryService. stats may be nil; reports are
// then log-only.
func NewRegistryService(registry repository.ServerRegistry, stats repository.StatsRepository, hub Broadcaster) *RegistryService {
	if hub == nil {
		hub = NoopBroadcaster{}
	}
	return &RegistryService{registry: registry, stats: stats, hub: hub}
}

// Register adds or refreshes a game host in the registry. The raw region is
// mapped to its region group before storage.
func (s *RegistryService) Register(ctx context.Context, addr string, req model.RegisterServerRequest) error {
	group := regions.Group(req.Region)
	if err := s.registry.Upsert(ctx, addr, group, req.FreeResourceUnits, req.FreeInstancesAmount); err != nil {
		return err
	}
	s.hub.BroadcastEvent(EventGameServerUpdated, map[string]any{
		"server":                addr,
		"region_group":          group,
		"free_resource_units":   req.FreeResourceUnits,
		"free_instances_amount": req.FreeInstancesAmount,
	})
	log.Info().
		Str("server", addr).
		Str("regionGroup", group).
		Int("freeResourceUnits", req.FreeResourceUnits).
		Int("freeInstances", req.FreeInstancesAmount).
		Msg("Game server registered")
	return nil
}

// Unregister removes a game host from the registry.
func (s *RegistryService) Unregister(ctx context.Context, addr string) error {
	if err := s.registry.Remove(ctx, addr); err != nil {
		return err
	}
	log.Info().Str("server", addr).Msg("Game server unregistered")
	return nil
}

// RecordStats logs a host's match stats report and persists it when a stats
// store is configured. Persistence failures are logged, not surfaced; the
// report path must never push back on game hosts.
func (s *RegistryService) RecordStats(ctx context.Context, addr string, req model.ServerStatsRequest) {
	log.Info().
		Str("server", addr).
		Str("matchId", req.MatchID).
		Interface("stats", req.Stats).
		Msg("Game server stats")
	if s.stats == nil {
		return
	}
	if err := s.stats.Record(ctx, addr, req.Region, req.MatchID, req.Stats); err != nil {
		log.Error().Err(err).Str("server", addr).Str("matchId", req.MatchID).Msg("Failed to persist server stats")
	}
}
