package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/metrics"
	"github.com/ecliptic-games/matchmaking/internal/mission"
	"github.com/ecliptic-games/matchmaking/internal/model"
	"github.com/ecliptic-games/matchmaking/internal/repository"
	"github.com/ecliptic-games/matchmaking/pkg/formation"
	"github.com/ecliptic-games/matchmaking/pkg/regions"
)

// Event types sent over WebSocket.
const (
	EventMatchCreated      = "match_created"
	EventGameServerUpdated = "game_server_updated"
)

// serverCandidateLimit bounds how many hosts one formation attempt considers.
const serverCandidateLimit = 10

// MatchmakingService runs the queue lifecycle and the match formation
// sequence for every pool.
type MatchmakingService struct {
	store    repository.QueueStore
	registry repository.ServerRegistry
	catalog  *mission.Catalog
	cfg      *mission.Config
	launcher *Launcher
	hub      Broadcaster

	// lastCounts echoes each pool's most recent queue composition to waiting
	// players when the pool lock is held by another request.
	mu         sync.Mutex
	lastCounts map[string]map[string]int
}

// NewMatchmakingService creates a MatchmakingService.
func NewMatchmakingService(store repository.QueueStore, registry repository.ServerRegistry, catalog *mission.Catalog, cfg *mission.Config, launcher *Launcher, hub Broadcaster) *MatchmakingService {
	if hub == nil {
		hub = NoopBroadcaster{}
	}
	return &MatchmakingService{
		store:      store,
		registry:   registry,
		catalog:    catalog,
		cfg:        cfg,
		launcher:   launcher,
		hub:        hub,
		lastCounts: make(map[string]map[string]int),
	}
}

// Reenter handles one queue poll: collect a pending match if one exists,
// otherwise enter or refresh the queue, attempt match formation, and report
// the player's state.
func (s *MatchmakingService) Reenter(ctx context.Context, req model.ReenterRequest) (*model.QueueStatus, error) {
	if a, err := s.store.Assignment(ctx, req.PlayerID); err != nil {
		return nil, err
	} else if a != nil {
		return &model.QueueStatus{Status: model.StatusMatch, MatchID: a.MatchID, Mission: a.Mission}, nil
	}

	poolID := model.PoolID(req.GameVersion, req.GameContour, req.PoolName)

	if req.HasEntryFields() {
		now := float64(time.Now().UnixMilli()) / 1000
		player := model.QueuedPlayer{
			PlayerID:          req.PlayerID,
			PoolID:            poolID,
			Faction:           req.Faction,
			RegionGroup:       regions.Group(req.Region),
			PartyMembers:      req.Party(),
			DesiredMatchGroup: req.DesiredMatchGroup,
			EnqueuedTS:        now,
			LastSeenTS:        now,
		}
		if err := s.store.AddPlayer(ctx, player); err != nil {
			return nil, err
		}
		metrics.PlayersEnqueued.WithLabelValues(req.PoolName).Inc()
	} else {
		if err := s.store.Heartbeat(ctx, poolID, req.PlayerID); err != nil {
			return nil, err
		}
	}

	s.tryFormMatch(ctx, poolID, req)

	if a, err := s.store.Assignment(ctx, req.PlayerID); err != nil {
		return nil, err
	} else if a != nil {
		return &model.QueueStatus{Status: model.StatusMatch, MatchID: a.MatchID, Mission: a.Mission}, nil
	}
	return &model.QueueStatus{Status: model.StatusWaiting, FactionCounts: s.countsFor(poolID)}, nil
}

// Leave removes a player from every queue and drops any uncollected match.
func (s *MatchmakingService) Leave(ctx context.Context, playerID string) error {
	return s.store.RemoveEverywhere(ctx, playerID)
}

// tryFormMatch runs one match formation attempt under the pool lock. All
// failures inside the attempt degrade to "keep waiting": the next poll tries
// again.
func (s *MatchmakingService) tryFormMatch(ctx context.Context, poolID string, req model.ReenterRequest) {
	ok, err := s.store.AcquireLock(ctx, poolID)
	if err != nil {
		log.Error().Err(err).Str("poolId", poolID).Msg("Failed to acquire matchmaking lock")
		return
	}
	if !ok {
		metrics.LockContention.WithLabelValues(req.PoolName).Inc()
		return
	}
	defer func() {
		if err := s.store.ReleaseLock(ctx, poolID); err != nil {
			log.Error().Err(err).Str("poolId", poolID).Msg("Failed to release matchmaking lock")
		}
	}()

	if err := s.store.SweepExpired(ctx, poolID); err != nil {
		log.Error().Err(err).Str("poolId", poolID).Msg("Failed to sweep expired players")
		return
	}

	snap, err := s.store.Snapshot(ctx, poolID)
	if err != nil {
		log.Error().Err(err).Str("poolId", poolID).Msg("Failed to snapshot queue")
		return
	}
	s.rememberCounts(poolID, snap.FactionCounts)
	if len(snap.Candidates) == 0 {
		return
	}

	m := s.form(req.PoolName, snap)
	if m == nil {
		return
	}

	info, found := s.catalog.Resolve(m.Mission)
	if !found {
		log.Warn().Str("mission", m.Mission).Str("poolId", poolID).Msg("Configured mission missing from catalog")
		return
	}
	units := s.cfg.ResourceUnits[m.MatchType]

	addrs, err := s.registry.Candidates(ctx, units, serverCandidateLimit)
	if err != nil {
		log.Error().Err(err).Str("poolId", poolID).Msg("Failed to list server candidates")
		return
	}
	if len(addrs) == 0 {
		log.Warn().Str("poolId", poolID).Str("matchType", m.MatchType).Msg("No game server with enough free resources")
		return
	}

	byGroup := s.groupServers(ctx, addrs)
	dm, err := regions.GroupDistanceMap(regions.GroupEU)
	if err != nil {
		return
	}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	// Groups with no defined distance to any player group are ineligible; a
	// cross-island host never serves these players.
	ordered := regions.OrderServerGroups(snap.RegionGroupCounts, groups, dm)
	if len(ordered) == 0 {
		log.Warn().Str("poolId", poolID).Msg("No game server group reachable from the player regions")
		return
	}

	matchID := uuid.NewString()
	launch := model.LaunchRequest{
		GameVersion:   req.GameVersion,
		GameContour:   req.GameContour,
		GameMap:       info.Map,
		GameMode:      info.Mode,
		GameMission:   m.Mission,
		ResourceUnits: units,
		MatchUniqueID: matchID,
		FactionSetup:  m.FactionSetup,
		MaxTeamSize:   m.MaxTeamSize,
	}

	for _, group := range ordered {
		for _, addr := range byGroup[group] {
			resp, err := s.launcher.Launch(ctx, addr, launch)
			if err != nil {
				log.Warn().Err(err).Str("server", addr).Msg("Launch attempt failed, trying next host")
				continue
			}
			s.finishMatch(ctx, poolID, req.PoolName, addr, matchID, m, resp)
			return
		}
	}
	log.Warn().Str("poolId", poolID).Str("matchId", matchID).Msg("Every launch attempt failed, match abandoned")
}

// form dispatches to the pool's formation rules.
func (s *MatchmakingService) form(poolName string, snap *repository.Snapshot) *formation.Match {
	cfg := s.cfg.ModeConfigFor(poolName)
	switch poolName {
	case model.PoolPvPCasual:
		return formation.FormCasual(snap.Candidates, snap.OldestAge, snap.NewestAge, cfg)
	case model.PoolPvPCasualInstant:
		return formation.FormCasualInstant(snap.Candidates, snap.OldestAge, snap.NewestAge, cfg)
	case model.PoolPvPDuels:
		return formation.FormDuel(snap.Candidates, snap.OldestAge, snap.NewestAge, cfg)
	case model.PoolPvE:
		return formation.FormPvE(snap.Candidates, snap.OldestAge, cfg)
	case model.PoolPvEInstant:
		return formation.FormPvEInstant(snap.Candidates, snap.OldestAge, cfg)
	default:
		return nil
	}
}

// groupServers reads each candidate host's registry record and buckets the
// live ones by region group, preserving free-resource order within a group.
func (s *MatchmakingService) groupServers(ctx context.Context, addrs []string) map[string][]string {
	byGroup := make(map[string][]string)
	for _, addr := range addrs {
		info, err := s.registry.Info(ctx, addr)
		if err != nil {
			log.Error().Err(err).Str("server", addr).Msg("Failed to read server info")
			continue
		}
		if info == nil || info.FreeInstancesAmount <= 0 {
			continue
		}
		byGroup[info.RegionGroup] = append(byGroup[info.RegionGroup], addr)
	}
	return byGroup
}

// finishMatch binds the assignment, refreshes the host's registry record and
// announces the match.
func (s *MatchmakingService) finishMatch(ctx context.Context, poolID, poolName, addr, matchID string, m *formation.Match, resp *model.LaunchResponse) {
	players := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		if p != formation.SyntheticSlot {
			players = append(players, p)
		}
	}

	assignment := model.MatchAssignment{MatchID: matchID, Mission: m.Mission}
	if err := s.store.BindMatch(ctx, poolID, players, assignment); err != nil {
		// The match is already running; players will be swept from the queue
		// by TTL and can rejoin. Nothing to roll back on the host.
		log.Error().Err(err).Str("matchId", matchID).Msg("Failed to bind match assignments")
	}

	group := regions.Group(resp.Region)
	if err := s.registry.Upsert(ctx, addr, group, resp.FreeResourceUnits, resp.FreeInstancesAmount); err != nil {
		log.Error().Err(err).Str("server", addr).Msg("Failed to refresh server record after launch")
	}

	metrics.MatchesFormed.WithLabelValues(poolName, m.MatchType).Inc()
	metrics.MatchPlayers.Observe(float64(len(players)))

	s.hub.BroadcastEvent(EventMatchCreated, map[string]any{
		"match_id":       matchID,
		"pool_name":      poolName,
		"mission":        m.Mission,
		"match_type":     m.MatchType,
		"faction_setup":  m.FactionSetup,
		"players":        len(players),
		"server_region":  group,
		"faction_counts": m.FactionCounts,
	})

	log.Info().
		Str("matchId", matchID).
		Str("poolId", poolID).
		Str("mission", m.Mission).
		Str("matchType", m.MatchType).
		Int("players", len(players)).
		Str("server", addr).
		Msg("Match formed")
}

func (s *MatchmakingService) rememberCounts(poolID string, counts map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCounts[poolID] = counts
}

func (s *MatchmakingService) countsFor(poolID string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCounts[poolID]
}
