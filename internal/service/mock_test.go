package service

import (
	"context"
	"sort"

	"github.com/ecliptic-games/matchmaking/internal/model"
	"github.com/ecliptic-games/matchmaking/internal/repository"
	"github.com/ecliptic-games/matchmaking/pkg/formation"
)

// mockQueueStore keeps the full queue state in memory. Timestamps are
// injected through clock so age-gated policies can be exercised.
type mockQueueStore struct {
	players     map[string]model.QueuedPlayer // playerID -> entry
	assignments map[string]model.MatchAssignment
	locked      map[string]bool
	clock       float64
	lockDenied  bool
	swept       int
}

func newMockQueueStore() *mockQueueStore {
	return &mockQueueStore{
		players:     make(map[string]model.QueuedPlayer),
		assignments: make(map[string]model.MatchAssignment),
		locked:      make(map[string]bool),
	}
}

func (m *mockQueueStore) AddPlayer(_ context.Context, p model.QueuedPlayer) error {
	if p.EnqueuedTS == 0 {
		p.EnqueuedTS = m.clock
	}
	m.players[p.PlayerID] = p
	return nil
}

func (m *mockQueueStore) Heartbeat(_ context.Context, poolID, playerID string) error {
	p, ok := m.players[playerID]
	if !ok || p.PoolID != poolID {
		return repository.ErrNotQueued
	}
	p.LastSeenTS = m.clock
	m.players[playerID] = p
	return nil
}

func (m *mockQueueStore) Assignment(_ context.Context, playerID string) (*model.MatchAssignment, error) {
	a, ok := m.assignments[playerID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *mockQueueStore) RemoveEverywhere(_ context.Context, playerID string) error {
	delete(m.players, playerID)
	delete(m.assignments, playerID)
	return nil
}

func (m *mockQueueStore) AcquireLock(_ context.Context, poolID string) (bool, error) {
	if m.lockDenied || m.locked[poolID] {
		return false, nil
	}
	m.locked[poolID] = true
	return true, nil
}

func (m *mockQueueStore) ReleaseLock(_ context.Context, poolID string) error {
	delete(m.locked, poolID)
	return nil
}

func (m *mockQueueStore) SweepExpired(_ context.Context, _ string) error {
	m.swept++
	return nil
}

func (m *mockQueueStore) Snapshot(_ context.Context, poolID string) (*repository.Snapshot, error) {
	snap := &repository.Snapshot{
		FactionCounts:     make(map[string]int),
		RegionGroupCounts: make(map[string]int),
	}

	var entries []model.QueuedPlayer
	for _, p := range m.players {
		if p.PoolID == poolID {
			entries = append(entries, p)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EnqueuedTS < entries[j].EnqueuedTS })

	first := true
	for _, p := range entries {
		size := max(len(p.PartyMembers), 1)
		snap.Candidates = append(snap.Candidates, formation.Candidate{
			PlayerID:          p.PlayerID,
			Faction:           p.Faction,
			PartyMembers:      p.PartyMembers,
			DesiredMatchGroup: p.DesiredMatchGroup,
		})
		snap.FactionCounts[p.Faction] += size
		snap.RegionGroupCounts[p.RegionGroup] += size

		age := m.clock - p.EnqueuedTS
		if first {
			snap.OldestAge, snap.NewestAge = age, age
			first = false
			continue
		}
		if age > snap.OldestAge {
			snap.OldestAge = age
		}
		if age < snap.NewestAge {
			snap.NewestAge = age
		}
	}
	return snap, nil
}

func (m *mockQueueStore) BindMatch(_ context.Context, poolID string, playerIDs []string, assignment model.MatchAssignment) error {
	for _, id := range playerIDs {
		m.assignments[id] = assignment
		delete(m.players, id)
	}
	return nil
}

// mockRegistry is an in-memory ServerRegistry ordered by free units.
type mockRegistry struct {
	servers map[string]mockServer
}

type mockServer struct {
	group     string
	freeUnits int
	instances int
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{servers: make(map[string]mockServer)}
}

func (m *mockRegistry) Upsert(_ context.Context, addr, regionGroup string, freeResourceUnits, freeInstances int) error {
	m.servers[addr] = mockServer{group: regionGroup, freeUnits: freeResourceUnits, instances: freeInstances}
	return nil
}

func (m *mockRegistry) Remove(_ context.Context, addr string) error {
	delete(m.servers, addr)
	return nil
}

func (m *mockRegistry) Candidates(_ context.Context, minFreeUnits, limit int) ([]string, error) {
	var addrs []string
	for addr, s := range m.servers {
		if s.freeUnits >= minFreeUnits {
			addrs = append(addrs, addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool {
		if m.servers[addrs[i]].freeUnits != m.servers[addrs[j]].freeUnits {
			return m.servers[addrs[i]].freeUnits < m.servers[addrs[j]].freeUnits
		}
		return addrs[i] < addrs[j]
	})
	if len(addrs) > limit {
		addrs = addrs[:limit]
	}
	return addrs, nil
}

func (m *mockRegistry) Info(_ context.Context, addr string) (*model.GameServerInfo, error) {
	s, ok := m.servers[addr]
	if !ok {
		return nil, nil
	}
	return &model.GameServerInfo{RegionGroup: s.group, FreeInstancesAmount: s.instances}, nil
}

// recordingHub captures broadcast events.
type recordingHub struct {
	events []string
}

func (h *recordingHub) BroadcastEvent(eventType string, _ any) {
	h.events = append(h.events, eventType)
}
