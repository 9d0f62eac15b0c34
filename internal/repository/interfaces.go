package repository

import (
	"context"
	"errors"

	"github.com/ecliptic-games/matchmaking/internal/model"
	"github.com/ecliptic-games/matchmaking/pkg/formation"
)

// ErrNotQueued is returned when a heartbeat arrives for a player with no
// queue entry.
var ErrNotQueued = errors.New("player not queued")

// Snapshot is a read-only copy of one pool's queue head, assembled for match
// formation.
type Snapshot struct {
	// Candidates holds the valid queue entries in enqueue order.
	Candidates []formation.Candidate
	// FactionCounts is the party-summed population per faction.
	FactionCounts map[string]int
	// RegionGroupCounts is the party-summed population per region group.
	RegionGroupCounts map[string]int
	// OldestAge and NewestAge are seconds since the oldest and newest
	// candidate enqueued.
	OldestAge float64
	NewestAge float64
}

// QueueStore defines the durable queue operations.
type QueueStore interface {
	AddPlayer(ctx context.Context, p model.QueuedPlayer) error
	Heartbeat(ctx context.Context, poolID, playerID string) error
	Assignment(ctx context.Context, playerID string) (*model.MatchAssignment, error)
	RemoveEverywhere(ctx context.Context, playerID string) error
	AcquireLock(ctx context.Context, poolID string) (bool, error)
	ReleaseLock(ctx context.Context, poolID string) error
	SweepExpired(ctx context.Context, poolID string) error
	Snapshot(ctx context.Context, poolID string) (*Snapshot, error)
	BindMatch(ctx context.Context, poolID string, playerIDs []string, assignment model.MatchAssignment) error
}

// ServerRegistry defines the live game-host pool operations.
type ServerRegistry interface {
	Upsert(ctx context.Context, addr, regionGroup string, freeResourceUnits, freeInstances int) error
	Remove(ctx context.Context, addr string) error
	Candidates(ctx context.Context, minFreeUnits, limit int) ([]string, error)
	Info(ctx context.Context, addr string) (*model.GameServerInfo, error)
}

// StatsRepository records game-server stats reports.
type StatsRepository interface {
	Record(ctx context.Context, serverAddr, region, matchID string, stats map[string]any) error
}
