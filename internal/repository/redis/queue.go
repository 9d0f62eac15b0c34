package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/model"
	"github.com/ecliptic-games/matchmaking/internal/repository"
	"github.com/ecliptic-games/matchmaking/pkg/formation"
)

const (
	// PlayerExpiration bounds how long a silent player stays queued.
	PlayerExpiration = 30 * time.Second
	// MatchExpiration bounds how long an uncollected match assignment lives.
	MatchExpiration = 300 * time.Second
	// LockTimeout caps a stuck match-formation holder.
	LockTimeout = 10 * time.Second

	// snapshotSpan is enough queue head to balance two factions of 16 plus
	// one spare.
	snapshotSpan = 32
	// sweepBatch bounds the member count of a single removal command.
	sweepBatch = 1000
)

// Key patterns for the matchmaking queue state.
func playerKey(poolID, playerID string) string { return "player:" + poolID + ":" + playerID }
func queueKey(poolID string) string            { return "player_queue:" + poolID }
func expireQueueKey(poolID string) string      { return "player_expire_queue:" + poolID }
func matchKey(playerID string) string          { return "match:" + playerID }
func lockKey(poolID string) string             { return "matchmaking_lock:" + poolID }

func nowSeconds() float64 {
	return float64(time.Now().UnixMilli()) / 1000
}

// AddPlayer writes the player blob with its queue TTL and inserts the player
// into the pool's enqueue- and expire-ordered sets.
func (c *Client) AddPlayer(ctx context.Context, p model.QueuedPlayer) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal queued player: %w", err)
	}
	if err := c.rdb.Set(ctx, playerKey(p.PoolID, p.PlayerID), data, PlayerExpiration).Err(); err != nil {
		return fmt.Errorf("set player blob: %w", err)
	}
	if err := c.rdb.ZAdd(ctx, queueKey(p.PoolID), redis.Z{Score: p.EnqueuedTS, Member: p.PlayerID}).Err(); err != nil {
		return fmt.Errorf("enqueue player: %w", err)
	}
	if err := c.rdb.ZAdd(ctx, expireQueueKey(p.PoolID), redis.Z{Score: p.LastSeenTS, Member: p.PlayerID}).Err(); err != nil {
		return fmt.Errorf("track player expiry: %w", err)
	}
	return nil
}

// Heartbeat extends the player's blob TTL and refreshes their expire score.
// Returns repository.ErrNotQueued when no blob exists.
func (c *Client) Heartbeat(ctx context.Context, poolID, playerID string) error {
	ok, err := c.rdb.Expire(ctx, playerKey(poolID, playerID), PlayerExpiration).Result()
	if err != nil {
		return fmt.Errorf("extend player ttl: %w", err)
	}
	if !ok {
		return repository.ErrNotQueued
	}
	if err := c.rdb.ZAdd(ctx, expireQueueKey(poolID), redis.Z{Score: nowSeconds(), Member: playerID}).Err(); err != nil {
		return fmt.Errorf("refresh expire score: %w", err)
	}
	return nil
}

// Assignment reads the player's pending match assignment, if any.
func (c *Client) Assignment(ctx context.Context, playerID string) (*model.MatchAssignment, error) {
	data, err := c.rdb.Get(ctx, matchKey(playerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match assignment: %w", err)
	}
	var a model.MatchAssignment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal match assignment: %w", err)
	}
	return &a, nil
}

// RemoveEverywhere deletes the player from every pool queue and clears any
// match assignment.
func (c *Client) RemoveEverywhere(ctx context.Context, playerID string) error {
	iter := c.rdb.Scan(ctx, 0, "player:*:"+playerID, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		poolID := strings.TrimSuffix(strings.TrimPrefix(key, "player:"), ":"+playerID)
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("delete player blob: %w", err)
		}
		if err := c.rdb.ZRem(ctx, queueKey(poolID), playerID).Err(); err != nil {
			return fmt.Errorf("dequeue player: %w", err)
		}
		if err := c.rdb.ZRem(ctx, expireQueueKey(poolID), playerID).Err(); err != nil {
			return fmt.Errorf("drop expire entry: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan player keys: %w", err)
	}
	if err := c.rdb.Del(ctx, matchKey(playerID)).Err(); err != nil {
		return fmt.Errorf("delete match assignment: %w", err)
	}
	return nil
}

// AcquireLock takes the pool's match-creation lock if free.
func (c *Client) AcquireLock(ctx context.Context, poolID string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(poolID), "1", LockTimeout).Result()
	if err != nil {
		return false, fmt.Errorf("acquire matchmaking lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock frees the pool's match-creation lock.
func (c *Client) ReleaseLock(ctx context.Context, poolID string) error {
	if err := c.rdb.Del(ctx, lockKey(poolID)).Err(); err != nil {
		return fmt.Errorf("release matchmaking lock: %w", err)
	}
	return nil
}

// SweepExpired drops players whose last heartbeat is older than the queue
// TTL from the pool's ordered sets. Blob TTLs expire on their own; this
// keeps the sets from accumulating ghosts when the store's TTL drifts.
func (c *Client) SweepExpired(ctx context.Context, poolID string) error {
	cutoff := nowSeconds() - PlayerExpiration.Seconds()
	ids, err := c.rdb.ZRangeByScore(ctx, expireQueueKey(poolID), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatFloat(cutoff, 'f', -1, 64),
	}).Result()
	if err != nil {
		return fmt.Errorf("list expired players: %w", err)
	}
	for start := 0; start < len(ids); start += sweepBatch {
		end := min(start+sweepBatch, len(ids))
		batch := make([]interface{}, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, id)
		}
		if err := c.rdb.ZRem(ctx, queueKey(poolID), batch...).Err(); err != nil {
			return fmt.Errorf("sweep queue: %w", err)
		}
		if err := c.rdb.ZRem(ctx, expireQueueKey(poolID), batch...).Err(); err != nil {
			return fmt.Errorf("sweep expire queue: %w", err)
		}
	}
	if len(ids) > 0 {
		log.Debug().Str("poolId", poolID).Int("expired", len(ids)).Msg("Swept expired players")
	}
	return nil
}

// Snapshot assembles the queue head for match formation. Entries whose blob
// has already expired are skipped without failing the snapshot.
func (c *Client) Snapshot(ctx context.Context, poolID string) (*repository.Snapshot, error) {
	entries, err := c.rdb.ZRangeWithScores(ctx, queueKey(poolID), 0, snapshotSpan).Result()
	if err != nil {
		return nil, fmt.Errorf("range queue: %w", err)
	}

	snap := &repository.Snapshot{
		FactionCounts:     make(map[string]int),
		RegionGroupCounts: make(map[string]int),
	}
	now := nowSeconds()
	first := true
	for _, entry := range entries {
		playerID, ok := entry.Member.(string)
		if !ok {
			continue
		}
		data, err := c.rdb.Get(ctx, playerKey(poolID, playerID)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get player blob: %w", err)
		}
		var p model.QueuedPlayer
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Str("playerId", playerID).Err(err).Msg("Skipping malformed player blob")
			continue
		}

		partySize := max(len(p.PartyMembers), 1)
		snap.Candidates = append(snap.Candidates, formation.Candidate{
			PlayerID:          p.PlayerID,
			Faction:           p.Faction,
			PartyMembers:      p.PartyMembers,
			DesiredMatchGroup: p.DesiredMatchGroup,
		})
		snap.FactionCounts[p.Faction] += partySize
		snap.RegionGroupCounts[p.RegionGroup] += partySize

		age := now - entry.Score
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

// BindMatch writes each player's match assignment, then removes them from
// the pool. Assignments land before any queue state is deleted so a crash in
// between leaves only a ghost queue entry for the sweep.
func (c *Client) BindMatch(ctx context.Context, poolID string, playerIDs []string, assignment model.MatchAssignment) error {
	if len(playerIDs) == 0 {
		return nil
	}
	data, err := json.Marshal(assignment)
	if err != nil {
		return fmt.Errorf("marshal match assignment: %w", err)
	}
	for _, id := range playerIDs {
		if err := c.rdb.Set(ctx, matchKey(id), data, MatchExpiration).Err(); err != nil {
			return fmt.Errorf("set match assignment: %w", err)
		}
	}
	members := make([]interface{}, 0, len(playerIDs))
	for _, id := range playerIDs {
		members = append(members, id)
		if err := c.rdb.Del(ctx, playerKey(poolID, id)).Err(); err != nil {
			return fmt.Errorf("delete player blob: %w", err)
		}
	}
	if err := c.rdb.ZRem(ctx, queueKey(poolID), members...).Err(); err != nil {
		return fmt.Errorf("dequeue matched players: %w", err)
	}
	if err := c.rdb.ZRem(ctx, expireQueueKey(poolID), members...).Err(); err != nil {
		return fmt.Errorf("drop expire entries: %w", err)
	}
	return nil
}
