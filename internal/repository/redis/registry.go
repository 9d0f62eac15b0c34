package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ecliptic-games/matchmaking/internal/model"
)

// gameServersKey is the sorted set of active hosts scored by free resource units.
const gameServersKey = "game_servers"

func serverKey(addr string) string { return "game_server:" + addr }

// Upsert registers or refreshes a game host: its free-unit score in the
// candidate set and its metadata record.
func (c *Client) Upsert(ctx context.Context, addr, regionGroup string, freeResourceUnits, freeInstances int) error {
	if err := c.rdb.ZAdd(ctx, gameServersKey, redis.Z{Score: float64(freeResourceUnits), Member: addr}).Err(); err != nil {
		return fmt.Errorf("upsert server score: %w", err)
	}
	info := model.GameServerInfo{RegionGroup: regionGroup, FreeInstancesAmount: freeInstances}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal server info: %w", err)
	}
	if err := c.rdb.Set(ctx, serverKey(addr), data, 0).Err(); err != nil {
		return fmt.Errorf("set server info: %w", err)
	}
	return nil
}

// Remove unregisters a game host.
func (c *Client) Remove(ctx context.Context, addr string) error {
	if err := c.rdb.ZRem(ctx, gameServersKey, addr).Err(); err != nil {
		return fmt.Errorf("remove server score: %w", err)
	}
	if err := c.rdb.Del(ctx, serverKey(addr)).Err(); err != nil {
		return fmt.Errorf("delete server info: %w", err)
	}
	return nil
}

// Candidates lists up to limit hosts with at least minFreeUnits free
// resource units, lowest score first.
func (c *Client) Candidates(ctx context.Context, minFreeUnits, limit int) ([]string, error) {
	addrs, err := c.rdb.ZRangeByScore(ctx, gameServersKey, &redis.ZRangeBy{
		Min:   strconv.Itoa(minFreeUnits),
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range servers: %w", err)
	}
	return addrs, nil
}

// Info reads a host's metadata record; nil when the host is unknown.
func (c *Client) Info(ctx context.Context, addr string) (*model.GameServerInfo, error) {
	data, err := c.rdb.Get(ctx, serverKey(addr)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get server info: %w", err)
	}
	var info model.GameServerInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal server info: %w", err)
	}
	return &info, nil
}
