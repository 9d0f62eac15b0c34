package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// StatsRepo persists game-server stats reports.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo creates a StatsRepo.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Record inserts one stats report. The stats payload is stored as-is in a
// jsonb column so new counters don't need schema changes.
func (r *StatsRepo) Record(ctx context.Context, serverAddr, region, matchID string, stats map[string]any) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO server_stats (server_addr, region, match_id, stats)
		 VALUES ($1, $2, $3, $4)`,
		serverAddr, region, matchID, payload,
	)
	if err != nil {
		return fmt.Errorf("record server stats: %w", err)
	}
	return nil
}
