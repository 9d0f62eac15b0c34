package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/metrics"
	"github.com/ecliptic-games/matchmaking/internal/model"
)

// launchTimeout bounds one launch request; a slow host should not hold the
// pool lock past its own expiry.
const launchTimeout = 5 * time.Second

// Launcher sends launch requests to game hosts over their HTTP launch API.
type Launcher struct {
	client *http.Client
	port   string
}

// NewLauncher creates a Launcher targeting the given game-host port.
func NewLauncher(gameServerPort string) *Launcher {
	return &Launcher{
		client: &http.Client{Timeout: launchTimeout},
		port:   gameServerPort,
	}
}

// Launch asks one game host to start a match. A non-2xx reply or transport
// failure is an error; the caller moves on to the next candidate host.
func (l *Launcher) Launch(ctx context.Context, addr string, launch model.LaunchRequest) (*model.LaunchResponse, error) {
	metrics.LaunchAttempts.Inc()

	body, err := json.Marshal(launch)
	if err != nil {
		return nil, fmt.Errorf("marshal launch request: %w", err)
	}
	url := "http://" + net.JoinHostPort(addr, l.port) + "/launch"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build launch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		metrics.LaunchFailures.Inc()
		return nil, fmt.Errorf("launch on %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.LaunchFailures.Inc()
		return nil, fmt.Errorf("launch on %s: status %d", addr, resp.StatusCode)
	}

	var out model.LaunchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.LaunchFailures.Inc()
		return nil, fmt.Errorf("decode launch response from %s: %w", addr, err)
	}

	log.Info().
		Str("server", addr).
		Str("matchId", launch.MatchUniqueID).
		Str("mission", launch.GameMission).
		Msg("Match launched")
	return &out, nil
}
