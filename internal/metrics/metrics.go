// Package metrics exposes the Prometheus instrumentation for the
// matchmaking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlayersEnqueued counts first-time queue entries per pool.
	PlayersEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaking_players_enqueued_total",
		Help: "Players added to a matchmaking queue.",
	}, []string{"pool"})

	// MatchesFormed counts launched matches per pool and match type.
	MatchesFormed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaking_matches_formed_total",
		Help: "Matches formed and launched on a game server.",
	}, []string{"pool", "match_type"})

	// MatchPlayers observes how many players each launched match carries.
	MatchPlayers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchmaking_match_players",
		Help:    "Player count per launched match.",
		Buckets: []float64{1, 2, 4, 8, 12, 16, 24, 32, 40},
	})

	// LaunchAttempts counts launch requests sent to game servers.
	LaunchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchmaking_launch_attempts_total",
		Help: "Launch requests sent to game servers.",
	})

	// LaunchFailures counts launch requests that a game server rejected or
	// that failed to complete.
	LaunchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchmaking_launch_failures_total",
		Help: "Launch requests that failed.",
	})

	// LockContention counts formation attempts skipped because another
	// request held the pool lock.
	LockContention = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaking_lock_contention_total",
		Help: "Match formation attempts skipped due to a held pool lock.",
	}, []string{"pool"})
)
