package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ecliptic-games/matchmaking/internal/config"
	"github.com/ecliptic-games/matchmaking/internal/handler"
	"github.com/ecliptic-games/matchmaking/internal/logger"
	"github.com/ecliptic-games/matchmaking/internal/middleware"
	"github.com/ecliptic-games/matchmaking/internal/mission"
	"github.com/ecliptic-games/matchmaking/internal/repository"
	"github.com/ecliptic-games/matchmaking/internal/repository/postgres"
	redisrepo "github.com/ecliptic-games/matchmaking/internal/repository/redis"
	"github.com/ecliptic-games/matchmaking/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("redisAddr", cfg.RedisAddr).Str("configPath", cfg.ConfigPath).Msg("Config loaded")

	// Mission and resource configuration
	missionCfg, err := mission.LoadConfig(cfg.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Matchmaking config load failed")
	}

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	// Postgres is optional; without it stats reports are log-only.
	var statsRepo repository.StatsRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		statsRepo = postgres.NewStatsRepo(db)
	} else {
		log.Warn().Msg("DATABASE_URL not set, server stats are log-only")
	}

	// Mission catalog; a failed startup refresh is non-fatal, the content
	// pipeline re-triggers via /update_mission_data.
	catalog := mission.NewCatalog(cfg.MissionDataURL)
	if err := catalog.Refresh(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Initial mission catalog refresh failed")
	}

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	launcher := service.NewLauncher(cfg.GameServerPort)
	matchmakingSvc := service.NewMatchmakingService(redisClient, redisClient, catalog, missionCfg, launcher, wsHub)
	registrySvc := service.NewRegistryService(redisClient, statsRepo, wsHub)

	// Handlers
	matchmakingHandler := handler.NewMatchmakingHandler(matchmakingSvc)
	serverHandler := handler.NewServerHandler(registrySvc)
	missionHandler := handler.NewMissionHandler(catalog)
	wsHandler := handler.NewWSHandler(wsHub)

	// Router
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Player endpoints
	mux.HandleFunc("POST /reenter_matchmaking_queue", matchmakingHandler.Reenter)
	mux.HandleFunc("POST /leave_matchmaking_queue", matchmakingHandler.Leave)

	// Game server endpoints
	mux.HandleFunc("POST /register_or_update_game_server", serverHandler.Register)
	mux.HandleFunc("POST /unregister_game_server", serverHandler.Unregister)
	mux.HandleFunc("POST /register_game_server_stats", serverHandler.Stats)

	// Content pipeline
	mux.HandleFunc("POST /update_mission_data", missionHandler.Update)

	// Observability
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
