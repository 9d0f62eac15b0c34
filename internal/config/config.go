package config

import "os"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port          string
	RedisAddr     string
	RedisPassword string
	// DatabaseURL is optional; without it stats reports are log-only.
	DatabaseURL string
	// ConfigPath points at the matchmaking mission/resource config file.
	ConfigPath string
	// MissionDataURL is the content endpoint the mission catalog refreshes from.
	MissionDataURL string
	// GameServerPort is the port game hosts expose their launch API on.
	GameServerPort string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:           envOrDefault("PORT", "8000"),
		RedisAddr:      envOrDefault("REDIS_HOST", "localhost") + ":" + envOrDefault("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ConfigPath:     envOrDefault("MATCHMAKING_CONFIG", "configs/matchmaking_config.json"),
		MissionDataURL: envOrDefault("MISSION_DATA_URL", "https://content.ecliptic-games.com/mission_data.json"),
		GameServerPort: envOrDefault("GAME_SERVER_PORT", "8000"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
