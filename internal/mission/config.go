// Package mission holds the matchmaking mission configuration and the
// in-process mission catalog cache.
package mission

import (
	"errors"
	"fmt"
	"os"

	"encoding/json"

	"github.com/ecliptic-games/matchmaking/pkg/formation"
)

// Config is the matchmaking_config.json document: weighted mission trees per
// mode and the resource-unit cost of each match type.
type Config struct {
	Missions struct {
		PvP formation.ModeConfig `json:"pvp"`
		PvE formation.ModeConfig `json:"pve"`
	} `json:"missions"`
	ResourceUnits map[string]int `json:"resource_units"`
}

// LoadConfig reads and validates the matchmaking configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read matchmaking config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse matchmaking config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid matchmaking config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Missions.PvP) == 0 && len(c.Missions.PvE) == 0 {
		return errors.New("no mission trees configured")
	}
	for _, mode := range []formation.ModeConfig{c.Missions.PvP, c.Missions.PvE} {
		for group, byType := range mode {
			if len(byType) == 0 {
				return fmt.Errorf("match group %q has no match types", group)
			}
			for matchType, weights := range byType {
				if len(weights) == 0 {
					return fmt.Errorf("match group %q type %q has no missions", group, matchType)
				}
				for name, w := range weights {
					if w < 0 {
						return fmt.Errorf("mission %q has negative weight", name)
					}
				}
			}
		}
	}
	for _, matchType := range []string{
		formation.MatchTypeDuel,
		formation.MatchTypeLow,
		formation.MatchTypeMedium,
		formation.MatchTypeLarge,
		formation.MatchTypeRaid4,
	} {
		if _, ok := c.ResourceUnits[matchType]; !ok {
			return fmt.Errorf("resource_units missing match type %q", matchType)
		}
	}
	return nil
}

// ModeConfigFor returns the mission tree for a pool name.
func (c *Config) ModeConfigFor(poolName string) formation.ModeConfig {
	switch poolName {
	case "pve", "pve_instant":
		return c.Missions.PvE
	default:
		return c.Missions.PvP
	}
}
