package model

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxPartySize caps a premade party, leader included.
const MaxPartySize = 4

// Pool names accepted by the queue endpoint. The instant variants run the
// same pools with the no-wait size policies.
const (
	PoolPvPCasual        = "pvp_casual"
	PoolPvPCasualInstant = "pvp_casual_instant"
	PoolPvPDuels         = "pvp_duels"
	PoolPvE              = "pve"
	PoolPvEInstant       = "pve_instant"
)

var poolNames = map[string]bool{
	PoolPvPCasual:        true,
	PoolPvPCasualInstant: true,
	PoolPvPDuels:         true,
	PoolPvE:              true,
	PoolPvEInstant:       true,
}

var factions = map[string]bool{
	"LoyalSpaceMarines": true,
	"ChaosSpaceMarines": true,
}

var matchGroups = map[string]bool{
	"PoolAlpha": true,
	"PoolBeta":  true,
	"PoolGamma": true,
	"Vein":      true,
	"Inferno":   true,
	"Abyss":     true,
}

var contours = map[string]bool{
	"prod": true,
	"dev":  true,
}

var versionPattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// QueuedPlayer is the durable queue entry for one player (or party leader).
type QueuedPlayer struct {
	PlayerID          string   `json:"player_id"`
	PoolID            string   `json:"pool_id"`
	Faction           string   `json:"faction"`
	RegionGroup       string   `json:"region_group"`
	PartyMembers      []string `json:"party_members"`
	DesiredMatchGroup string   `json:"desired_match_group"`
	EnqueuedTS        float64  `json:"enqueued_ts"`
	LastSeenTS        float64  `json:"last_seen_ts"`
}

// MatchAssignment binds a player to a launched match until they collect it.
type MatchAssignment struct {
	MatchID string `json:"match_id"`
	Mission string `json:"mission"`
}

// GameServerInfo is the per-host registry record.
type GameServerInfo struct {
	RegionGroup         string `json:"region_group"`
	FreeInstancesAmount int    `json:"free_instances_amount"`
}

// PoolID builds the pool namespace a match is formed within.
func PoolID(gameVersion, gameContour, poolName string) string {
	return gameVersion + "-" + gameContour + ":" + poolName
}

// ReenterRequest is the body of POST /reenter_matchmaking_queue. The
// first-entry fields (faction, desired match group, party) are required on
// the initial call and omitted on heartbeats.
type ReenterRequest struct {
	PlayerID    string `json:"player_id"`
	Region      string `json:"region"`
	PoolName    string `json:"pool_name"`
	GameVersion string `json:"game_version"`
	GameContour string `json:"game_contour"`

	DesiredMatchGroup string   `json:"desired_match_group,omitempty"`
	Faction           string   `json:"faction,omitempty"`
	PartyMembers      []string `json:"party_members,omitempty"`
}

// HasEntryFields reports whether the request carries any first-entry field.
func (r *ReenterRequest) HasEntryFields() bool {
	return r.Faction != "" || r.DesiredMatchGroup != "" || len(r.PartyMembers) > 0
}

// Validate checks required fields, enumerations and party shape.
func (r *ReenterRequest) Validate() error {
	if r.PlayerID == "" {
		return errors.New("player_id is required")
	}
	if r.Region == "" {
		return errors.New("region is required")
	}
	if !poolNames[r.PoolName] {
		return fmt.Errorf("unknown pool_name %q", r.PoolName)
	}
	if !versionPattern.MatchString(r.GameVersion) {
		return fmt.Errorf("malformed game_version %q", r.GameVersion)
	}
	if !contours[r.GameContour] {
		return fmt.Errorf("unknown game_contour %q", r.GameContour)
	}

	if !r.HasEntryFields() {
		return nil
	}
	if !factions[r.Faction] {
		return fmt.Errorf("unknown faction %q", r.Faction)
	}
	if !matchGroups[r.DesiredMatchGroup] {
		return fmt.Errorf("unknown desired_match_group %q", r.DesiredMatchGroup)
	}
	if len(r.PartyMembers) > MaxPartySize {
		return fmt.Errorf("party size %d exceeds maximum %d", len(r.PartyMembers), MaxPartySize)
	}
	if len(r.PartyMembers) > 0 && r.PartyMembers[0] != r.PlayerID {
		return errors.New("party_members must start with the requesting player")
	}
	return nil
}

// Party returns the party list, defaulting to the player alone.
func (r *ReenterRequest) Party() []string {
	if len(r.PartyMembers) > 0 {
		return r.PartyMembers
	}
	return []string{r.PlayerID}
}

// LeaveRequest is the body of POST /leave_matchmaking_queue.
type LeaveRequest struct {
	PlayerID string `json:"player_id"`
}

// Validate checks required fields.
func (r *LeaveRequest) Validate() error {
	if r.PlayerID == "" {
		return errors.New("player_id is required")
	}
	return nil
}

// RegisterServerRequest is the body of POST /register_or_update_game_server.
// The server address comes from the caller's network identity, not the body.
type RegisterServerRequest struct {
	Region              string `json:"region"`
	ResourceUnits       int    `json:"resource_units"`
	FreeResourceUnits   int    `json:"free_resource_units"`
	FreeInstancesAmount int    `json:"free_instances_amount"`
}

// Validate checks required fields.
func (r *RegisterServerRequest) Validate() error {
	if r.Region == "" {
		return errors.New("region is required")
	}
	if r.ResourceUnits < 0 || r.FreeResourceUnits < 0 {
		return errors.New("resource units must be non-negative")
	}
	if r.FreeInstancesAmount < 0 {
		return errors.New("free_instances_amount must be non-negative")
	}
	return nil
}

// ServerStatsRequest is the body of POST /register_game_server_stats.
type ServerStatsRequest struct {
	Region  string         `json:"region"`
	MatchID string         `json:"match_id"`
	Stats   map[string]any `json:"stats"`
}

// Validate checks required fields.
func (r *ServerStatsRequest) Validate() error {
	if r.MatchID == "" {
		return errors.New("match_id is required")
	}
	return nil
}

// Queue poll statuses.
const (
	StatusMatch       = "match"
	StatusWaiting     = "waiting"
	StatusServerError = "server_error"
)

// QueueStatus is the response of POST /reenter_matchmaking_queue.
type QueueStatus struct {
	Status        string         `json:"status"`
	MatchID       string         `json:"match_id,omitempty"`
	Mission       string         `json:"mission,omitempty"`
	FactionCounts map[string]int `json:"faction_counts,omitempty"`
}

// LaunchRequest is the outbound payload for POST http://{server}/launch.
type LaunchRequest struct {
	GameVersion   string `json:"game_version"`
	GameContour   string `json:"game_contour"`
	GameMap       string `json:"game_map"`
	GameMode      string `json:"game_mode"`
	GameMission   string `json:"game_mission"`
	ResourceUnits int    `json:"resource_units"`
	MatchUniqueID string `json:"match_unique_id"`
	FactionSetup  string `json:"faction_setup"`
	MaxTeamSize   int    `json:"max_team_size"`
}

// LaunchResponse is the game host's reply to a launch request.
type LaunchResponse struct {
	Region              string `json:"region"`
	FreeResourceUnits   int    `json:"free_resource_units"`
	FreeInstancesAmount int    `json:"free_instances_amount"`
}
