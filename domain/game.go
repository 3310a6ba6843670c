package domain

import (
	"encoding/json"
	"time"
)

// GameStatus is the top-level lifecycle state of a Game.
type GameStatus string

const (
	GameStatusPending   GameStatus = "PENDING"
	GameStatusActive    GameStatus = "ACTIVE"
	GameStatusCompleted GameStatus = "COMPLETED"
	GameStatusCancelled GameStatus = "CANCELLED"
)

// AssignmentStrategy selects how AssignmentEngine builds the elimination
// chain on game start.
type AssignmentStrategy string

const (
	StrategyCircular AssignmentStrategy = "CIRCULAR"
	StrategyRandom   AssignmentStrategy = "RANDOM"
)

// EmergencyPause records an admin-triggered freeze that does not change
// Game.Status.
type EmergencyPause struct {
	Active      bool      `json:"active" db:"emergency_pause_active"`
	Reason      string    `json:"reason,omitempty" db:"emergency_pause_reason"`
	TriggeredBy string    `json:"triggeredBy,omitempty" db:"emergency_pause_triggered_by"`
	Timestamp   time.Time `json:"timestamp,omitempty" db:"emergency_pause_timestamp"`
}

// Game is the top-level entity bounding play.
type Game struct {
	ID             string             `json:"id" db:"id"`
	Name           string             `json:"name" db:"name"`
	Status         GameStatus         `json:"status" db:"status"`
	AdminPlayerID  string             `json:"adminPlayerId" db:"admin_player_id"`
	CreatedAt      time.Time          `json:"createdAt" db:"created"`
	StartedAt      *time.Time         `json:"startedAt,omitempty" db:"started_at"`
	EndedAt        *time.Time         `json:"endedAt,omitempty" db:"ended_at"`
	Boundary       Polygon            `json:"boundary" db:"boundary"`
	Settings       map[string]any     `json:"settings,omitempty" db:"settings"`
	EmergencyPause EmergencyPause     `json:"emergencyPause" db:"-"`
	MapID          string             `json:"mapId,omitempty" db:"map_id"`
	Strategy       AssignmentStrategy `json:"strategy,omitempty" db:"strategy"`

	// First-class per-game tunables rather than buried in Settings.
	WeaponDistanceMeters float64 `json:"weaponDistanceMeters" db:"weapon_distance_meters"`
	PlayerHealthDefault  int     `json:"playerHealthDefault" db:"player_health_default"`

	// Version is the optimistic-concurrency token checked by Store.transact.
	Version int64 `json:"-" db:"version"`
	WinnerID string `json:"winnerId,omitempty" db:"winner_id"`
}

// DefaultWeaponDistanceMeters is used when a game does not specify one.
const DefaultWeaponDistanceMeters = 10.0

// DefaultPlayerHealth is used when a game does not specify one.
const DefaultPlayerHealth = 100

// ShrinkingZoneConfig pulls shrinkingZoneConfig out of Settings into a
// typed structure understood by zoneengine. Settings set in-process
// (CreateGame) holds a real ShrinkingZoneConfig; a game re-loaded from
// the store holds whatever the JSON field round-tripped as
// (map[string]any), so both shapes are handled.
func (g *Game) ShrinkingZoneConfig() (ShrinkingZoneConfig, bool) {
	raw, ok := g.Settings["shrinkingZoneConfig"]
	if !ok {
		return ShrinkingZoneConfig{}, false
	}
	if cfg, ok := raw.(ShrinkingZoneConfig); ok {
		return cfg, true
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return ShrinkingZoneConfig{}, false
	}
	var cfg ShrinkingZoneConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return ShrinkingZoneConfig{}, false
	}
	return cfg, true
}
