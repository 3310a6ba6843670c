package domain

import "time"

// PlayerStatus is the lifecycle state of a player within a game.
type PlayerStatus string

const (
	PlayerInvited   PlayerStatus = "INVITED"
	PlayerActive    PlayerStatus = "ACTIVE"
	PlayerDead      PlayerStatus = "DEAD"
	PlayerSpectator PlayerStatus = "SPECTATOR"
)

// LocationVisibility controls who can see a player's location.
type LocationVisibility string

const (
	VisibilityGameOnly    LocationVisibility = "GAME_ONLY"
	VisibilityTeamOnly    LocationVisibility = "TEAM_ONLY"
	VisibilityFriendsOnly LocationVisibility = "FRIENDS_ONLY"
	VisibilityPrivate     LocationVisibility = "PRIVATE"
)

// LocationPrecision controls how exact a player's reported location is
// when surfaced to others.
type LocationPrecision string

const (
	PrecisionExact       LocationPrecision = "EXACT"
	PrecisionApproximate LocationPrecision = "APPROXIMATE"
	PrecisionZone        LocationPrecision = "ZONE"
)

// Player is a participant, possibly across multiple games over its
// lifetime but ACTIVE in at most one at a time.
type Player struct {
	ID     string       `json:"id" db:"id"`
	Name   string       `json:"name" db:"name"`
	Email  string       `json:"email" db:"email"`
	Status PlayerStatus `json:"status" db:"status"`

	GameID     string `json:"gameId,omitempty" db:"game_id"`
	TargetID   string `json:"targetId,omitempty" db:"target_id"`
	TargetName string `json:"targetName,omitempty" db:"target_name"`
	KillCount  int    `json:"killCount" db:"kill_count"`

	Latitude          *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude         *float64   `json:"longitude,omitempty" db:"longitude"`
	Accuracy          *float64   `json:"accuracy,omitempty" db:"accuracy"`
	LocationTimestamp *time.Time `json:"locationTimestamp,omitempty" db:"location_timestamp"`

	LocationSharingEnabled bool               `json:"locationSharingEnabled" db:"location_sharing_enabled"`
	LocationVisibility     LocationVisibility `json:"locationVisibility" db:"location_visibility"`
	LocationPrecision      LocationPrecision  `json:"locationPrecision" db:"location_precision"`
	LocationPauseCooldownUntil *time.Time     `json:"locationPauseCooldownUntil,omitempty" db:"location_pause_cooldown_until"`

	// DeviceFingerprint is the last fingerprint sent with a location
	// update. FingerprintHistory is not persisted or filled by the store;
	// AntiCheat tracks fingerprint sightings in its own in-memory state.
	DeviceFingerprint string               `json:"-" db:"device_fingerprint"`
	FingerprintHistory []FingerprintSighting `json:"-" db:"-"`

	// AccumulatedZoneDamage tracks damage taken from the shrinking zone;
	// resets are never needed since death is terminal.
	AccumulatedZoneDamage float64 `json:"-" db:"accumulated_zone_damage"`

	Version int64 `json:"-" db:"version"`
}

// FingerprintSighting records one observed device fingerprint change.
type FingerprintSighting struct {
	Fingerprint string
	SeenAt      time.Time
}

// Coordinate returns the player's last known location, if any.
func (p *Player) Coordinate() (Coordinate, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *p.Latitude, Longitude: *p.Longitude}, true
}
