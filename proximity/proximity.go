// Package proximity implements the ProximityEngine: distance to target,
// kill eligibility, and banded proximity alerts with hysteresis, cached
// per-player in memory with a TTL instead of round-tripping to the
// store on every tick.
package proximity

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/events"
	"github.com/mark3labs/assassin-core/geometry"
	"github.com/mark3labs/assassin-core/safezone"
	"github.com/mark3labs/assassin-core/store"
)

// Alert bands in meters; each band (plus the game's weapon distance) is
// armed, fired and re-armed independently of the others.
var defaultBands = []float64{100, 50}

// HysteresisWindow is how long a player must stay outside a band before
// its "alerted" flag clears, preventing alert flapping at the boundary.
const HysteresisWindow = 60 * time.Second

// CacheTTL is how long a cached Result remains valid; after it,
// RecentProximity reports no result until the next computation.
const CacheTTL = 30 * time.Second

// metersPerH3Ring is a conservative per-ring distance estimate at
// geometry.DefaultH3Resolution, used to size the grid-distance pre-filter
// in OnLocationUpdate from the bands actually in play for a game.
const metersPerH3Ring = 150.0

// Result is one player's proximity-to-target snapshot.
type Result struct {
	PlayerID         string
	TargetID         string
	DistanceMeters    float64
	EligibleForKill  bool
	ComputedAt       time.Time
}

type bandState struct {
	band      float64
	armed     bool
	exitedAt  time.Time
}

type playerCache struct {
	mu         sync.Mutex
	result     Result
	hasResult  bool
	bandStates map[float64]*bandState
}

// Engine is the ProximityEngine.
type Engine struct {
	store     *store.Store
	safezones *safezone.Service
	publisher *events.Publisher
	weaponFallback float64

	mu     sync.Mutex
	cache  map[string]*playerCache
	log    *log.Logger
}

// New constructs a ProximityEngine.
func New(st *store.Store, sz *safezone.Service, pub *events.Publisher) *Engine {
	return &Engine{
		store:          st,
		safezones:      sz,
		publisher:      pub,
		weaponFallback: domain.DefaultWeaponDistanceMeters,
		cache:          make(map[string]*playerCache),
		log:            log.With("component", "proximity"),
	}
}

func (e *Engine) cacheFor(playerID string) *playerCache {
	e.mu.Lock()
	defer e.mu.Unlock()
	pc, ok := e.cache[playerID]
	if !ok {
		pc = &playerCache{bandStates: make(map[float64]*bandState)}
		e.cache[playerID] = pc
	}
	return pc
}

// OnLocationUpdate recomputes player P's distance to its current target
// and emits any banded alerts. Before paying for an exact Haversine
// computation it checks whether P and the target's H3 cells are even
// within grid range of the widest band in play; pairs that aren't are
// certainly out of every band and out of kill range, so the exact
// distance is skipped entirely.
func (e *Engine) OnLocationUpdate(gameID, playerID string, now time.Time) (Result, error) {
	game, err := e.store.GetGame(gameID)
	if err != nil {
		return Result{}, err
	}
	p, err := e.store.GetPlayer(playerID)
	if err != nil {
		return Result{}, err
	}
	if p.TargetID == "" {
		return Result{}, nil
	}
	target, err := e.store.GetPlayer(p.TargetID)
	if err != nil {
		return Result{}, err
	}

	pCoord, pOK := p.Coordinate()
	tCoord, tOK := target.Coordinate()
	if !pOK || !tOK {
		return Result{}, nil
	}

	weaponDistance := game.WeaponDistanceMeters
	if weaponDistance <= 0 {
		weaponDistance = e.weaponFallback
	}

	widestBand := weaponDistance
	for _, b := range defaultBands {
		if b > widestBand {
			widestBand = b
		}
	}
	maxRings := int(math.Ceil(widestBand/metersPerH3Ring)) + 1

	nearby, err := geometry.NearbyCells(pCoord, tCoord, geometry.DefaultH3Resolution, maxRings)
	if err != nil {
		return Result{}, err
	}
	if !nearby {
		result := Result{
			PlayerID:        playerID,
			TargetID:        p.TargetID,
			DistanceMeters:  math.Inf(1),
			EligibleForKill: false,
			ComputedAt:      now,
		}
		pc := e.cacheFor(playerID)
		pc.mu.Lock()
		pc.result = result
		pc.hasResult = true
		pc.mu.Unlock()
		return result, nil
	}

	dist, err := geometry.Haversine(pCoord, tCoord)
	if err != nil {
		return Result{}, err
	}

	eligible, err := e.isEligible(game, p, target, dist, weaponDistance, now)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		PlayerID:        playerID,
		TargetID:        p.TargetID,
		DistanceMeters:  dist,
		EligibleForKill: eligible,
		ComputedAt:      now,
	}

	pc := e.cacheFor(playerID)
	pc.mu.Lock()
	pc.result = result
	pc.hasResult = true
	pc.mu.Unlock()

	e.emitBandAlerts(pc, playerID, p.TargetID, dist, weaponDistance, now)

	return result, nil
}

func (e *Engine) isEligible(game *domain.Game, p, target *domain.Player, dist, weaponDistance float64, now time.Time) (bool, error) {
	if game.Status != domain.GameStatusActive || game.EmergencyPause.Active {
		return false, nil
	}
	if dist > weaponDistance {
		return false, nil
	}
	if e.safezones == nil {
		return true, nil
	}
	pCoord, _ := p.Coordinate()
	tCoord, _ := target.Coordinate()
	pSafe, err := e.safezones.IsPointSafe(game.ID, p.ID, pCoord, now)
	if err != nil {
		return false, err
	}
	if pSafe {
		return false, nil
	}
	tSafe, err := e.safezones.IsPointSafe(game.ID, target.ID, tCoord, now)
	if err != nil {
		return false, err
	}
	return !tSafe, nil
}

// emitBandAlerts fires one alert per band per direction (entering a
// band) and re-arms only after the player has been outside the band for
// HysteresisWindow.
func (e *Engine) emitBandAlerts(pc *playerCache, playerID, targetID string, dist, weaponDistance float64, now time.Time) {
	bands := append(append([]float64{}, defaultBands...), weaponDistance)

	pc.mu.Lock()
	defer pc.mu.Unlock()

	for _, band := range bands {
		bs, ok := pc.bandStates[band]
		if !ok {
			bs = &bandState{band: band, armed: true}
			pc.bandStates[band] = bs
		}

		inside := dist <= band
		if inside {
			if bs.armed {
				e.publish(playerID, targetID, band, dist)
				bs.armed = false
			}
			bs.exitedAt = time.Time{}
			continue
		}

		if !bs.armed {
			if bs.exitedAt.IsZero() {
				bs.exitedAt = now
			} else if now.Sub(bs.exitedAt) >= HysteresisWindow {
				bs.armed = true
			}
		}
	}
}

func (e *Engine) publish(playerID, targetID string, band, dist float64) {
	if e.publisher == nil {
		return
	}
	_ = e.publisher.Publish(events.SubjectProximityAlert, map[string]any{
		"playerId":       playerID,
		"targetId":       targetID,
		"band":           band,
		"distanceMeters": dist,
	})
}

// RecentProximity returns the last cached Result for playerID, if it is
// still within CacheTTL of now.
func (e *Engine) RecentProximity(playerID string, now time.Time) (Result, bool) {
	pc := e.cacheFor(playerID)
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.hasResult {
		return Result{}, false
	}
	if now.Sub(pc.result.ComputedAt) > CacheTTL {
		return Result{}, false
	}
	return pc.result, true
}

// EvictIdle drops cached state for players untouched since before
// cutoff, called periodically by the Scheduler rather than a dedicated
// goroutine.
func (e *Engine) EvictIdle(cutoff time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, pc := range e.cache {
		pc.mu.Lock()
		stale := !pc.hasResult || pc.result.ComputedAt.Before(cutoff)
		pc.mu.Unlock()
		if stale {
			delete(e.cache, id)
		}
	}
}
