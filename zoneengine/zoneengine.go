// Package zoneengine implements the shrinking-zone state machine:
// per-stage WAITING->SHRINKING->HOLDING phases terminating in FINAL,
// idempotent advancement, and the damage loop the Scheduler drives
// every tick. Stage progress is computed from elapsed wall-clock time
// rather than tick count, so a missed or delayed tick still lands on
// the correct stage.
package zoneengine

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/events"
	"github.com/mark3labs/assassin-core/geometry"
	"github.com/mark3labs/assassin-core/store"
	"github.com/pocketbase/pocketbase/core"
)

// Engine is the ZoneEngine.
type Engine struct {
	store     *store.Store
	publisher *events.Publisher
	log       *log.Logger
}

// New constructs a ZoneEngine.
func New(st *store.Store, pub *events.Publisher) *Engine {
	return &Engine{store: st, publisher: pub, log: log.With("component", "zoneengine")}
}

// Advance computes the phase implied by now versus the stage's start
// time plus cumulative stage durations and writes a new GameZoneState
// only if something actually changed, so calling it twice for the same
// now is a no-op on the second call.
func (e *Engine) Advance(gameID string, now time.Time) (*domain.GameZoneState, error) {
	game, err := e.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	cfg, ok := game.ShrinkingZoneConfig()
	if !ok || len(cfg.Stages) == 0 {
		return nil, nil
	}

	state, err := e.store.GetZoneState(gameID)
	if err != nil {
		state = &domain.GameZoneState{
			GameID:             gameID,
			CurrentStageIndex:  0,
			CurrentPhase:       domain.ZonePhaseWaiting,
			CurrentCenter:      cfg.InitialCenter,
			CurrentRadiusMeters: cfg.InitialRadiusMeters,
			StageStartTime:     now,
			LastUpdated:        now,
		}
		if err := e.store.PutZoneState(state); err != nil {
			return nil, err
		}
	}

	next := computeNext(cfg, *state, now)
	if next == *state {
		return state, nil
	}
	next.LastUpdated = now
	if err := e.store.PutZoneState(&next); err != nil {
		return nil, err
	}
	_ = e.publisher.Publish(events.SubjectZoneStateChanged, &next)
	return &next, nil
}

// computeNext derives the zone state implied purely by elapsed time,
// never mutating its input, so Advance can detect "nothing changed"
// by simple equality.
func computeNext(cfg domain.ShrinkingZoneConfig, state domain.GameZoneState, now time.Time) domain.GameZoneState {
	if state.CurrentPhase == domain.ZonePhaseFinal {
		return state
	}

	stageIndex := state.CurrentStageIndex
	stage := cfg.Stages[stageIndex]
	elapsed := now.Sub(state.StageStartTime)

	waitEnd := time.Duration(stage.WaitSec) * time.Second
	shrinkEnd := waitEnd + time.Duration(stage.ShrinkSec)*time.Second
	holdEnd := shrinkEnd + time.Duration(stage.HoldSec)*time.Second

	prevRadius := previousStageRadius(cfg, stageIndex)

	switch {
	case elapsed < waitEnd:
		state.CurrentPhase = domain.ZonePhaseWaiting
		state.CurrentRadiusMeters = prevRadius

	case elapsed < shrinkEnd:
		enteringShrink := state.CurrentPhase != domain.ZonePhaseShrinking
		state.CurrentPhase = domain.ZonePhaseShrinking
		shrinkElapsed := elapsed - waitEnd
		frac := float64(shrinkElapsed) / float64(time.Duration(stage.ShrinkSec)*time.Second)
		if frac > 1 {
			frac = 1
		}
		state.CurrentRadiusMeters = prevRadius + (stage.TargetRadiusM-prevRadius)*frac
		// The stage's center is resolved once, on entering SHRINKING, so
		// later calls within the stage keep it rather than offsetting it again.
		if enteringShrink {
			state.CurrentCenter = resolveCenter(cfg, stage, stageIndex, state.CurrentCenter)
		}

	case elapsed < holdEnd:
		state.CurrentPhase = domain.ZonePhaseHolding
		state.CurrentRadiusMeters = stage.TargetRadiusM

	default:
		if stageIndex == len(cfg.Stages)-1 {
			state.CurrentPhase = domain.ZonePhaseFinal
			state.CurrentRadiusMeters = stage.TargetRadiusM
		} else {
			state.CurrentStageIndex = stageIndex + 1
			state.StageStartTime = state.StageStartTime.Add(holdEnd)
			state.CurrentPhase = domain.ZonePhaseWaiting
			return computeNext(cfg, state, now)
		}
	}

	return state
}

func previousStageRadius(cfg domain.ShrinkingZoneConfig, stageIndex int) float64 {
	if stageIndex == 0 {
		return cfg.InitialRadiusMeters
	}
	return cfg.Stages[stageIndex-1].TargetRadiusM
}

func resolveCenter(cfg domain.ShrinkingZoneConfig, stage domain.ZoneStage, stageIndex int, current domain.Coordinate) domain.Coordinate {
	switch stage.NewCenterPolicy {
	case domain.CenterFixed:
		if stage.FixedCenter != nil {
			return *stage.FixedCenter
		}
		return current
	case domain.CenterRandomWithinPrevious:
		// Seeded per (stageIndex, initial center latitude), so the offset
		// drawn for a stage is reproducible.
		r := rand.New(rand.NewSource(int64(stageIndex)*31 + int64(cfg.InitialCenter.Latitude*1e6)))
		prevRadius := previousStageRadius(cfg, stageIndex)
		bearingDegrees := r.Float64() * 360
		offset := r.Float64() * prevRadius * 0.5
		dest, err := geometry.Destination(geometry.FromDomain(current), bearingDegrees, offset)
		if err != nil {
			return current
		}
		return domain.Coordinate{Latitude: dest.Latitude, Longitude: dest.Longitude}
	default: // CenterKeep
		return current
	}
}

// RunDamageLoop applies zone damage to every ACTIVE player with a recent
// location outside the current zone radius plus tolerance,
// returning the IDs of players who died this tick so the caller can run
// AssignmentEngine.Reassign for each.
func (e *Engine) RunDamageLoop(gameID string, now time.Time) ([]string, error) {
	game, err := e.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	cfg, ok := game.ShrinkingZoneConfig()
	if !ok {
		return nil, nil
	}
	state, err := e.store.GetZoneState(gameID)
	if err != nil {
		return nil, nil
	}

	tolerance := cfg.ToleranceMeters
	if tolerance <= 0 {
		tolerance = domain.DefaultToleranceMeters
	}
	playerHealth := game.PlayerHealthDefault
	if playerHealth <= 0 {
		playerHealth = domain.DefaultPlayerHealth
	}

	players, err := e.store.GetActivePlayersByGameID(gameID)
	if err != nil {
		return nil, err
	}

	var died []string
	for _, p := range players {
		coord, ok := p.Coordinate()
		if !ok || p.LocationTimestamp == nil || now.Sub(*p.LocationTimestamp) > 5*time.Minute {
			continue
		}
		dist, err := geometry.Haversine(state.CurrentCenter, coord)
		if err != nil {
			return nil, errs.InvalidGeometry("damage loop distance: %v", err)
		}
		excess := dist - (state.CurrentRadiusMeters + tolerance)
		if excess <= 0 {
			continue
		}
		damage := cfg.DamagePerTickPerMeterOutside * excess
		if cfg.MaxDamagePerTick > 0 && damage > cfg.MaxDamagePerTick {
			damage = cfg.MaxDamagePerTick
		}
		p.AccumulatedZoneDamage += damage
		if p.AccumulatedZoneDamage >= float64(playerHealth) {
			p.Status = domain.PlayerDead
			died = append(died, p.ID)
		}
		if err := e.store.Transact(func(txApp core.App) error {
			return e.store.PutPlayer(txApp, p)
		}); err != nil {
			return nil, err
		}
	}
	return died, nil
}
