// Package scheduler implements the Scheduler: a periodic, at-least-once
// tick over every ACTIVE, non-paused game that advances ZoneEngine, runs
// the damage loop, and evicts stale proximity cache entries, bounded by
// a per-tick deadline and a bounded fan-out, driven by a time.Ticker
// instead of a busy loop.
package scheduler

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/assassin-core/assignment"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/metrics"
	"github.com/mark3labs/assassin-core/proximity"
	"github.com/mark3labs/assassin-core/store"
	"github.com/mark3labs/assassin-core/zoneengine"
	"github.com/pocketbase/pocketbase/core"
)

// LeaseKeyPrefix namespaces per-game lease keys in the Store.
const LeaseKeyPrefix = "scheduler:game:"

// Scheduler drives the periodic game tick.
type Scheduler struct {
	store       *store.Store
	zoneEngine  *zoneengine.Engine
	proximity   *proximity.Engine
	assign      *assignment.Engine

	tickInterval time.Duration
	tickDeadline time.Duration
	leaseTTL     time.Duration
	maxFanout    int
	proximityIdleCutoff time.Duration

	log    *log.Logger
	cancel context.CancelFunc
}

// Config bundles the tunables from config.Config the Scheduler needs.
type Config struct {
	TickInterval        time.Duration
	TickDeadline        time.Duration
	LeaseTTL            time.Duration
	MaxFanout           int
	ProximityIdleCutoff time.Duration
}

// New constructs a Scheduler.
func New(st *store.Store, ze *zoneengine.Engine, pe *proximity.Engine, ae *assignment.Engine, cfg Config) *Scheduler {
	maxFanout := cfg.MaxFanout
	if maxFanout <= 0 {
		maxFanout = runtime.GOMAXPROCS(0) * 4
	}
	return &Scheduler{
		store:               st,
		zoneEngine:          ze,
		proximity:           pe,
		assign:              ae,
		tickInterval:        cfg.TickInterval,
		tickDeadline:        cfg.TickDeadline,
		leaseTTL:            cfg.LeaseTTL,
		maxFanout:           maxFanout,
		proximityIdleCutoff: cfg.ProximityIdleCutoff,
		log:                 log.With("component", "scheduler"),
	}
}

// Run starts the periodic tick loop; it blocks until ctx is cancelled or
// Stop is called. A time.Ticker coalesces, rather than queues, missed
// ticks, so a slow tick never causes a burst of catch-up ticks.
func (sch *Scheduler) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	sch.cancel = cancel

	ticker := time.NewTicker(sch.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sch.RunTick(ctx, now)
		}
	}
}

// Stop cancels a running Run loop.
func (sch *Scheduler) Stop() {
	if sch.cancel != nil {
		sch.cancel()
	}
}

// RunTick runs a single tick over every ACTIVE, non-paused game, bounded
// by tickDeadline, fanning out up to maxFanout games concurrently.
func (sch *Scheduler) RunTick(ctx context.Context, now time.Time) {
	start := time.Now()
	defer func() {
		metrics.SchedulerTickDuration.Observe(time.Since(start).Seconds())
	}()

	tickCtx, cancel := context.WithTimeout(ctx, sch.tickDeadline)
	defer cancel()

	games, err := sch.store.ListGamesByStatus(domain.GameStatusActive)
	if err != nil {
		sch.log.Error("list active games", "error", err)
		metrics.SchedulerTickErrors.Inc()
		return
	}
	metrics.ActiveGames.Set(float64(len(games)))

	sem := make(chan struct{}, sch.maxFanout)
	done := make(chan struct{}, len(games))

	for _, g := range games {
		g := g
		select {
		case <-tickCtx.Done():
			return
		case sem <- struct{}{}:
		}
		go func() {
			defer func() { <-sem; done <- struct{}{} }()
			sch.tickGame(tickCtx, g, now)
		}()
	}
	for range games {
		select {
		case <-tickCtx.Done():
			return
		case <-done:
		}
	}

	if sch.proximity != nil {
		sch.proximity.EvictIdle(now.Add(-sch.proximityIdleCutoff))
	}
}

func (sch *Scheduler) tickGame(ctx context.Context, g *domain.Game, now time.Time) {
	if g.EmergencyPause.Active {
		return
	}

	leaseKey := LeaseKeyPrefix + g.ID
	if err := sch.store.AcquireLease(leaseKey, sch.leaseTTL); err != nil {
		metrics.SchedulerGamesSkippedLeaseHeld.Inc()
		return
	}
	defer func() { _ = sch.store.ReleaseLease(leaseKey) }()

	if sch.zoneEngine != nil {
		if _, err := sch.zoneEngine.Advance(g.ID, now); err != nil {
			sch.log.Error("zone engine advance", "game", g.ID, "error", err)
			metrics.SchedulerTickErrors.Inc()
		}
		if died, err := sch.zoneEngine.RunDamageLoop(g.ID, now); err != nil {
			sch.log.Error("zone damage loop", "game", g.ID, "error", err)
			metrics.SchedulerTickErrors.Inc()
		} else {
			sch.applyZoneDeaths(g, died)
		}
	}

	metrics.SchedulerGamesProcessed.Inc()
}

// applyZoneDeaths runs the same reassignment AssignmentEngine would run
// for a kill, for every player the zone damage loop killed this tick.
// Each victim's reassignment (and, if it ends the game, the resulting
// status flip) is applied inside one Store.Transact so a crash mid-tick
// never leaves the assignment graph inconsistent with Game.Status.
func (sch *Scheduler) applyZoneDeaths(g *domain.Game, diedPlayerIDs []string) {
	for _, victimID := range diedPlayerIDs {
		inbound, err := sch.store.GetActiveAssignmentByTarget(g.ID, victimID)
		if err != nil {
			continue
		}
		var result assignment.ReassignResult
		txErr := sch.store.Transact(func(txApp core.App) error {
			closedAt := time.Now()
			inbound.Status = domain.AssignmentCancelled
			inbound.CompletedDate = &closedAt
			if err := sch.store.PutAssignment(txApp, inbound); err != nil {
				return err
			}
			var rerr error
			result, rerr = sch.assign.Reassign(txApp, g.ID, inbound.AssignerID, victimID)
			if rerr != nil {
				return rerr
			}
			if result.GameEnded {
				g.Status = domain.GameStatusCompleted
				g.WinnerID = result.WinnerID
				endedAt := time.Now()
				g.EndedAt = &endedAt
				return sch.store.PutGame(txApp, g)
			}
			return nil
		})
		if txErr != nil {
			sch.log.Error("reassign after zone death", "game", g.ID, "victim", victimID, "error", txErr)
		}
	}
}
