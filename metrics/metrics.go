// Package metrics exposes Prometheus instrumentation for the Scheduler
// and AntiCheat, grounded on the promauto registration pattern used by
// the worker-pool in other_examples (MOHCentral-opm-stats-api).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SchedulerTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "assassin_scheduler_tick_duration_seconds",
		Help:    "Duration of one Scheduler tick across all active games.",
		Buckets: prometheus.DefBuckets,
	})

	SchedulerGamesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assassin_scheduler_games_processed_total",
		Help: "Total number of per-game ticks the Scheduler has run.",
	})

	SchedulerGamesSkippedLeaseHeld = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assassin_scheduler_games_skipped_lease_held_total",
		Help: "Total number of per-game ticks skipped because the lease was already held.",
	})

	SchedulerTickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assassin_scheduler_tick_errors_total",
		Help: "Total number of per-game tick errors (logged and skipped, not fatal).",
	})

	KillsVerified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assassin_kills_verified_total",
		Help: "Total number of kills that reached VERIFIED status.",
	})

	KillsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assassin_kills_rejected_total",
		Help: "Total number of rejected kill attempts, by reason.",
	}, []string{"reason"})

	AntiCheatViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assassin_anticheat_violations_total",
		Help: "Total number of anti-cheat violations observed, by type.",
	}, []string{"type"})

	ActiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assassin_active_games",
		Help: "Current number of games in ACTIVE status.",
	})
)
