package zoneengine

import (
	"testing"
	"time"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basicConfig() domain.ShrinkingZoneConfig {
	return domain.ShrinkingZoneConfig{
		InitialCenter:       domain.Coordinate{Latitude: 40.5, Longitude: -79.5},
		InitialRadiusMeters: 2000,
		ToleranceMeters:     10,
		Stages: []domain.ZoneStage{
			{WaitSec: 10, ShrinkSec: 60, HoldSec: 30, TargetRadiusM: 500, NewCenterPolicy: domain.CenterKeep},
		},
	}
}

func baseState(now time.Time) domain.GameZoneState {
	return domain.GameZoneState{
		GameID:              "g1",
		CurrentStageIndex:   0,
		CurrentPhase:        domain.ZonePhaseWaiting,
		CurrentCenter:       domain.Coordinate{Latitude: 40.5, Longitude: -79.5},
		CurrentRadiusMeters: 2000,
		StageStartTime:      now,
	}
}

func TestComputeNextStaysWaitingBeforeWaitElapsed(t *testing.T) {
	cfg := basicConfig()
	now := time.Now()
	state := baseState(now)

	next := computeNext(cfg, state, now.Add(5*time.Second))
	assert.Equal(t, domain.ZonePhaseWaiting, next.CurrentPhase)
	assert.Equal(t, 2000.0, next.CurrentRadiusMeters)
}

func TestComputeNextInterpolatesRadiusDuringShrinking(t *testing.T) {
	cfg := basicConfig()
	now := time.Now()
	state := baseState(now)

	// 10s wait + 30s into a 60s shrink => halfway.
	next := computeNext(cfg, state, now.Add(40*time.Second))
	assert.Equal(t, domain.ZonePhaseShrinking, next.CurrentPhase)
	require.InDelta(t, 1250.0, next.CurrentRadiusMeters, 1.0)
}

func TestComputeNextHoldsAtTargetRadius(t *testing.T) {
	cfg := basicConfig()
	now := time.Now()
	state := baseState(now)

	next := computeNext(cfg, state, now.Add(80*time.Second))
	assert.Equal(t, domain.ZonePhaseHolding, next.CurrentPhase)
	assert.Equal(t, 500.0, next.CurrentRadiusMeters)
}

func TestComputeNextReachesFinalAfterLastStage(t *testing.T) {
	cfg := basicConfig()
	now := time.Now()
	state := baseState(now)

	next := computeNext(cfg, state, now.Add(200*time.Second))
	assert.Equal(t, domain.ZonePhaseFinal, next.CurrentPhase)
	assert.Equal(t, 500.0, next.CurrentRadiusMeters)
}

func TestComputeNextIsIdempotentOnceFinal(t *testing.T) {
	cfg := basicConfig()
	now := time.Now()
	state := baseState(now)
	final := computeNext(cfg, state, now.Add(200*time.Second))

	again := computeNext(cfg, final, now.Add(500*time.Second))
	assert.Equal(t, final, again)
}

func TestResolveCenterKeepReturnsCurrent(t *testing.T) {
	cfg := basicConfig()
	current := domain.Coordinate{Latitude: 1, Longitude: 2}
	got := resolveCenter(cfg, cfg.Stages[0], 0, current)
	assert.Equal(t, current, got)
}

func TestResolveCenterFixedUsesStageCenter(t *testing.T) {
	cfg := basicConfig()
	fixed := domain.Coordinate{Latitude: 9, Longitude: 9}
	stage := cfg.Stages[0]
	stage.NewCenterPolicy = domain.CenterFixed
	stage.FixedCenter = &fixed
	got := resolveCenter(cfg, stage, 0, domain.Coordinate{Latitude: 1, Longitude: 2})
	assert.Equal(t, fixed, got)
}
