// Package e2e runs the core components against a real pocketbase
// application (an on-disk SQLite database under a temp dir), the way
// daniel-le97-sandstorm-tracker's integration suite wires its handlers
// against tests.NewTestApp instead of mocking the database.
package e2e

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/assassin-core/anticheat"
	"github.com/mark3labs/assassin-core/assignment"
	"github.com/mark3labs/assassin-core/coordinator"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/killpipeline"
	_ "github.com/mark3labs/assassin-core/migrations"
	"github.com/mark3labs/assassin-core/safezone"
	"github.com/mark3labs/assassin-core/scheduler"
	"github.com/mark3labs/assassin-core/store"
	"github.com/mark3labs/assassin-core/zoneengine"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/require"
)

// harness bundles every core component against one store.Store, mirroring
// main.go's wiring but with a nil *events.Publisher (a documented no-op)
// so no NATS connection is needed.
type harness struct {
	t      *testing.T
	st     *store.Store
	coord  *coordinator.Coordinator
	assign *assignment.Engine
	kills  *killpipeline.Pipeline
	safez  *safezone.Service
	anti   *anticheat.Validator
	zones  *zoneengine.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	app, err := tests.NewTestApp(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	st := store.New(app)
	ae := assignment.New(st)
	sz := safezone.New(st)
	ac := anticheat.New(1000, 1000)
	ze := zoneengine.New(st, nil)

	return &harness{
		t:      t,
		st:     st,
		coord:  coordinator.New(st, ae, nil),
		assign: ae,
		kills:  killpipeline.New(st, sz, ac, ae, nil),
		safez:  sz,
		anti:   ac,
		zones:  ze,
	}
}

func squareBoundary(centerLat, centerLng, halfDeg float64) domain.Polygon {
	return domain.Polygon{
		{Latitude: centerLat - halfDeg, Longitude: centerLng - halfDeg},
		{Latitude: centerLat + halfDeg, Longitude: centerLng - halfDeg},
		{Latitude: centerLat + halfDeg, Longitude: centerLng + halfDeg},
		{Latitude: centerLat - halfDeg, Longitude: centerLng + halfDeg},
	}
}

// newPlayer persists an INVITED player with a fresh location fix, ready
// to be joined into a game via Coordinator.JoinGame.
func (h *harness) newPlayer(name string, lat, lng float64) *domain.Player {
	h.t.Helper()
	now := time.Now()
	p := &domain.Player{
		Name:              name,
		Status:            domain.PlayerInvited,
		Latitude:          &lat,
		Longitude:         &lng,
		LocationTimestamp: &now,
	}
	require.NoError(h.t, h.st.Transact(func(txApp core.App) error {
		return h.st.PutPlayer(txApp, p)
	}))
	return p
}

// joinActiveGame attaches p to an already-ACTIVE game directly through
// the store, for tests that hand-construct a game past PENDING (the
// normal Coordinator.JoinGame only accepts players into a PENDING game).
func (h *harness) joinActiveGame(gameID string, p *domain.Player) error {
	p.GameID = gameID
	p.Status = domain.PlayerActive
	return h.st.Transact(func(txApp core.App) error {
		return h.st.PutPlayer(txApp, p)
	})
}

// cycleFrom walks the TargetID chain starting at startID until it
// returns to startID, collecting every assigner visited along the way.
func cycleFrom(t *testing.T, st *store.Store, startID string, n int) []string {
	t.Helper()
	visited := []string{startID}
	cur := startID
	for i := 0; i < n; i++ {
		p, err := st.GetPlayer(cur)
		require.NoError(t, err)
		require.NotEmpty(t, p.TargetID, "player %s has no target", cur)
		if p.TargetID == startID {
			return visited
		}
		visited = append(visited, p.TargetID)
		cur = p.TargetID
	}
	t.Fatalf("target chain from %s did not close within %d hops: %v", startID, n, visited)
	return nil
}

func TestCircularGameAssignsFullCycleAndReassignsOnKill(t *testing.T) {
	h := newHarness(t)
	admin := uuid.NewString()

	game, err := h.coord.CreateGame("five player circular", admin, "")
	require.NoError(t, err)
	require.NoError(t, h.coord.UpdateBoundary(game.ID, squareBoundary(40.5, -79.5, 0.05), admin))

	var players []*domain.Player
	for i := 0; i < 5; i++ {
		p := h.newPlayer("player", 40.5, -79.5)
		players = append(players, p)
		require.NoError(t, h.coord.JoinGame(game.ID, p.ID))
	}

	game, err = h.coord.StartGame(game.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GameStatusActive, game.Status)

	cycle := cycleFrom(t, h.st, players[0].ID, len(players))
	require.Len(t, cycle, len(players), "cycle must visit every player exactly once")
	seen := map[string]bool{}
	for _, id := range cycle {
		require.False(t, seen[id], "player %s visited twice in the assignment cycle", id)
		seen[id] = true
	}

	killer, err := h.st.GetPlayer(players[0].ID)
	require.NoError(t, err)
	victimID := killer.TargetID
	victim, err := h.st.GetPlayer(victimID)
	require.NoError(t, err)
	oldVictimTarget := victim.TargetID

	kill, err := h.kills.Propose(killpipeline.ProposeInput{
		KillerID:        killer.ID,
		VictimID:        victimID,
		GameID:          game.ID,
		Method:          domain.VerificationButton,
		KillerLatitude:  40.5,
		KillerLongitude: -79.5,
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, domain.VerificationVerified, kill.VerificationStatus)

	victim, err = h.st.GetPlayer(victimID)
	require.NoError(t, err)
	require.Equal(t, domain.PlayerDead, victim.Status)

	killer, err = h.st.GetPlayer(killer.ID)
	require.NoError(t, err)
	require.Equal(t, 1, killer.KillCount)
	require.Equal(t, oldVictimTarget, killer.TargetID, "killer should inherit the victim's old target")
}

func TestKillRejectedWhenVictimInsideSafeZone(t *testing.T) {
	h := newHarness(t)
	admin := uuid.NewString()

	game, err := h.coord.CreateGame("safe zone game", admin, "")
	require.NoError(t, err)
	require.NoError(t, h.coord.UpdateBoundary(game.ID, squareBoundary(40.5, -79.5, 0.05), admin))

	killer := h.newPlayer("killer", 40.5, -79.5)
	victim := h.newPlayer("victim", 40.5, -79.5)
	require.NoError(t, h.coord.JoinGame(game.ID, killer.ID))
	require.NoError(t, h.coord.JoinGame(game.ID, victim.ID))
	_, err = h.coord.StartGame(game.ID)
	require.NoError(t, err)

	_, err = h.safez.Create(safezone.CreateInput{
		GameID:       game.ID,
		Type:         domain.SafeZonePublic,
		Name:         "spawn",
		Center:       domain.Coordinate{Latitude: 40.5, Longitude: -79.5},
		RadiusMeters: 50,
		CreatedBy:    admin,
	})
	require.NoError(t, err)

	killer, err = h.st.GetPlayer(killer.ID)
	require.NoError(t, err)

	_, err = h.kills.Propose(killpipeline.ProposeInput{
		KillerID:        killer.ID,
		VictimID:        killer.TargetID,
		GameID:          game.ID,
		Method:          domain.VerificationButton,
		KillerLatitude:  40.5,
		KillerLongitude: -79.5,
	}, time.Now())
	require.Error(t, err)
	var coreErr *errs.Error
	require.True(t, errors.As(err, &coreErr))
	require.Equal(t, errs.ReasonSafeZone, coreErr.Reason)
}

func TestAntiCheatTeleportBlocksSubsequentKill(t *testing.T) {
	h := newHarness(t)
	admin := uuid.NewString()

	game, err := h.coord.CreateGame("anticheat game", admin, "")
	require.NoError(t, err)
	require.NoError(t, h.coord.UpdateBoundary(game.ID, squareBoundary(40.5, -79.5, 0.5), admin))

	flagged := h.newPlayer("flagged killer", 40.5, -79.5)
	clean := h.newPlayer("clean killer", 40.5, -79.5)
	victim1 := h.newPlayer("victim1", 40.5, -79.5)
	victim2 := h.newPlayer("victim2", 40.5, -79.5)
	for _, p := range []*domain.Player{flagged, clean, victim1, victim2} {
		require.NoError(t, h.coord.JoinGame(game.ID, p.ID))
	}
	_, err = h.coord.StartGame(game.ID)
	require.NoError(t, err)

	start := time.Now()
	_, err = h.anti.Validate(flagged.ID, anticheat.Sample{
		Coordinate: domain.Coordinate{Latitude: 40.5, Longitude: -79.5},
		Accuracy:   5,
		Timestamp:  start,
	})
	require.NoError(t, err)

	// ~50km in 1s: an impossible teleport, rejected and recorded at
	// severity 9.
	_, err = h.anti.Validate(flagged.ID, anticheat.Sample{
		Coordinate: domain.Coordinate{Latitude: 40.95, Longitude: -79.5},
		Accuracy:   5,
		Timestamp:  start.Add(1 * time.Second),
	})
	require.Error(t, err)
	require.Equal(t, anticheat.SeverityTeleport, h.anti.LastSeverity(flagged.ID))

	flaggedPlayer, err := h.st.GetPlayer(flagged.ID)
	require.NoError(t, err)
	_, err = h.kills.Propose(killpipeline.ProposeInput{
		KillerID:        flaggedPlayer.ID,
		VictimID:        flaggedPlayer.TargetID,
		GameID:          game.ID,
		Method:          domain.VerificationButton,
		KillerLatitude:  40.5,
		KillerLongitude: -79.5,
	}, time.Now())
	require.Error(t, err, "a killer flagged at anti-cheat severity 9 must not be able to verify a kill")

	cleanPlayer, err := h.st.GetPlayer(clean.ID)
	require.NoError(t, err)
	_, err = h.kills.Propose(killpipeline.ProposeInput{
		KillerID:        cleanPlayer.ID,
		VictimID:        cleanPlayer.TargetID,
		GameID:          game.ID,
		Method:          domain.VerificationButton,
		KillerLatitude:  40.5,
		KillerLongitude: -79.5,
	}, time.Now())
	require.NoError(t, err, "a killer with no anti-cheat history must still be able to verify a kill")
}

func TestShrinkingZoneKillsPlayerOutsideFinalRadius(t *testing.T) {
	h := newHarness(t)
	admin := uuid.NewString()
	now := time.Now()

	inside := h.newPlayer("inside", 40.5, -79.5)
	outside := h.newPlayer("outside", 40.6, -79.5) // ~11km north, well outside a 10m final zone

	game := &domain.Game{
		ID:            uuid.NewString(),
		Name:          "shrinking zone game",
		Status:        domain.GameStatusActive,
		AdminPlayerID: admin,
		CreatedAt:     now,
		StartedAt:     &now,
		Boundary:      squareBoundary(40.5, -79.5, 0.5),
		Settings: map[string]any{
			"shrinkingZoneConfig": domain.ShrinkingZoneConfig{
				Stages: []domain.ZoneStage{
					{WaitSec: 0, ShrinkSec: 0, HoldSec: 0, TargetRadiusM: 10, NewCenterPolicy: domain.CenterKeep},
				},
				InitialCenter:                domain.Coordinate{Latitude: 40.5, Longitude: -79.5},
				InitialRadiusMeters:          1000,
				DamagePerTickPerMeterOutside: 1000,
				ToleranceMeters:              1,
			},
		},
		WeaponDistanceMeters: domain.DefaultWeaponDistanceMeters,
		PlayerHealthDefault:  10,
		Strategy:             domain.StrategyCircular,
	}
	require.NoError(t, h.st.Transact(func(txApp core.App) error {
		return h.st.PutGame(txApp, game)
	}))
	require.NoError(t, h.joinActiveGame(game.ID, inside))
	require.NoError(t, h.joinActiveGame(game.ID, outside))
	require.NoError(t, h.st.Transact(func(txApp core.App) error {
		return h.assign.AssignInitial(txApp, game.ID, game.Strategy, now)
	}))

	state, err := h.zones.Advance(game.ID, now)
	require.NoError(t, err)
	require.Equal(t, domain.ZonePhaseFinal, state.CurrentPhase)

	died, err := h.zones.RunDamageLoop(game.ID, now)
	require.NoError(t, err)
	require.Contains(t, died, outside.ID)

	outsidePlayer, err := h.st.GetPlayer(outside.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PlayerDead, outsidePlayer.Status)

	insidePlayer, err := h.st.GetPlayer(inside.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PlayerActive, insidePlayer.Status)
}

func TestZoneDeathReassignsAndCanEndTheGame(t *testing.T) {
	h := newHarness(t)
	admin := uuid.NewString()
	now := time.Now()

	a := h.newPlayer("a", 40.5, -79.5)
	b := h.newPlayer("b", 40.6, -79.5) // far outside the final radius

	game := &domain.Game{
		ID:            uuid.NewString(),
		Name:          "zone death ends game",
		Status:        domain.GameStatusActive,
		AdminPlayerID: admin,
		CreatedAt:     now,
		StartedAt:     &now,
		Boundary:      squareBoundary(40.5, -79.5, 0.5),
		Settings: map[string]any{
			"shrinkingZoneConfig": domain.ShrinkingZoneConfig{
				Stages: []domain.ZoneStage{
					{WaitSec: 0, ShrinkSec: 0, HoldSec: 0, TargetRadiusM: 10, NewCenterPolicy: domain.CenterKeep},
				},
				InitialCenter:                domain.Coordinate{Latitude: 40.5, Longitude: -79.5},
				InitialRadiusMeters:          1000,
				DamagePerTickPerMeterOutside: 1000,
				ToleranceMeters:              1,
			},
		},
		WeaponDistanceMeters: domain.DefaultWeaponDistanceMeters,
		PlayerHealthDefault:  10,
		Strategy:             domain.StrategyCircular,
	}
	require.NoError(t, h.st.Transact(func(txApp core.App) error {
		return h.st.PutGame(txApp, game)
	}))
	require.NoError(t, h.joinActiveGame(game.ID, a))
	require.NoError(t, h.joinActiveGame(game.ID, b))
	require.NoError(t, h.st.Transact(func(txApp core.App) error {
		return h.assign.AssignInitial(txApp, game.ID, game.Strategy, now)
	}))

	sch := scheduler.New(h.st, h.zones, nil, h.assign, scheduler.Config{
		TickInterval:        time.Second,
		TickDeadline:        5 * time.Second,
		LeaseTTL:            time.Second,
		MaxFanout:           4,
		ProximityIdleCutoff: time.Minute,
	})
	sch.RunTick(context.Background(), now)

	ended, err := h.st.GetGame(game.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GameStatusCompleted, ended.Status)
	require.Equal(t, a.ID, ended.WinnerID, "the surviving 2-cycle partner wins when its target dies to the zone")
}

func TestTwoPlayerCycleEndsGameOnKill(t *testing.T) {
	h := newHarness(t)
	admin := uuid.NewString()

	game, err := h.coord.CreateGame("duel", admin, "")
	require.NoError(t, err)
	require.NoError(t, h.coord.UpdateBoundary(game.ID, squareBoundary(40.5, -79.5, 0.05), admin))

	p1 := h.newPlayer("p1", 40.5, -79.5)
	p2 := h.newPlayer("p2", 40.5, -79.5)
	require.NoError(t, h.coord.JoinGame(game.ID, p1.ID))
	require.NoError(t, h.coord.JoinGame(game.ID, p2.ID))
	_, err = h.coord.StartGame(game.ID)
	require.NoError(t, err)

	killer, err := h.st.GetPlayer(p1.ID)
	require.NoError(t, err)

	kill, err := h.kills.Propose(killpipeline.ProposeInput{
		KillerID:        killer.ID,
		VictimID:        killer.TargetID,
		GameID:          game.ID,
		Method:          domain.VerificationButton,
		KillerLatitude:  40.5,
		KillerLongitude: -79.5,
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, domain.VerificationVerified, kill.VerificationStatus)

	ended, err := h.st.GetGame(game.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GameStatusCompleted, ended.Status)
	require.Equal(t, killer.ID, ended.WinnerID)
}

func TestEmergencyPauseBlocksKillProposal(t *testing.T) {
	h := newHarness(t)
	admin := uuid.NewString()

	game, err := h.coord.CreateGame("paused game", admin, "")
	require.NoError(t, err)
	require.NoError(t, h.coord.UpdateBoundary(game.ID, squareBoundary(40.5, -79.5, 0.05), admin))

	p1 := h.newPlayer("p1", 40.5, -79.5)
	p2 := h.newPlayer("p2", 40.5, -79.5)
	require.NoError(t, h.coord.JoinGame(game.ID, p1.ID))
	require.NoError(t, h.coord.JoinGame(game.ID, p2.ID))
	_, err = h.coord.StartGame(game.ID)
	require.NoError(t, err)

	_, err = h.coord.EmergencyPause(game.ID, "admin requested", admin)
	require.NoError(t, err)

	killer, err := h.st.GetPlayer(p1.ID)
	require.NoError(t, err)

	_, err = h.kills.Propose(killpipeline.ProposeInput{
		KillerID:        killer.ID,
		VictimID:        killer.TargetID,
		GameID:          game.ID,
		Method:          domain.VerificationButton,
		KillerLatitude:  40.5,
		KillerLongitude: -79.5,
	}, time.Now())
	require.Error(t, err)
	var coreErr *errs.Error
	require.True(t, errors.As(err, &coreErr))
	require.Equal(t, errs.ReasonEmergencyPaused, coreErr.Reason)

	require.NoError(t, func() error {
		_, resumeErr := h.coord.EmergencyResume(game.ID, admin)
		return resumeErr
	}())

	_, err = h.kills.Propose(killpipeline.ProposeInput{
		KillerID:        killer.ID,
		VictimID:        killer.TargetID,
		GameID:          game.ID,
		Method:          domain.VerificationButton,
		KillerLatitude:  40.5,
		KillerLongitude: -79.5,
	}, time.Now())
	require.NoError(t, err, "resuming from emergency pause must allow kills again")
}
