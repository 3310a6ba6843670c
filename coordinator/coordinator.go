// Package coordinator implements GameCoordinator: the lifecycle
// operations that create, join, start, and end games, plus emergency
// pause/resume. Apart from the game-ending COMPLETED transition, which
// KillPipeline and the Scheduler's zone-death handling also write, it is
// the component that changes Game.Status.
package coordinator

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/assassin-core/assignment"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/events"
	"github.com/mark3labs/assassin-core/geometry"
	"github.com/mark3labs/assassin-core/presets"
	"github.com/mark3labs/assassin-core/store"
	"github.com/pocketbase/pocketbase/core"
)

// MinPlayersToStart is the lower bound on ACTIVE players checked by
// StartGame.
const MinPlayersToStart = 2

// Coordinator is the GameCoordinator.
type Coordinator struct {
	store     *store.Store
	assign    *assignment.Engine
	publisher *events.Publisher
	log       *log.Logger
}

// New constructs a Coordinator.
func New(st *store.Store, ae *assignment.Engine, pub *events.Publisher) *Coordinator {
	return &Coordinator{store: st, assign: ae, publisher: pub, log: log.With("component", "coordinator")}
}

// CreateGame creates a new PENDING game owned by adminID. presetName, if
// non-empty, names an embedded shrinkingZoneConfig preset (see the
// presets package) loaded into Settings so operators don't have to
// inline a full stage list on every creation call.
func (c *Coordinator) CreateGame(name, adminID, presetName string) (*domain.Game, error) {
	if name == "" {
		return nil, errs.Validation("game name is required")
	}
	g := &domain.Game{
		ID:                   uuid.NewString(),
		Name:                 name,
		Status:               domain.GameStatusPending,
		AdminPlayerID:        adminID,
		CreatedAt:            time.Now(),
		WeaponDistanceMeters: domain.DefaultWeaponDistanceMeters,
		PlayerHealthDefault:  domain.DefaultPlayerHealth,
		Strategy:             domain.StrategyCircular,
	}
	if presetName != "" {
		cfg, err := presets.Load(presetName)
		if err != nil {
			return nil, errs.Validation("zone preset: %v", err)
		}
		g.Settings = map[string]any{"shrinkingZoneConfig": cfg}
	}
	if err := c.store.Transact(func(txApp core.App) error {
		return c.store.PutGame(txApp, g)
	}); err != nil {
		return nil, err
	}
	return g, nil
}

// JoinGame adds playerID to gameID as ACTIVE: joining a PENDING game
// activates the player directly since there is no separate
// invite-accept endpoint.
func (c *Coordinator) JoinGame(gameID, playerID string) error {
	game, err := c.store.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.Status != domain.GameStatusPending {
		return errs.GameState("game %s is not accepting new players", gameID)
	}
	p, err := c.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	if p.GameID != "" && p.GameID != gameID {
		return errs.Validation("player %s already belongs to another game", playerID)
	}
	p.GameID = gameID
	p.Status = domain.PlayerActive
	return c.store.Transact(func(txApp core.App) error {
		return c.store.PutPlayer(txApp, p)
	})
}

// LeaveGame removes playerID from a PENDING game; leaving an ACTIVE game
// is not supported (the player leaves play only by dying, becoming DEAD).
func (c *Coordinator) LeaveGame(gameID, playerID string) error {
	game, err := c.store.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.Status != domain.GameStatusPending {
		return errs.GameState("cannot leave game %s once it has started", gameID)
	}
	p, err := c.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	if p.GameID != gameID {
		return errs.Validation("player %s is not in game %s", playerID, gameID)
	}
	p.GameID = ""
	p.Status = domain.PlayerInvited
	return c.store.Transact(func(txApp core.App) error {
		return c.store.PutPlayer(txApp, p)
	})
}

// UpdateBoundary replaces a game's play-area polygon. Admin only; an
// ACTIVE game additionally requires every current player to already lie
// inside the new polygon.
func (c *Coordinator) UpdateBoundary(gameID string, poly domain.Polygon, requestingPlayerID string) error {
	game, err := c.store.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.AdminPlayerID != requestingPlayerID {
		return errs.Unauthorized("only the game admin may update the boundary")
	}

	if game.Status == domain.GameStatusActive {
		players, err := c.store.GetActivePlayersByGameID(gameID)
		if err != nil {
			return err
		}
		for _, p := range players {
			coord, ok := p.Coordinate()
			if !ok {
				continue
			}
			inside, err := geometry.ContainsDomain(coord, poly)
			if err != nil {
				return err
			}
			if !inside {
				return errs.Validation("player %s falls outside the proposed boundary", p.ID)
			}
		}
	}

	game.Boundary = poly
	return c.store.Transact(func(txApp core.App) error {
		return c.store.PutGame(txApp, game)
	})
}

// StartGame transitions PENDING->ACTIVE: validates at least
// MinPlayersToStart players and a boundary, then invokes
// AssignmentEngine to build the initial elimination cycle. The status
// flip and the initial assignment writes land in a single transaction
// so a crash between the two never leaves an ACTIVE game with no
// elimination chain.
func (c *Coordinator) StartGame(gameID string) (*domain.Game, error) {
	game, err := c.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != domain.GameStatusPending {
		return nil, errs.GameState("game %s is not PENDING", gameID)
	}
	if len(game.Boundary) < 3 {
		return nil, errs.Validation("game %s needs a boundary with at least 3 vertices", gameID)
	}
	players, err := c.store.GetActivePlayersByGameID(gameID)
	if err != nil {
		return nil, err
	}
	if len(players) < MinPlayersToStart {
		return nil, errs.Validation("game %s needs at least %d players to start, has %d", gameID, MinPlayersToStart, len(players))
	}

	now := time.Now()
	game.Status = domain.GameStatusActive
	game.StartedAt = &now

	if err := c.store.Transact(func(txApp core.App) error {
		if err := c.store.PutGame(txApp, game); err != nil {
			return err
		}
		return c.assign.AssignInitial(txApp, gameID, game.Strategy, now)
	}); err != nil {
		return nil, err
	}

	_ = c.publisher.Publish(events.SubjectGameStatusChanged, game)
	return game, nil
}

// ForceEndGame admin-cancels a game outright.
func (c *Coordinator) ForceEndGame(gameID, requestingPlayerID string) (*domain.Game, error) {
	game, err := c.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.AdminPlayerID != requestingPlayerID {
		return nil, errs.Unauthorized("only the game admin may force-end the game")
	}
	if game.Status == domain.GameStatusCompleted || game.Status == domain.GameStatusCancelled {
		return nil, errs.GameState("game %s has already ended", gameID)
	}

	now := time.Now()
	game.Status = domain.GameStatusCancelled
	game.EndedAt = &now
	if err := c.store.Transact(func(txApp core.App) error {
		return c.store.PutGame(txApp, game)
	}); err != nil {
		return nil, err
	}
	_ = c.publisher.Publish(events.SubjectGameStatusChanged, game)
	return game, nil
}

// EmergencyPause freezes kill/proximity processing without changing
// Game.Status.
func (c *Coordinator) EmergencyPause(gameID, reason, requestingPlayerID string) (*domain.Game, error) {
	game, err := c.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.AdminPlayerID != requestingPlayerID {
		return nil, errs.Unauthorized("only the game admin may trigger an emergency pause")
	}
	game.EmergencyPause = domain.EmergencyPause{
		Active:      true,
		Reason:      reason,
		TriggeredBy: requestingPlayerID,
		Timestamp:   time.Now(),
	}
	if err := c.store.Transact(func(txApp core.App) error {
		return c.store.PutGame(txApp, game)
	}); err != nil {
		return nil, err
	}
	_ = c.publisher.Publish(events.SubjectEmergencyPause, game)
	return game, nil
}

// EmergencyResume clears an active emergency pause.
func (c *Coordinator) EmergencyResume(gameID, requestingPlayerID string) (*domain.Game, error) {
	game, err := c.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if game.AdminPlayerID != requestingPlayerID {
		return nil, errs.Unauthorized("only the game admin may resume from an emergency pause")
	}
	if !game.EmergencyPause.Active {
		return nil, errs.GameState("game %s is not emergency-paused", gameID)
	}
	game.EmergencyPause = domain.EmergencyPause{}
	if err := c.store.Transact(func(txApp core.App) error {
		return c.store.PutGame(txApp, game)
	}); err != nil {
		return nil, err
	}
	_ = c.publisher.Publish(events.SubjectEmergencyPause, game)
	return game, nil
}
