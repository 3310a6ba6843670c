// Package assignment implements the AssignmentEngine: CIRCULAR/RANDOM
// initial cycle construction and the per-kill reassignment step, with a
// seeded RNG derived from the game so a run's assignment cycle is
// reproducible rather than reaching for the global math/rand source.
package assignment

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/store"
	"github.com/pocketbase/pocketbase/core"
)

// Engine is the AssignmentEngine.
type Engine struct {
	store *store.Store
	log   *log.Logger
}

// New constructs an AssignmentEngine.
func New(st *store.Store) *Engine {
	return &Engine{store: st, log: log.With("component", "assignment")}
}

// seededRand derives a reproducible RNG from gameId XOR the game's start
// time, so two runs of the same game replay the same cycle.
func seededRand(gameID string, startedAt time.Time) *rand.Rand {
	var h uint64 = 1469598103934665603 // FNV-1a offset basis
	for _, b := range []byte(gameID) {
		h ^= uint64(b)
		h *= 1099511628211
	}
	seed := int64(h) ^ startedAt.UnixNano()
	return rand.New(rand.NewSource(seed))
}

// AssignInitial builds the starting elimination cycle for a game's
// ACTIVE players and persists one TargetAssignment row per player inside
// txApp, so the caller can land this alongside its own game-status write
// in one transaction.
func (e *Engine) AssignInitial(txApp core.App, gameID string, strategy domain.AssignmentStrategy, startedAt time.Time) error {
	players, err := e.store.GetActivePlayersByGameID(gameID)
	if err != nil {
		return err
	}
	if len(players) < 2 {
		return errs.GameState("need at least 2 active players to assign targets, have %d", len(players))
	}

	r := seededRand(gameID, startedAt)
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}

	var cycle []string
	switch strategy {
	case domain.StrategyRandom:
		cycle = randomHamiltonianCycle(ids, r)
	default:
		cycle = circularCycle(ids, r)
	}

	now := time.Now()
	for i, assignerID := range cycle {
		targetID := cycle[(i+1)%len(cycle)]
		assignment := &domain.TargetAssignment{
			GameID:         gameID,
			AssignerID:     assignerID,
			TargetID:       targetID,
			Status:         domain.AssignmentActive,
			AssignmentDate: now,
		}
		if err := e.store.PutAssignment(txApp, assignment); err != nil {
			return err
		}
		if err := e.syncPlayerTarget(txApp, assignerID, targetID); err != nil {
			return err
		}
	}
	return nil
}

// circularCycle shuffles ids once and chains pᵢ -> p_{(i+1) mod N}.
func circularCycle(ids []string, r *rand.Rand) []string {
	shuffled := append([]string{}, ids...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled
}

// randomHamiltonianCycle constructs a single Hamiltonian cycle uniformly
// at random over ids. A uniform shuffle already produces a uniformly
// random cycle over n elements when read as p0->p1->...->p(n-1)->p0.
func randomHamiltonianCycle(ids []string, r *rand.Rand) []string {
	shuffled := append([]string{}, ids...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled
}

func (e *Engine) syncPlayerTarget(txApp core.App, playerID, targetID string) error {
	p, err := e.store.GetPlayer(playerID)
	if err != nil {
		return err
	}
	target, err := e.store.GetPlayer(targetID)
	if err != nil {
		return err
	}
	p.TargetID = target.ID
	p.TargetName = target.Name
	return e.store.PutPlayer(txApp, p)
}

// ReassignResult reports what Reassign did, so KillPipeline can tell
// whether the game just ended.
type ReassignResult struct {
	GameEnded bool
	WinnerID  string
}

// Reassign implements the post-kill rewiring inside txApp: killer K just
// eliminated victim V. Let X be V's previous target. Writes K->X ACTIVE,
// cancels V->X, and the caller is responsible for completing K->V
// (KillPipeline owns that transition since it writes the Kill row in the
// same transaction).
func (e *Engine) Reassign(txApp core.App, gameID, killerID, victimID string) (ReassignResult, error) {
	vx, err := e.store.GetCurrentAssignmentForPlayer(gameID, victimID)
	if err != nil {
		// Victim with no outgoing assignment cannot occur for an ACTIVE
		// player (every ACTIVE player has an assignment as a precondition
		// of reaching ACTIVE); treat as the K==X terminal case defensively.
		return ReassignResult{GameEnded: true, WinnerID: killerID}, nil
	}

	if vx.TargetID == killerID {
		// K == X: killer was already V's target, so eliminating V closes
		// the loop onto the killer itself. Game ends with K as winner.
		vx.Status = domain.AssignmentCancelled
		now := time.Now()
		vx.CompletedDate = &now
		if err := e.store.PutAssignment(txApp, vx); err != nil {
			return ReassignResult{}, err
		}
		return ReassignResult{GameEnded: true, WinnerID: killerID}, nil
	}

	now := time.Now()
	vx.Status = domain.AssignmentCancelled
	vx.CompletedDate = &now
	if err := e.store.PutAssignment(txApp, vx); err != nil {
		return ReassignResult{}, err
	}

	newAssignment := &domain.TargetAssignment{
		GameID:         gameID,
		AssignerID:     killerID,
		TargetID:       vx.TargetID,
		Status:         domain.AssignmentActive,
		AssignmentDate: now,
	}
	if err := e.store.PutAssignment(txApp, newAssignment); err != nil {
		return ReassignResult{}, err
	}
	if err := e.syncPlayerTarget(txApp, killerID, vx.TargetID); err != nil {
		return ReassignResult{}, err
	}

	return ReassignResult{}, nil
}
