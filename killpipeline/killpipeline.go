// Package killpipeline implements the kill proposal/verification state
// machine: BUTTON/NFC/GPS verify synchronously at proposal time, PHOTO
// goes through PENDING_REVIEW for an admin, and a VERIFIED transition
// runs every side effect (victim death, killer's tally, reassignment,
// win detection) in a single Store transaction so the whole kill lands
// as one atomic state update instead of several independent writes.
package killpipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/assassin-core/anticheat"
	"github.com/mark3labs/assassin-core/assignment"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/events"
	"github.com/mark3labs/assassin-core/geometry"
	"github.com/mark3labs/assassin-core/metrics"
	"github.com/mark3labs/assassin-core/safezone"
	"github.com/mark3labs/assassin-core/store"
	"github.com/pocketbase/pocketbase/core"
)

// MaxLocationAge bounds how stale a player's last-known location may be
// at proposal time.
const MaxLocationAge = 5 * time.Minute

// MaxAntiCheatSeverity is the precondition ceiling on the killer's last
// anti-cheat severity.
const MaxAntiCheatSeverity = 7

// MaxTransactionRetries bounds the retry-on-conflict loop for the
// VERIFIED transaction.
const MaxTransactionRetries = 3

// Pipeline is the KillPipeline.
type Pipeline struct {
	store     *store.Store
	safezones *safezone.Service
	anticheat *anticheat.Validator
	assign    *assignment.Engine
	publisher *events.Publisher
	log       *log.Logger
}

// New constructs a KillPipeline.
func New(st *store.Store, sz *safezone.Service, ac *anticheat.Validator, ae *assignment.Engine, pub *events.Publisher) *Pipeline {
	return &Pipeline{
		store:     st,
		safezones: sz,
		anticheat: ac,
		assign:    ae,
		publisher: pub,
		log:       log.With("component", "killpipeline"),
	}
}

// ProposeInput carries a kill attempt.
type ProposeInput struct {
	KillerID         string
	VictimID         string
	GameID           string
	Method           domain.VerificationMethod
	VerificationData map[string]any
	KillerLatitude   float64
	KillerLongitude  float64
}

// Propose runs preconditions and, for synchronous methods, verifies the
// kill in the same call. PHOTO submissions stop at PENDING, awaiting
// SubmitPhoto, then AdminVerify to resolve.
func (p *Pipeline) Propose(in ProposeInput, now time.Time) (*domain.Kill, error) {
	killer, victim, game, err := p.checkPreconditions(in, now)
	if err != nil {
		return nil, err
	}

	kill := &domain.Kill{
		KillerID:           in.KillerID,
		VictimID:           in.VictimID,
		GameID:             in.GameID,
		KillTime:           now,
		Latitude:           in.KillerLatitude,
		Longitude:          in.KillerLongitude,
		VerificationMethod: in.Method,
		VerificationData:   in.VerificationData,
		VerificationStatus: domain.VerificationPending,
	}

	switch in.Method {
	case domain.VerificationPhoto:
		if err := p.store.Transact(func(txApp core.App) error {
			return p.store.PutKill(txApp, kill)
		}); err != nil {
			return nil, err
		}
		_ = p.publisher.Publish(events.SubjectKillProposed, kill)
		return kill, nil

	case domain.VerificationButton, domain.VerificationNFC, domain.VerificationGPS:
		if err := p.verifyKillerAntiCheat(killer.ID); err != nil {
			return nil, err
		}
		return p.verify(kill, killer, victim, game, now)

	default:
		return nil, errs.Validation("unsupported verification method %q", in.Method)
	}
}

// SubmitPhoto attaches photo evidence to a proposed PHOTO kill and moves
// it to PENDING_REVIEW for an admin.
func (p *Pipeline) SubmitPhoto(killID string, photoBytes []byte) (*domain.Kill, error) {
	kill, err := p.store.GetKill(killID)
	if err != nil {
		return nil, err
	}
	if kill.VerificationMethod != domain.VerificationPhoto {
		return nil, errs.Validation("kill %s was not proposed with PHOTO verification", killID)
	}
	if kill.VerificationStatus != domain.VerificationPending {
		return nil, errs.GameState("kill %s already has photo evidence submitted", killID)
	}

	sum := sha256.Sum256(photoBytes)
	kill.PhotoHash = hex.EncodeToString(sum[:])
	kill.VerificationStatus = domain.VerificationPendingReview
	if err := p.store.Transact(func(txApp core.App) error {
		return p.store.PutKill(txApp, kill)
	}); err != nil {
		return nil, err
	}
	return kill, nil
}

// AdminVerify resolves a PENDING_REVIEW photo kill.
func (p *Pipeline) AdminVerify(killID, adminID string, isValid bool, now time.Time) (*domain.Kill, error) {
	kill, err := p.store.GetKill(killID)
	if err != nil {
		return nil, err
	}
	if kill.VerificationStatus != domain.VerificationPendingReview {
		return nil, errs.GameState("kill %s is not pending review", killID)
	}

	if !isValid {
		kill.VerificationStatus = domain.VerificationRejected
		kill.VerifiedBy = adminID
		kill.VerifiedAt = &now
		if err := p.store.Transact(func(txApp core.App) error {
			return p.store.PutKill(txApp, kill)
		}); err != nil {
			return nil, err
		}
		metrics.KillsRejected.WithLabelValues("admin_rejected").Inc()
		_ = p.publisher.Publish(events.SubjectKillRejected, kill)
		return kill, nil
	}

	killer, err := p.store.GetPlayer(kill.KillerID)
	if err != nil {
		return nil, err
	}
	victim, err := p.store.GetPlayer(kill.VictimID)
	if err != nil {
		return nil, err
	}
	game, err := p.store.GetGame(kill.GameID)
	if err != nil {
		return nil, err
	}

	kill.VerifiedBy = adminID
	kill.VerifiedAt = &now
	return p.verify(kill, killer, victim, game, now)
}

func (p *Pipeline) checkPreconditions(in ProposeInput, now time.Time) (*domain.Player, *domain.Player, *domain.Game, error) {
	killer, err := p.store.GetPlayer(in.KillerID)
	if err != nil {
		return nil, nil, nil, err
	}
	victim, err := p.store.GetPlayer(in.VictimID)
	if err != nil {
		return nil, nil, nil, err
	}
	game, err := p.store.GetGame(in.GameID)
	if err != nil {
		return nil, nil, nil, err
	}

	if killer.Status != domain.PlayerActive {
		return nil, nil, nil, errs.KillRejection(errs.ReasonTargetMismatch, "killer %s is not ACTIVE", killer.ID)
	}
	if killer.TargetID != in.VictimID {
		return nil, nil, nil, errs.KillRejection(errs.ReasonTargetMismatch, "victim %s is not killer's assigned target", in.VictimID)
	}
	if killer.GameID != in.GameID || victim.GameID != in.GameID {
		return nil, nil, nil, errs.Validation("killer and victim must both belong to game %s", in.GameID)
	}
	if game.Status != domain.GameStatusActive {
		return nil, nil, nil, errs.GameState("game %s is not ACTIVE", in.GameID)
	}
	if game.EmergencyPause.Active {
		return nil, nil, nil, errs.KillRejection(errs.ReasonEmergencyPaused, "game %s is emergency-paused", in.GameID)
	}

	killerCoord, ok := killer.Coordinate()
	if !ok || killer.LocationTimestamp == nil || now.Sub(*killer.LocationTimestamp) > MaxLocationAge {
		return nil, nil, nil, errs.KillRejection(errs.ReasonStaleLocation, "killer location is missing or stale")
	}
	victimCoord, ok := victim.Coordinate()
	if !ok || victim.LocationTimestamp == nil || now.Sub(*victim.LocationTimestamp) > MaxLocationAge {
		return nil, nil, nil, errs.KillRejection(errs.ReasonStaleLocation, "victim location is missing or stale")
	}

	weaponDistance := game.WeaponDistanceMeters
	if weaponDistance <= 0 {
		weaponDistance = domain.DefaultWeaponDistanceMeters
	}
	dist, err := geometry.Haversine(killerCoord, victimCoord)
	if err != nil {
		return nil, nil, nil, err
	}
	if dist > weaponDistance {
		return nil, nil, nil, errs.KillRejection(errs.ReasonOutOfRange, "killer is %.1fm from victim, weapon range is %.1fm", dist, weaponDistance)
	}

	if p.safezones != nil {
		safe, err := p.safezones.IsPointSafe(game.ID, victim.ID, victimCoord, now)
		if err != nil {
			return nil, nil, nil, err
		}
		if safe {
			return nil, nil, nil, errs.KillRejection(errs.ReasonSafeZone, "victim is inside an active safe zone")
		}
	}

	return killer, victim, game, nil
}

func (p *Pipeline) verifyKillerAntiCheat(killerID string) error {
	if p.anticheat == nil {
		return nil
	}
	if p.anticheat.LastSeverity(killerID) >= MaxAntiCheatSeverity {
		return errs.KillRejection(errs.ReasonStaleLocation, "killer's last anti-cheat severity is too high to verify a kill")
	}
	return nil
}

// verify runs the VERIFIED transition. Every side effect — the kill row,
// the victim's death, the killer's tally, the killer's completed
// assignment, the post-kill reassignment, and a game-ending win — lands
// in one Store.Transact call so a conflict or crash partway through
// never leaves the game in a half-applied state. A version conflict on
// any of those writes re-fetches the affected rows and retries the whole
// transaction up to MaxTransactionRetries times.
func (p *Pipeline) verify(kill *domain.Kill, killer, victim *domain.Player, game *domain.Game, now time.Time) (*domain.Kill, error) {
	var lastErr error
	var reassignResult assignment.ReassignResult

	for attempt := 0; attempt <= MaxTransactionRetries; attempt++ {
		if attempt > 0 {
			var err error
			if killer, err = p.store.GetPlayer(killer.ID); err != nil {
				return nil, err
			}
			if victim, err = p.store.GetPlayer(victim.ID); err != nil {
				return nil, err
			}
			if game, err = p.store.GetGame(game.ID); err != nil {
				return nil, err
			}
		}

		killerAssignment, err := p.store.GetCurrentAssignmentForPlayer(game.ID, killer.ID)
		if err != nil {
			killerAssignment = nil
		}

		kill.VerificationStatus = domain.VerificationVerified
		if kill.VerifiedAt == nil {
			kill.VerifiedAt = &now
		}
		victim.Status = domain.PlayerDead
		victim.TargetID = ""
		victim.TargetName = ""
		killer.KillCount++

		var rr assignment.ReassignResult
		txErr := p.store.Transact(func(txApp core.App) error {
			if err := p.store.PutKill(txApp, kill); err != nil {
				return err
			}
			if err := p.store.PutPlayer(txApp, victim); err != nil {
				return err
			}
			if killerAssignment != nil {
				completedAt := now
				killerAssignment.Status = domain.AssignmentCompleted
				killerAssignment.CompletedDate = &completedAt
				if err := p.store.PutAssignment(txApp, killerAssignment); err != nil {
					return err
				}
			}

			result, err := p.assign.Reassign(txApp, game.ID, killer.ID, victim.ID)
			if err != nil {
				return err
			}
			rr = result

			if err := p.store.PutPlayer(txApp, killer); err != nil {
				return err
			}

			if rr.GameEnded {
				game.Status = domain.GameStatusCompleted
				game.WinnerID = rr.WinnerID
				endedAt := now
				game.EndedAt = &endedAt
				if err := p.store.PutGame(txApp, game); err != nil {
					return err
				}
			}
			return nil
		})
		if txErr == nil {
			reassignResult = rr
			lastErr = nil
			break
		}
		lastErr = txErr
		var coreErr *errs.Error
		if !errors.As(txErr, &coreErr) || coreErr.Code != errs.CodeConflict {
			return nil, txErr
		}
		killer.KillCount--
	}
	if lastErr != nil {
		return nil, lastErr
	}

	metrics.KillsVerified.Inc()
	_ = p.publisher.Publish(events.SubjectKillVerified, kill)
	_ = p.publisher.Publish(events.SubjectPlayerEliminated, victim)
	if reassignResult.GameEnded {
		_ = p.publisher.Publish(events.SubjectGameStatusChanged, game)
	}

	return kill, nil
}
