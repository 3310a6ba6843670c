// Package safezone implements SafeZone operations: create, update,
// relocate, delete, list, activeZonesAt, and isPointSafe. Persistence is
// delegated to store.Store so zone rules stay separate from how they
// get saved.
package safezone

import (
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/geometry"
	"github.com/mark3labs/assassin-core/store"
)

// Service implements the SafeZone operations.
type Service struct {
	store *store.Store
}

// New constructs a safezone Service backed by st.
func New(st *store.Store) *Service {
	return &Service{store: st}
}

// CreateInput carries the fields needed to create a new SafeZone: type,
// gameId, name, center, radius, createdBy, and the type-specific extras.
type CreateInput struct {
	GameID              string
	Type                domain.SafeZoneType
	Name                string
	Description         string
	Center              domain.Coordinate
	RadiusMeters        float64
	CreatedBy           string
	AuthorizedPlayerIDs []string
	StartTime           *time.Time
	EndTime             *time.Time
}

// Create validates and persists a new SafeZone.
func (svc *Service) Create(in CreateInput) (*domain.SafeZone, error) {
	game, err := svc.store.GetGame(in.GameID)
	if err != nil {
		return nil, err
	}
	if err := validateRadius(in.RadiusMeters); err != nil {
		return nil, err
	}
	if err := validateWithinBoundary(game, in.Center); err != nil {
		return nil, err
	}
	if in.Type == domain.SafeZoneTimed {
		if err := validateTimedWindow(in.StartTime, in.EndTime); err != nil {
			return nil, err
		}
	}

	z := &domain.SafeZone{
		ID:                  uuid.NewString(),
		GameID:              in.GameID,
		Type:                in.Type,
		Center:              in.Center,
		RadiusMeters:        in.RadiusMeters,
		Name:                in.Name,
		Description:         in.Description,
		CreatedBy:           in.CreatedBy,
		AuthorizedPlayerIDs: in.AuthorizedPlayerIDs,
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
	}
	if err := svc.store.PutSafeZone(z); err != nil {
		return nil, err
	}
	return z, nil
}

// UpdatePatch carries the mutable subset of a SafeZone's fields.
type UpdatePatch struct {
	Name                *string
	Description         *string
	RadiusMeters        *float64
	AuthorizedPlayerIDs []string
	StartTime           *time.Time
	EndTime             *time.Time
}

// Update applies patch to an existing zone. Only the zone's creator may
// update it, the same owner-only restriction Relocate uses.
func (svc *Service) Update(id, requestingPlayerID string, patch UpdatePatch) (*domain.SafeZone, error) {
	z, err := svc.store.GetSafeZone(id)
	if err != nil {
		return nil, err
	}
	if z.CreatedBy != requestingPlayerID {
		return nil, errs.Unauthorized("only the creator may update safe zone %s", id)
	}

	if patch.Name != nil {
		z.Name = *patch.Name
	}
	if patch.Description != nil {
		z.Description = *patch.Description
	}
	if patch.RadiusMeters != nil {
		if err := validateRadius(*patch.RadiusMeters); err != nil {
			return nil, err
		}
		z.RadiusMeters = *patch.RadiusMeters
	}
	if patch.AuthorizedPlayerIDs != nil {
		z.AuthorizedPlayerIDs = patch.AuthorizedPlayerIDs
	}
	if patch.StartTime != nil {
		z.StartTime = patch.StartTime
	}
	if patch.EndTime != nil {
		z.EndTime = patch.EndTime
	}
	if z.Type == domain.SafeZoneTimed {
		if err := validateTimedWindow(z.StartTime, z.EndTime); err != nil {
			return nil, err
		}
	}

	if err := svc.store.PutSafeZone(z); err != nil {
		return nil, err
	}
	return z, nil
}

// RelocationCooldown is the minimum wait between relocations of a
// RELOCATABLE zone.
const RelocationCooldown = 5 * time.Minute

// Relocate moves a RELOCATABLE zone to newCenter. Only the owner may
// relocate, and only after any prior cooldown has elapsed.
func (svc *Service) Relocate(id, requestingPlayerID string, newCenter domain.Coordinate, now time.Time) (*domain.SafeZone, error) {
	z, err := svc.store.GetSafeZone(id)
	if err != nil {
		return nil, err
	}
	if z.Type != domain.SafeZoneRelocatable {
		return nil, errs.Validation("safe zone %s is not relocatable", id)
	}
	if z.CreatedBy != requestingPlayerID {
		return nil, errs.Unauthorized("only the owner may relocate safe zone %s", id)
	}
	if z.RelocationCooldownUntil != nil && now.Before(*z.RelocationCooldownUntil) {
		return nil, errs.Validation("safe zone %s is in relocation cooldown until %s", id, z.RelocationCooldownUntil)
	}

	game, err := svc.store.GetGame(z.GameID)
	if err != nil {
		return nil, err
	}
	if err := validateWithinBoundary(game, newCenter); err != nil {
		return nil, err
	}

	z.Center = newCenter
	cooldownUntil := now.Add(RelocationCooldown)
	z.RelocationCooldownUntil = &cooldownUntil

	if err := svc.store.PutSafeZone(z); err != nil {
		return nil, err
	}
	return z, nil
}

// Delete removes a safe zone. Only the owner may delete it.
func (svc *Service) Delete(id, requestingPlayerID string) error {
	z, err := svc.store.GetSafeZone(id)
	if err != nil {
		return err
	}
	if z.CreatedBy != requestingPlayerID {
		return errs.Unauthorized("only the creator may delete safe zone %s", id)
	}
	return svc.store.DeleteSafeZone(id)
}

// ListFilter narrows List's results.
type ListFilter struct {
	ActiveOnly bool
	Type       domain.SafeZoneType
	At         time.Time
}

// List returns every safe zone in a game matching filter.
func (svc *Service) List(gameID string, filter ListFilter) ([]*domain.SafeZone, error) {
	zones, err := svc.store.ListSafeZonesByGame(gameID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.SafeZone, 0, len(zones))
	for _, z := range zones {
		if filter.Type != "" && z.Type != filter.Type {
			continue
		}
		if filter.ActiveOnly && !isActiveAt(z, filter.At) {
			continue
		}
		out = append(out, z)
	}
	return out, nil
}

// ActiveZonesAt returns the zones in gameID active at time t.
func (svc *Service) ActiveZonesAt(gameID string, t time.Time) ([]*domain.SafeZone, error) {
	zones, err := svc.store.ListSafeZonesByGame(gameID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.SafeZone, 0, len(zones))
	for _, z := range zones {
		if isActiveAt(z, t) {
			out = append(out, z)
		}
	}
	return out, nil
}

func isActiveAt(z *domain.SafeZone, t time.Time) bool {
	if z.Type != domain.SafeZoneTimed {
		return true
	}
	if z.StartTime != nil && t.Before(*z.StartTime) {
		return false
	}
	if z.EndTime != nil && !t.Before(*z.EndTime) {
		return false
	}
	return true
}

// IsPointSafe reports whether coord lies within any zone active at t in
// gameID that authorizes playerID: PUBLIC authorizes everyone, PRIVATE
// authorizes only the owner or players in AuthorizedPlayerIDs, TIMED
// authorizes anyone while active, RELOCATABLE authorizes only the owner.
func (svc *Service) IsPointSafe(gameID, playerID string, coord domain.Coordinate, t time.Time) (bool, error) {
	zones, err := svc.ActiveZonesAt(gameID, t)
	if err != nil {
		return false, err
	}
	for _, z := range zones {
		if !authorizes(z, playerID) {
			continue
		}
		dist, err := geometry.Haversine(z.Center, coord)
		if err != nil {
			return false, err
		}
		if dist <= z.RadiusMeters {
			return true, nil
		}
	}
	return false, nil
}

func authorizes(z *domain.SafeZone, playerID string) bool {
	switch z.Type {
	case domain.SafeZonePublic, domain.SafeZoneTimed:
		return true
	case domain.SafeZonePrivate:
		if z.CreatedBy == playerID {
			return true
		}
		for _, id := range z.AuthorizedPlayerIDs {
			if id == playerID {
				return true
			}
		}
		return false
	case domain.SafeZoneRelocatable:
		return z.CreatedBy == playerID
	default:
		return false
	}
}

func validateRadius(r float64) error {
	if r < domain.MinRadiusMeters || r > domain.MaxRadiusMeters {
		return errs.Validation("radius %.1fm out of range [%.0f, %.0f]", r, domain.MinRadiusMeters, domain.MaxRadiusMeters)
	}
	return nil
}

func validateWithinBoundary(game *domain.Game, coord domain.Coordinate) error {
	if len(game.Boundary) == 0 {
		return nil
	}
	inside, err := geometry.ContainsDomain(coord, game.Boundary)
	if err != nil {
		return err
	}
	if !inside {
		return errs.Validation("safe zone center lies outside the game boundary")
	}
	return nil
}

func validateTimedWindow(start, end *time.Time) error {
	if start == nil || end == nil {
		return errs.Validation("timed safe zones require both startTime and endTime")
	}
	if !end.After(*start) {
		return errs.Validation("endTime must be after startTime")
	}
	return nil
}
