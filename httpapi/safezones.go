package httpapi

import (
	"net/http"
	"time"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/middleware"
	"github.com/mark3labs/assassin-core/safezone"
	"github.com/pocketbase/pocketbase/core"
)

func (a *API) createSafeZone(e *core.RequestEvent) error {
	var body struct {
		GameID              string             `json:"gameId"`
		Type                string             `json:"type"`
		Name                string             `json:"name"`
		Description         string             `json:"description"`
		Center              domain.Coordinate  `json:"center"`
		RadiusMeters        float64            `json:"radiusMeters"`
		AuthorizedPlayerIDs []string           `json:"authorizedPlayerIds"`
		StartTime           *time.Time         `json:"startTime"`
		EndTime             *time.Time         `json:"endTime"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	z, err := a.SafeZones.Create(safezone.CreateInput{
		GameID:              body.GameID,
		Type:                domain.SafeZoneType(body.Type),
		Name:                body.Name,
		Description:         body.Description,
		Center:              body.Center,
		RadiusMeters:        body.RadiusMeters,
		CreatedBy:           middleware.CurrentPlayerID(e),
		AuthorizedPlayerIDs: body.AuthorizedPlayerIDs,
		StartTime:           body.StartTime,
		EndTime:             body.EndTime,
	})
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusCreated, z)
}

func (a *API) updateSafeZone(e *core.RequestEvent) error {
	var body struct {
		Name                *string    `json:"name"`
		Description         *string    `json:"description"`
		RadiusMeters        *float64   `json:"radiusMeters"`
		AuthorizedPlayerIDs []string   `json:"authorizedPlayerIds"`
		StartTime           *time.Time `json:"startTime"`
		EndTime             *time.Time `json:"endTime"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	z, err := a.SafeZones.Update(e.Request.PathValue("id"), middleware.CurrentPlayerID(e), safezone.UpdatePatch{
		Name:                body.Name,
		Description:         body.Description,
		RadiusMeters:        body.RadiusMeters,
		AuthorizedPlayerIDs: body.AuthorizedPlayerIDs,
		StartTime:           body.StartTime,
		EndTime:             body.EndTime,
	})
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, z)
}

func (a *API) relocateSafeZone(e *core.RequestEvent) error {
	var body struct {
		Center domain.Coordinate `json:"center"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	z, err := a.SafeZones.Relocate(e.Request.PathValue("id"), middleware.CurrentPlayerID(e), body.Center, time.Now())
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, z)
}

func (a *API) deleteSafeZone(e *core.RequestEvent) error {
	if err := a.SafeZones.Delete(e.Request.PathValue("id"), middleware.CurrentPlayerID(e)); err != nil {
		return writeError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (a *API) listSafeZones(e *core.RequestEvent) error {
	filter := safezone.ListFilter{At: time.Now()}
	if e.Request.URL.Query().Get("activeOnly") == "true" {
		filter.ActiveOnly = true
	}
	if t := e.Request.URL.Query().Get("type"); t != "" {
		filter.Type = domain.SafeZoneType(t)
	}

	zones, err := a.SafeZones.List(e.Request.PathValue("id"), filter)
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, zones)
}
