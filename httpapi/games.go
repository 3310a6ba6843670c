package httpapi

import (
	"net/http"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/middleware"
	"github.com/pocketbase/pocketbase/core"
)

func (a *API) createGame(e *core.RequestEvent) error {
	var body struct {
		Name       string `json:"name"`
		ZonePreset string `json:"zonePreset,omitempty"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	g, err := a.Coordinator.CreateGame(body.Name, middleware.CurrentPlayerID(e), body.ZonePreset)
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusCreated, g)
}

func (a *API) getGame(e *core.RequestEvent) error {
	g, err := a.Store.GetGame(e.Request.PathValue("id"))
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, g)
}

func (a *API) patchGame(e *core.RequestEvent) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	gameID := e.Request.PathValue("id")
	requester := middleware.CurrentPlayerID(e)

	switch domain.GameStatus(body.Status) {
	case domain.GameStatusCancelled:
		g, err := a.Coordinator.ForceEndGame(gameID, requester)
		if err != nil {
			return writeError(e, err)
		}
		return e.JSON(http.StatusOK, g)
	default:
		return writeError(e, errs.Validation("unsupported status transition %q", body.Status))
	}
}

func (a *API) putBoundary(e *core.RequestEvent) error {
	var body struct {
		Polygon []domain.Coordinate `json:"polygon"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	if err := a.Coordinator.UpdateBoundary(e.Request.PathValue("id"), domain.Polygon(body.Polygon), middleware.CurrentPlayerID(e)); err != nil {
		return writeError(e, err)
	}
	g, err := a.Store.GetGame(e.Request.PathValue("id"))
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, g)
}

func (a *API) joinGame(e *core.RequestEvent) error {
	if err := a.Coordinator.JoinGame(e.Request.PathValue("id"), middleware.CurrentPlayerID(e)); err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]bool{"joined": true})
}

func (a *API) startGame(e *core.RequestEvent) error {
	g, err := a.Coordinator.StartGame(e.Request.PathValue("id"))
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, g)
}

func (a *API) emergencyPause(e *core.RequestEvent) error {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = e.BindBody(&body)

	g, err := a.Coordinator.EmergencyPause(e.Request.PathValue("id"), body.Reason, middleware.CurrentPlayerID(e))
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, g)
}

func (a *API) emergencyResume(e *core.RequestEvent) error {
	g, err := a.Coordinator.EmergencyResume(e.Request.PathValue("id"), middleware.CurrentPlayerID(e))
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, g)
}

func (a *API) listPlayers(e *core.RequestEvent) error {
	players, err := a.Store.GetPlayersByGameID(e.Request.PathValue("id"))
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, players)
}
