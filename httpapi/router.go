package httpapi

import (
	"github.com/mark3labs/assassin-core/anticheat"
	"github.com/mark3labs/assassin-core/assignment"
	"github.com/mark3labs/assassin-core/coordinator"
	"github.com/mark3labs/assassin-core/killpipeline"
	"github.com/mark3labs/assassin-core/middleware"
	"github.com/mark3labs/assassin-core/proximity"
	"github.com/mark3labs/assassin-core/safezone"
	"github.com/mark3labs/assassin-core/store"
	"github.com/mark3labs/assassin-core/zoneengine"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

// API holds every component the HTTP adapter dispatches into.
type API struct {
	Store        *store.Store
	Coordinator  *coordinator.Coordinator
	SafeZones    *safezone.Service
	KillPipeline *killpipeline.Pipeline
	Proximity    *proximity.Engine
	ZoneEngine   *zoneengine.Engine
	Assignment   *assignment.Engine
	AntiCheat    *anticheat.Validator
}

// Register binds every HTTP endpoint onto r, guarded by
// middleware.AuthGuard for mutating routes.
func (a *API) Register(r *router.Router[*core.RequestEvent]) {
	protected := r.Group("")
	protected.BindFunc(middleware.AuthGuard)

	r.GET("/games/{id}", a.getGame)
	r.GET("/games/{id}/players", a.listPlayers)
	r.GET("/games/{id}/zone/state", a.getZoneState)
	r.GET("/games/{id}/zone/stream", a.getZoneStream)

	protected.GET("/games/{id}/proximity/stream", a.getProximityStream)

	protected.POST("/games", a.createGame)
	protected.PATCH("/games/{id}", a.patchGame)
	protected.PUT("/games/{id}/boundary", a.putBoundary)
	protected.POST("/games/{id}/join", a.joinGame)
	protected.POST("/games/{id}/assign-targets", a.startGame)
	protected.POST("/games/{id}/emergency/pause", a.emergencyPause)
	protected.POST("/games/{id}/emergency/resume", a.emergencyResume)

	protected.POST("/safezones", a.createSafeZone)
	protected.PUT("/safezones/{id}", a.updateSafeZone)
	protected.PUT("/safezones/{id}/relocate", a.relocateSafeZone)
	protected.DELETE("/safezones/{id}", a.deleteSafeZone)
	r.GET("/games/{id}/safezones", a.listSafeZones)

	protected.PUT("/players/{id}/location", a.updateLocation)

	protected.POST("/kills/attempt", a.proposeKill)
	protected.PUT("/kills/{id}/photo", a.submitPhoto)
	protected.PUT("/kills/{id}/verify", a.adminVerifyKill)
}
