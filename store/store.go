// Package store implements the typed persistence contract every core
// component depends on, built over a pocketbase core.App: one
// collection per entity, secondary indexes declared in migrations/, and
// a transact abstraction built on app.RunInTransaction plus a version
// compare-and-set for the multi-entity changes that must stay
// linearizable (kill-apply, target reassignment, game-status change).
package store

import (
	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase/core"
)

// Collection names, one per entity.
const (
	CollectionGames       = "games"
	CollectionPlayers     = "players"
	CollectionAssignments = "assignments"
	CollectionSafeZones   = "safe_zones"
	CollectionKills       = "kills"
	CollectionZoneStates  = "zone_states"
)

// Store is the single persistence collaborator every core component
// depends on, narrowed to typed per-entity operations rather than a
// generic record API — a narrow capability contract instead of handing
// every component the full core.App surface.
type Store struct {
	app core.App
	log *log.Logger
}

// New wraps a pocketbase core.App (the application handle bound during
// app.OnServe/app.Start) as a Store.
func New(app core.App) *Store {
	return &Store{app: app, log: log.With("component", "store")}
}

// App exposes the underlying core.App for callers (migrations, the HTTP
// adapter's auth guard reading e.Auth) that need pocketbase primitives
// directly; core components use only the typed methods below.
func (s *Store) App() core.App { return s.app }
