package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("games")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 200},
			&core.SelectField{Name: "status", Required: true, Values: []string{"PENDING", "ACTIVE", "COMPLETED", "CANCELLED"}},
			&core.TextField{Name: "admin_player_id", Required: true},
			&core.DateField{Name: "started_at"},
			&core.DateField{Name: "ended_at"},
			&core.JSONField{Name: "boundary"},
			&core.JSONField{Name: "settings"},
			&core.TextField{Name: "map_id"},
			&core.SelectField{Name: "strategy", Values: []string{"CIRCULAR", "RANDOM"}},
			&core.NumberField{Name: "weapon_distance_meters"},
			&core.NumberField{Name: "player_health_default"},
			&core.TextField{Name: "winner_id"},
			&core.BoolField{Name: "emergency_pause_active"},
			&core.TextField{Name: "emergency_pause_reason"},
			&core.TextField{Name: "emergency_pause_triggered_by"},
			&core.DateField{Name: "emergency_pause_timestamp"},
			&core.NumberField{Name: "version"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// Games (status, createdAt) secondary index.
		collection.AddIndex("idx_games_status_created", false, "status, created", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("games")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
