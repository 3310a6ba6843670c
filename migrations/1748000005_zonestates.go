package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("zone_states")

		collection.Fields.Add(
			&core.TextField{Name: "game_id", Required: true},
			&core.NumberField{Name: "current_stage_index"},
			&core.SelectField{Name: "current_phase", Values: []string{"WAITING", "SHRINKING", "HOLDING", "FINAL"}},
			&core.NumberField{Name: "latitude"},
			&core.NumberField{Name: "longitude"},
			&core.NumberField{Name: "current_radius_meters"},
			&core.NumberField{Name: "next_radius_meters"},
			&core.DateField{Name: "phase_end_time"},
			&core.DateField{Name: "last_updated"},
			&core.DateField{Name: "stage_start_time"},
			&core.NumberField{Name: "version"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// GameZoneState is a singleton per game.
		collection.AddIndex("idx_zonestates_game_unique", true, "game_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("zone_states")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
