package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("safe_zones")

		collection.Fields.Add(
			&core.TextField{Name: "game_id", Required: true},
			&core.SelectField{Name: "type", Required: true, Values: []string{"PUBLIC", "PRIVATE", "TIMED", "RELOCATABLE"}},
			&core.NumberField{Name: "latitude", Required: true},
			&core.NumberField{Name: "longitude", Required: true},
			&core.NumberField{Name: "radius_meters", Required: true},
			&core.TextField{Name: "name", Required: true},
			&core.TextField{Name: "description"},
			&core.TextField{Name: "created_by", Required: true},
			&core.JSONField{Name: "authorized_player_ids"},
			&core.DateField{Name: "start_time"},
			&core.DateField{Name: "end_time"},
			&core.DateField{Name: "relocation_cooldown_until"},
			&core.NumberField{Name: "version"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_safezones_game", false, "game_id", "")
		collection.AddIndex("idx_safezones_game_owner", false, "game_id, created_by", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("safe_zones")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
