package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("kills")

		collection.Fields.Add(
			&core.TextField{Name: "killer_id", Required: true},
			&core.DateField{Name: "kill_time", Required: true},
			&core.TextField{Name: "game_id", Required: true},
			&core.TextField{Name: "victim_id", Required: true},
			&core.NumberField{Name: "latitude", Required: true},
			&core.NumberField{Name: "longitude", Required: true},
			&core.SelectField{Name: "verification_method", Required: true, Values: []string{"BUTTON", "PHOTO", "NFC", "GPS"}},
			&core.SelectField{Name: "verification_status", Required: true, Values: []string{"PENDING", "PENDING_REVIEW", "VERIFIED", "REJECTED"}},
			&core.JSONField{Name: "verification_data"},
			&core.TextField{Name: "photo_hash"},
			&core.TextField{Name: "verified_by"},
			&core.DateField{Name: "verified_at"},
			&core.NumberField{Name: "version"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// Kills (gameId, killTime) secondary index.
		collection.AddIndex("idx_kills_game_time", false, "game_id, kill_time", "")
		collection.AddIndex("idx_kills_victim_status", false, "victim_id, verification_status", "")
		// A VERIFIED kill exists for a victim at most once per game.
		collection.AddIndex("idx_kills_one_verified_per_victim", true, "game_id, victim_id", "verification_status = 'VERIFIED'")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("kills")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
