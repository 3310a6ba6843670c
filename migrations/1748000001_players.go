package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("players")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 120},
			&core.EmailField{Name: "email"},
			&core.SelectField{Name: "status", Required: true, Values: []string{"INVITED", "ACTIVE", "DEAD", "SPECTATOR"}},
			&core.TextField{Name: "game_id"},
			&core.TextField{Name: "target_id"},
			&core.TextField{Name: "target_name"},
			&core.NumberField{Name: "kill_count"},
			&core.NumberField{Name: "latitude"},
			&core.NumberField{Name: "longitude"},
			&core.NumberField{Name: "accuracy"},
			&core.DateField{Name: "location_timestamp"},
			&core.BoolField{Name: "location_sharing_enabled"},
			&core.SelectField{Name: "location_visibility", Values: []string{"GAME_ONLY", "TEAM_ONLY", "FRIENDS_ONLY", "PRIVATE"}},
			&core.SelectField{Name: "location_precision", Values: []string{"EXACT", "APPROXIMATE", "ZONE"}},
			&core.DateField{Name: "location_pause_cooldown_until"},
			&core.TextField{Name: "device_fingerprint"},
			&core.NumberField{Name: "accumulated_zone_damage"},
			&core.NumberField{Name: "version"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// Players (status, killCount) leaderboard index.
		collection.AddIndex("idx_players_status_killcount", false, "status, kill_count", "")
		collection.AddIndex("idx_players_game", false, "game_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("players")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
