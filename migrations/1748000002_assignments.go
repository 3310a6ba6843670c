package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("assignments")

		collection.Fields.Add(
			&core.TextField{Name: "game_id", Required: true},
			&core.TextField{Name: "assigner_id", Required: true},
			&core.TextField{Name: "target_id", Required: true},
			&core.SelectField{Name: "status", Required: true, Values: []string{"ACTIVE", "COMPLETED", "CANCELLED"}},
			&core.DateField{Name: "assignment_date", Required: true},
			&core.DateField{Name: "completed_date"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// Assignments (gameId, assignerId), (gameId, targetId),
		// (gameId, status) secondary indexes. A partial unique
		// index enforces "at most one ACTIVE assignment per (gameId,
		// assignerId)" at the storage layer.
		collection.AddIndex("idx_assignments_game_assigner", false, "game_id, assigner_id", "")
		collection.AddIndex("idx_assignments_game_target", false, "game_id, target_id", "")
		collection.AddIndex("idx_assignments_game_status", false, "game_id, status", "")
		collection.AddIndex("idx_assignments_one_active_per_assigner", true, "game_id, assigner_id", "status = 'ACTIVE'")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("assignments")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
