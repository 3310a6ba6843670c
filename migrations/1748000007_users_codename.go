package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// Adds a "codename" field to the auth users collection so a player can
// appear under a pseudonym in leaderboards/notifications while
// verified identity stays on the auth record (auth/token validation
// itself is handled outside the core by pocketbase's own auth).
func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("_pb_users_auth_")
		if err != nil {
			return err
		}

		collection.Fields.Add(&core.TextField{Name: "codename", Max: 60})

		if err := json.Unmarshal([]byte(`{
			"indexes": [
				"CREATE UNIQUE INDEX `+"`"+`idx_tokenKey__pb_users_auth_`+"`"+` ON `+"`"+`users`+"`"+` (`+"`"+`tokenKey`+"`"+`)",
				"CREATE UNIQUE INDEX `+"`"+`idx_email__pb_users_auth_`+"`"+` ON `+"`"+`users`+"`"+` (`+"`"+`email`+"`"+`) WHERE `+"`"+`email`+"`"+` != ''",
				"CREATE UNIQUE INDEX `+"`"+`idx_codename__pb_users_auth_`+"`"+` ON `+"`"+`users`+"`"+` (`+"`"+`codename`+"`"+`) WHERE `+"`"+`codename`+"`"+` != ''"
			]
		}`), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("_pb_users_auth_")
		if err != nil {
			return err
		}

		if err := json.Unmarshal([]byte(`{
			"indexes": [
				"CREATE UNIQUE INDEX `+"`"+`idx_tokenKey__pb_users_auth_`+"`"+` ON `+"`"+`users`+"`"+` (`+"`"+`tokenKey`+"`"+`)",
				"CREATE UNIQUE INDEX `+"`"+`idx_email__pb_users_auth_`+"`"+` ON `+"`"+`users`+"`"+` (`+"`"+`email`+"`"+`) WHERE `+"`"+`email`+"`"+` != ''"
			]
		}`), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	})
}
