package store

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
)

// setJSON stores v as a JSON-encoded string in a "json"-schema field.
func setJSON(record *core.Record, field string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	record.Set(field, string(b))
	return nil
}

// getJSON decodes a JSON-schema field previously written by setJSON.
// A missing/empty field is not an error: out is left at its zero value.
func getJSON(record *core.Record, field string, out any) error {
	raw := record.GetString(field)
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}
