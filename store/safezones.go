package store

import (
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

func safeZoneToRecord(record *core.Record, z *domain.SafeZone) error {
	record.Set("game_id", z.GameID)
	record.Set("type", string(z.Type))
	record.Set("latitude", z.Center.Latitude)
	record.Set("longitude", z.Center.Longitude)
	record.Set("radius_meters", z.RadiusMeters)
	record.Set("name", z.Name)
	record.Set("description", z.Description)
	record.Set("created_by", z.CreatedBy)
	record.Set("start_time", z.StartTime)
	record.Set("end_time", z.EndTime)
	record.Set("relocation_cooldown_until", z.RelocationCooldownUntil)
	return setJSON(record, "authorized_player_ids", z.AuthorizedPlayerIDs)
}

func recordToSafeZone(record *core.Record) (*domain.SafeZone, error) {
	z := &domain.SafeZone{
		ID:     record.Id,
		GameID: record.GetString("game_id"),
		Type:   domain.SafeZoneType(record.GetString("type")),
		Center: domain.Coordinate{
			Latitude:  record.GetFloat("latitude"),
			Longitude: record.GetFloat("longitude"),
		},
		RadiusMeters: record.GetFloat("radius_meters"),
		Name:         record.GetString("name"),
		Description:  record.GetString("description"),
		CreatedBy:    record.GetString("created_by"),
		Version:      int64(record.GetInt("version")),
	}
	if t := record.GetDateTime("start_time").Time(); !t.IsZero() {
		z.StartTime = &t
	}
	if t := record.GetDateTime("end_time").Time(); !t.IsZero() {
		z.EndTime = &t
	}
	if t := record.GetDateTime("relocation_cooldown_until").Time(); !t.IsZero() {
		z.RelocationCooldownUntil = &t
	}
	if err := getJSON(record, "authorized_player_ids", &z.AuthorizedPlayerIDs); err != nil {
		return nil, errs.Internal(err, "decode authorized players")
	}
	return z, nil
}

// GetSafeZone fetches a safe zone by id.
func (s *Store) GetSafeZone(id string) (*domain.SafeZone, error) {
	record, err := s.app.FindRecordById(CollectionSafeZones, id)
	if err != nil {
		return nil, errs.NotFound("safe zone %s not found", id)
	}
	return recordToSafeZone(record)
}

// PutSafeZone upserts a safe zone.
func (s *Store) PutSafeZone(z *domain.SafeZone) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionSafeZones)
	if err != nil {
		return errs.Internal(err, "find safe_zones collection")
	}

	var record *core.Record
	existing := false
	if z.ID != "" {
		record, err = s.app.FindRecordById(CollectionSafeZones, z.ID)
		if err == nil {
			existing = true
		} else {
			record = core.NewRecord(collection)
			record.Id = z.ID
		}
	} else {
		record = core.NewRecord(collection)
	}

	if existing {
		if err := checkVersion(record, z.Version); err != nil {
			return err
		}
	}

	if err := safeZoneToRecord(record, z); err != nil {
		return errs.Internal(err, "encode safe zone")
	}
	if existing {
		bumpVersion(record)
	}
	if err := s.app.Save(record); err != nil {
		return errs.Persistence(err, "save safe zone %s", z.ID)
	}
	z.ID = record.Id
	z.Version = int64(record.GetInt("version"))
	return nil
}

// DeleteSafeZone removes a safe zone record.
func (s *Store) DeleteSafeZone(id string) error {
	record, err := s.app.FindRecordById(CollectionSafeZones, id)
	if err != nil {
		return errs.NotFound("safe zone %s not found", id)
	}
	if err := s.app.Delete(record); err != nil {
		return errs.Persistence(err, "delete safe zone %s", id)
	}
	return nil
}

// ListSafeZonesByGame returns every safe zone in a game.
func (s *Store) ListSafeZonesByGame(gameID string) ([]*domain.SafeZone, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionSafeZones, "game_id = {:gameId}", "name", 0, 0,
		map[string]any{"gameId": gameID},
	)
	if err != nil {
		return nil, errs.Persistence(err, "list safe zones for game %s", gameID)
	}
	out := make([]*domain.SafeZone, 0, len(records))
	for _, r := range records {
		z, err := recordToSafeZone(r)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, nil
}

// GetSafeZonesByOwner queries zones created by a given owner in a game.
func (s *Store) GetSafeZonesByOwner(gameID, ownerID string) ([]*domain.SafeZone, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionSafeZones, "game_id = {:gameId} && created_by = {:owner}", "name", 0, 0,
		map[string]any{"gameId": gameID, "owner": ownerID},
	)
	if err != nil {
		return nil, errs.Persistence(err, "safe zones by owner %s", ownerID)
	}
	out := make([]*domain.SafeZone, 0, len(records))
	for _, r := range records {
		z, err := recordToSafeZone(r)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, nil
}
