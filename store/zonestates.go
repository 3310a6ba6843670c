package store

import (
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

func zoneStateToRecord(record *core.Record, z *domain.GameZoneState) {
	record.Set("game_id", z.GameID)
	record.Set("current_stage_index", z.CurrentStageIndex)
	record.Set("current_phase", string(z.CurrentPhase))
	record.Set("latitude", z.CurrentCenter.Latitude)
	record.Set("longitude", z.CurrentCenter.Longitude)
	record.Set("current_radius_meters", z.CurrentRadiusMeters)
	if z.NextRadiusMeters != nil {
		record.Set("next_radius_meters", *z.NextRadiusMeters)
	}
	record.Set("phase_end_time", z.PhaseEndTime)
	record.Set("last_updated", z.LastUpdated)
	record.Set("stage_start_time", z.StageStartTime)
}

func recordToZoneState(record *core.Record) *domain.GameZoneState {
	z := &domain.GameZoneState{
		GameID:            record.GetString("game_id"),
		CurrentStageIndex: record.GetInt("current_stage_index"),
		CurrentPhase:      domain.ZonePhase(record.GetString("current_phase")),
		CurrentCenter: domain.Coordinate{
			Latitude:  record.GetFloat("latitude"),
			Longitude: record.GetFloat("longitude"),
		},
		CurrentRadiusMeters: record.GetFloat("current_radius_meters"),
		PhaseEndTime:        record.GetDateTime("phase_end_time").Time(),
		LastUpdated:         record.GetDateTime("last_updated").Time(),
		StageStartTime:      record.GetDateTime("stage_start_time").Time(),
		Version:             int64(record.GetInt("version")),
	}
	if record.Get("next_radius_meters") != nil {
		r := record.GetFloat("next_radius_meters")
		z.NextRadiusMeters = &r
	}
	return z
}

// GetZoneState fetches the singleton zone state for a game, if created.
func (s *Store) GetZoneState(gameID string) (*domain.GameZoneState, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionZoneStates, "game_id = {:gameId}", map[string]any{"gameId": gameID},
	)
	if err != nil {
		return nil, errs.NotFound("zone state for game %s not found", gameID)
	}
	return recordToZoneState(record), nil
}

// PutZoneState upserts the singleton zone state for a game, created on
// the first tick ZoneEngine.Advance runs against it.
func (s *Store) PutZoneState(z *domain.GameZoneState) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionZoneStates)
	if err != nil {
		return errs.Internal(err, "find zone_states collection")
	}

	record, err := s.app.FindFirstRecordByFilter(
		CollectionZoneStates, "game_id = {:gameId}", map[string]any{"gameId": z.GameID},
	)
	if err != nil {
		record = core.NewRecord(collection)
	}

	zoneStateToRecord(record, z)
	if err := s.app.Save(record); err != nil {
		return errs.Persistence(err, "save zone state for game %s", z.GameID)
	}
	z.Version = int64(record.GetInt("version"))
	return nil
}
