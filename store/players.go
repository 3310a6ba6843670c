package store

import (
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

func playerToRecord(record *core.Record, p *domain.Player) error {
	record.Set("name", p.Name)
	record.Set("email", p.Email)
	record.Set("status", string(p.Status))
	record.Set("game_id", p.GameID)
	record.Set("target_id", p.TargetID)
	record.Set("target_name", p.TargetName)
	record.Set("kill_count", p.KillCount)
	if p.Latitude != nil {
		record.Set("latitude", *p.Latitude)
	}
	if p.Longitude != nil {
		record.Set("longitude", *p.Longitude)
	}
	if p.Accuracy != nil {
		record.Set("accuracy", *p.Accuracy)
	}
	record.Set("location_timestamp", p.LocationTimestamp)
	record.Set("location_sharing_enabled", p.LocationSharingEnabled)
	record.Set("location_visibility", string(p.LocationVisibility))
	record.Set("location_precision", string(p.LocationPrecision))
	record.Set("location_pause_cooldown_until", p.LocationPauseCooldownUntil)
	record.Set("device_fingerprint", p.DeviceFingerprint)
	record.Set("accumulated_zone_damage", p.AccumulatedZoneDamage)
	return nil
}

func recordToPlayer(record *core.Record) (*domain.Player, error) {
	p := &domain.Player{
		ID:                     record.Id,
		Name:                   record.GetString("name"),
		Email:                  record.GetString("email"),
		Status:                 domain.PlayerStatus(record.GetString("status")),
		GameID:                 record.GetString("game_id"),
		TargetID:               record.GetString("target_id"),
		TargetName:             record.GetString("target_name"),
		KillCount:              record.GetInt("kill_count"),
		LocationSharingEnabled: record.GetBool("location_sharing_enabled"),
		LocationVisibility:     domain.LocationVisibility(record.GetString("location_visibility")),
		LocationPrecision:      domain.LocationPrecision(record.GetString("location_precision")),
		DeviceFingerprint:      record.GetString("device_fingerprint"),
		AccumulatedZoneDamage:  record.GetFloat("accumulated_zone_damage"),
		Version:                int64(record.GetInt("version")),
	}
	if record.Get("latitude") != nil {
		lat := record.GetFloat("latitude")
		p.Latitude = &lat
	}
	if record.Get("longitude") != nil {
		lng := record.GetFloat("longitude")
		p.Longitude = &lng
	}
	if record.Get("accuracy") != nil {
		acc := record.GetFloat("accuracy")
		p.Accuracy = &acc
	}
	if t := record.GetDateTime("location_timestamp").Time(); !t.IsZero() {
		p.LocationTimestamp = &t
	}
	if t := record.GetDateTime("location_pause_cooldown_until").Time(); !t.IsZero() {
		p.LocationPauseCooldownUntil = &t
	}
	return p, nil
}

// GetPlayer fetches a player by id.
func (s *Store) GetPlayer(id string) (*domain.Player, error) {
	record, err := s.app.FindRecordById(CollectionPlayers, id)
	if err != nil {
		return nil, errs.NotFound("player %s not found", id)
	}
	return recordToPlayer(record)
}

// PutPlayer upserts a player within txApp, the same arbitrary-core.App
// shape as PutKill, so multi-entity writes (kill-apply, reassignment)
// can all land inside one Store.Transact.
func (s *Store) PutPlayer(txApp core.App, p *domain.Player) error {
	collection, err := txApp.FindCollectionByNameOrId(CollectionPlayers)
	if err != nil {
		return errs.Internal(err, "find players collection")
	}

	var record *core.Record
	existing := false
	if p.ID != "" {
		record, err = txApp.FindRecordById(CollectionPlayers, p.ID)
		if err == nil {
			existing = true
		} else {
			record = core.NewRecord(collection)
			record.Id = p.ID
		}
	} else {
		record = core.NewRecord(collection)
	}

	if existing {
		if err := checkVersion(record, p.Version); err != nil {
			return err
		}
	}

	if err := playerToRecord(record, p); err != nil {
		return errs.Internal(err, "encode player")
	}
	if existing {
		bumpVersion(record)
	}
	if err := txApp.Save(record); err != nil {
		return errs.Persistence(err, "save player %s", p.ID)
	}
	p.ID = record.Id
	p.Version = int64(record.GetInt("version"))
	return nil
}

// DeletePlayer removes a player record.
func (s *Store) DeletePlayer(id string) error {
	record, err := s.app.FindRecordById(CollectionPlayers, id)
	if err != nil {
		return errs.NotFound("player %s not found", id)
	}
	if err := s.app.Delete(record); err != nil {
		return errs.Persistence(err, "delete player %s", id)
	}
	return nil
}

// GetPlayersByGameID queries all players in a game.
func (s *Store) GetPlayersByGameID(gameID string) ([]*domain.Player, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPlayers, "game_id = {:gameId}", "name", 0, 0,
		map[string]any{"gameId": gameID},
	)
	if err != nil {
		return nil, errs.Persistence(err, "list players for game %s", gameID)
	}
	players := make([]*domain.Player, 0, len(records))
	for _, r := range records {
		p, err := recordToPlayer(r)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// GetActivePlayersByGameID is a convenience filter used throughout
// ZoneEngine, ProximityEngine, and GameCoordinator.
func (s *Store) GetActivePlayersByGameID(gameID string) ([]*domain.Player, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPlayers,
		"game_id = {:gameId} && status = {:status}",
		"name", 0, 0,
		map[string]any{"gameId": gameID, "status": string(domain.PlayerActive)},
	)
	if err != nil {
		return nil, errs.Persistence(err, "list active players for game %s", gameID)
	}
	players := make([]*domain.Player, 0, len(records))
	for _, r := range records {
		p, err := recordToPlayer(r)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// GetLeaderboardByKillCount queries the Players (status, killCount)
// secondary index, returning the top `limit` players with the given
// status ordered by kill count descending.
func (s *Store) GetLeaderboardByKillCount(statusKey domain.PlayerStatus, limit int) ([]*domain.Player, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionPlayers, "status = {:status}", "-kill_count", limit, 0,
		map[string]any{"status": string(statusKey)},
	)
	if err != nil {
		return nil, errs.Persistence(err, "leaderboard query")
	}
	players := make([]*domain.Player, 0, len(records))
	for _, r := range records {
		p, err := recordToPlayer(r)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// CountDeathsByVictim counts Kill rows with verificationStatus=VERIFIED
// for a given victim, delegated to the kills store to avoid
// a cross-file query duplication.
func (s *Store) CountDeathsByVictim(victimID string) (int, error) {
	return s.countVerifiedKillsByVictim(victimID)
}
