package store

import (
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

func gameToRecord(record *core.Record, g *domain.Game) error {
	record.Set("name", g.Name)
	record.Set("status", string(g.Status))
	record.Set("admin_player_id", g.AdminPlayerID)
	record.Set("started_at", g.StartedAt)
	record.Set("ended_at", g.EndedAt)
	record.Set("map_id", g.MapID)
	record.Set("strategy", string(g.Strategy))
	record.Set("weapon_distance_meters", g.WeaponDistanceMeters)
	record.Set("player_health_default", g.PlayerHealthDefault)
	record.Set("winner_id", g.WinnerID)
	record.Set("emergency_pause_active", g.EmergencyPause.Active)
	record.Set("emergency_pause_reason", g.EmergencyPause.Reason)
	record.Set("emergency_pause_triggered_by", g.EmergencyPause.TriggeredBy)
	record.Set("emergency_pause_timestamp", g.EmergencyPause.Timestamp)
	if err := setJSON(record, "boundary", g.Boundary); err != nil {
		return err
	}
	return setJSON(record, "settings", g.Settings)
}

func recordToGame(record *core.Record) (*domain.Game, error) {
	g := &domain.Game{
		ID:                   record.Id,
		Name:                 record.GetString("name"),
		Status:               domain.GameStatus(record.GetString("status")),
		AdminPlayerID:        record.GetString("admin_player_id"),
		CreatedAt:            record.GetDateTime("created").Time(),
		MapID:                record.GetString("map_id"),
		Strategy:             domain.AssignmentStrategy(record.GetString("strategy")),
		WeaponDistanceMeters: record.GetFloat("weapon_distance_meters"),
		PlayerHealthDefault:  record.GetInt("player_health_default"),
		WinnerID:             record.GetString("winner_id"),
		Version:              int64(record.GetInt("version")),
	}
	if t := record.GetDateTime("started_at").Time(); !t.IsZero() {
		g.StartedAt = &t
	}
	if t := record.GetDateTime("ended_at").Time(); !t.IsZero() {
		g.EndedAt = &t
	}
	g.EmergencyPause = domain.EmergencyPause{
		Active:      record.GetBool("emergency_pause_active"),
		Reason:      record.GetString("emergency_pause_reason"),
		TriggeredBy: record.GetString("emergency_pause_triggered_by"),
		Timestamp:   record.GetDateTime("emergency_pause_timestamp").Time(),
	}
	if err := getJSON(record, "boundary", &g.Boundary); err != nil {
		return nil, errs.Internal(err, "decode boundary")
	}
	if err := getJSON(record, "settings", &g.Settings); err != nil {
		return nil, errs.Internal(err, "decode settings")
	}
	if g.WeaponDistanceMeters == 0 {
		g.WeaponDistanceMeters = domain.DefaultWeaponDistanceMeters
	}
	if g.PlayerHealthDefault == 0 {
		g.PlayerHealthDefault = domain.DefaultPlayerHealth
	}
	return g, nil
}

// GetGame fetches a game by id, wrapping "not found" as errs.NotFound.
func (s *Store) GetGame(id string) (*domain.Game, error) {
	record, err := s.app.FindRecordById(CollectionGames, id)
	if err != nil {
		return nil, errs.NotFound("game %s not found", id)
	}
	return recordToGame(record)
}

// PutGame upserts a game within txApp, so callers that change game state
// alongside other entities (StartGame, kill-apply completion) can pass
// the app handle a surrounding Store.Transact hands them and have every
// write land in the same transaction.
func (s *Store) PutGame(txApp core.App, g *domain.Game) error {
	collection, err := txApp.FindCollectionByNameOrId(CollectionGames)
	if err != nil {
		return errs.Internal(err, "find games collection")
	}

	var record *core.Record
	existing := false
	if g.ID != "" {
		record, err = txApp.FindRecordById(CollectionGames, g.ID)
		if err == nil {
			existing = true
		} else {
			record = core.NewRecord(collection)
			record.Id = g.ID
		}
	} else {
		record = core.NewRecord(collection)
	}

	if existing {
		if err := checkVersion(record, g.Version); err != nil {
			return err
		}
	}

	if err := gameToRecord(record, g); err != nil {
		return errs.Internal(err, "encode game")
	}
	if existing {
		bumpVersion(record)
	}
	if err := txApp.Save(record); err != nil {
		return errs.Persistence(err, "save game %s", g.ID)
	}
	g.ID = record.Id
	g.Version = int64(record.GetInt("version"))
	return nil
}

// DeleteGame removes a game record.
func (s *Store) DeleteGame(id string) error {
	record, err := s.app.FindRecordById(CollectionGames, id)
	if err != nil {
		return errs.NotFound("game %s not found", id)
	}
	if err := s.app.Delete(record); err != nil {
		return errs.Persistence(err, "delete game %s", id)
	}
	return nil
}

// ListGamesByStatus queries the Games (status, createdAt) secondary
// index.
func (s *Store) ListGamesByStatus(status domain.GameStatus) ([]*domain.Game, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionGames,
		"status = {:status}",
		"-created",
		0, 0,
		map[string]any{"status": string(status)},
	)
	if err != nil {
		return nil, errs.Persistence(err, "list games by status %s", status)
	}
	games := make([]*domain.Game, 0, len(records))
	for _, r := range records {
		g, err := recordToGame(r)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}
