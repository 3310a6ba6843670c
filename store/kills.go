package store

import (
	"fmt"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

// killRecordID derives a stable id from the composite (killerId,
// killTime) key, so PutKill is idempotent under retry.
func killRecordID(killerID string, killTimeUnixNano int64) string {
	return fmt.Sprintf("kill_%s_%d", killerID, killTimeUnixNano)
}

func killToRecord(record *core.Record, k *domain.Kill) error {
	record.Set("killer_id", k.KillerID)
	record.Set("kill_time", k.KillTime)
	record.Set("game_id", k.GameID)
	record.Set("victim_id", k.VictimID)
	record.Set("latitude", k.Latitude)
	record.Set("longitude", k.Longitude)
	record.Set("verification_method", string(k.VerificationMethod))
	record.Set("verification_status", string(k.VerificationStatus))
	record.Set("photo_hash", k.PhotoHash)
	record.Set("verified_by", k.VerifiedBy)
	record.Set("verified_at", k.VerifiedAt)
	return setJSON(record, "verification_data", k.VerificationData)
}

func recordToKill(record *core.Record) (*domain.Kill, error) {
	k := &domain.Kill{
		ID:                 record.Id,
		KillerID:           record.GetString("killer_id"),
		KillTime:           record.GetDateTime("kill_time").Time(),
		GameID:             record.GetString("game_id"),
		VictimID:           record.GetString("victim_id"),
		Latitude:           record.GetFloat("latitude"),
		Longitude:          record.GetFloat("longitude"),
		VerificationMethod: domain.VerificationMethod(record.GetString("verification_method")),
		VerificationStatus: domain.VerificationStatus(record.GetString("verification_status")),
		PhotoHash:          record.GetString("photo_hash"),
		VerifiedBy:         record.GetString("verified_by"),
		Version:            int64(record.GetInt("version")),
	}
	if t := record.GetDateTime("verified_at").Time(); !t.IsZero() {
		k.VerifiedAt = &t
	}
	if err := getJSON(record, "verification_data", &k.VerificationData); err != nil {
		return nil, errs.Internal(err, "decode verification data")
	}
	return k, nil
}

// GetKill fetches a kill by id.
func (s *Store) GetKill(id string) (*domain.Kill, error) {
	record, err := s.app.FindRecordById(CollectionKills, id)
	if err != nil {
		return nil, errs.NotFound("kill %s not found", id)
	}
	return recordToKill(record)
}

// PutKill upserts a kill row within an arbitrary core.App (so
// KillPipeline can call it inside Store.Transact).
func (s *Store) PutKill(txApp core.App, k *domain.Kill) error {
	if k.ID == "" {
		k.ID = killRecordID(k.KillerID, k.KillTime.UnixNano())
	}

	collection, err := txApp.FindCollectionByNameOrId(CollectionKills)
	if err != nil {
		return errs.Internal(err, "find kills collection")
	}

	record, err := txApp.FindRecordById(CollectionKills, k.ID)
	if err != nil {
		record = core.NewRecord(collection)
		record.Id = k.ID
	}

	if err := killToRecord(record, k); err != nil {
		return errs.Internal(err, "encode kill")
	}
	if err := txApp.Save(record); err != nil {
		return errs.Persistence(err, "save kill %s", k.ID)
	}
	k.Version = int64(record.GetInt("version"))
	return nil
}

// FindKillsByGameID queries the Kills (gameId, killTime) secondary index.
func (s *Store) FindKillsByGameID(gameID string) ([]*domain.Kill, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionKills, "game_id = {:gameId}", "kill_time", 0, 0,
		map[string]any{"gameId": gameID},
	)
	if err != nil {
		return nil, errs.Persistence(err, "kills for game %s", gameID)
	}
	out := make([]*domain.Kill, 0, len(records))
	for _, r := range records {
		k, err := recordToKill(r)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func (s *Store) countVerifiedKillsByVictim(victimID string) (int, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionKills,
		"victim_id = {:victimId} && verification_status = {:status}",
		"", 0, 0,
		map[string]any{"victimId": victimID, "status": string(domain.VerificationVerified)},
	)
	if err != nil {
		return 0, errs.Persistence(err, "count deaths for victim %s", victimID)
	}
	return len(records), nil
}

// HasVerifiedKillForVictim enforces the invariant that a VERIFIED kill
// exists for a victim at most once per game.
func (s *Store) HasVerifiedKillForVictim(gameID, victimID string) (bool, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionKills,
		"game_id = {:gameId} && victim_id = {:victimId} && verification_status = {:status}",
		map[string]any{"gameId": gameID, "victimId": victimID, "status": string(domain.VerificationVerified)},
	)
	if err != nil {
		return false, nil
	}
	return record != nil, nil
}
