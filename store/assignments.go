package store

import (
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

func assignmentToRecord(record *core.Record, a *domain.TargetAssignment) {
	record.Set("game_id", a.GameID)
	record.Set("assigner_id", a.AssignerID)
	record.Set("target_id", a.TargetID)
	record.Set("status", string(a.Status))
	record.Set("assignment_date", a.AssignmentDate)
	record.Set("completed_date", a.CompletedDate)
}

func recordToAssignment(record *core.Record) *domain.TargetAssignment {
	a := &domain.TargetAssignment{
		ID:             record.Id,
		GameID:         record.GetString("game_id"),
		AssignerID:     record.GetString("assigner_id"),
		TargetID:       record.GetString("target_id"),
		Status:         domain.AssignmentStatus(record.GetString("status")),
		AssignmentDate: record.GetDateTime("assignment_date").Time(),
	}
	if t := record.GetDateTime("completed_date").Time(); !t.IsZero() {
		a.CompletedDate = &t
	}
	return a
}

// PutAssignment upserts a TargetAssignment row within txApp. Rows are
// logically append-only: callers create a new record for a new
// assignment and update the status field in place only to transition
// an existing row (ACTIVE -> COMPLETED/CANCELLED).
func (s *Store) PutAssignment(txApp core.App, a *domain.TargetAssignment) error {
	collection, err := txApp.FindCollectionByNameOrId(CollectionAssignments)
	if err != nil {
		return errs.Internal(err, "find assignments collection")
	}

	var record *core.Record
	if a.ID != "" {
		record, err = txApp.FindRecordById(CollectionAssignments, a.ID)
		if err != nil {
			record = core.NewRecord(collection)
			record.Id = a.ID
		}
	} else {
		record = core.NewRecord(collection)
	}

	assignmentToRecord(record, a)
	if err := txApp.Save(record); err != nil {
		return errs.Persistence(err, "save assignment %s", a.ID)
	}
	a.ID = record.Id
	return nil
}

// GetActiveAssignmentsForGame queries the Assignments (gameId, status)
// index for all ACTIVE rows, i.e. the current elimination chain.
func (s *Store) GetActiveAssignmentsForGame(gameID string) ([]*domain.TargetAssignment, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionAssignments,
		"game_id = {:gameId} && status = {:status}",
		"assignment_date", 0, 0,
		map[string]any{"gameId": gameID, "status": string(domain.AssignmentActive)},
	)
	if err != nil {
		return nil, errs.Persistence(err, "active assignments for game %s", gameID)
	}
	out := make([]*domain.TargetAssignment, 0, len(records))
	for _, r := range records {
		out = append(out, recordToAssignment(r))
	}
	return out, nil
}

// GetCurrentAssignmentForPlayer queries the Assignments (gameId,
// assignerId) index for the ACTIVE row, if any.
func (s *Store) GetCurrentAssignmentForPlayer(gameID, playerID string) (*domain.TargetAssignment, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionAssignments,
		"game_id = {:gameId} && assigner_id = {:playerId} && status = {:status}",
		map[string]any{"gameId": gameID, "playerId": playerID, "status": string(domain.AssignmentActive)},
	)
	if err != nil {
		return nil, errs.NotFound("no active assignment for player %s in game %s", playerID, gameID)
	}
	return recordToAssignment(record), nil
}

// GetAssignmentHistoryForPlayer returns every assignment row (any
// status) where the player was the assigner, newest first.
func (s *Store) GetAssignmentHistoryForPlayer(gameID, playerID string) ([]*domain.TargetAssignment, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionAssignments,
		"game_id = {:gameId} && assigner_id = {:playerId}",
		"-assignment_date", 0, 0,
		map[string]any{"gameId": gameID, "playerId": playerID},
	)
	if err != nil {
		return nil, errs.Persistence(err, "assignment history for player %s", playerID)
	}
	out := make([]*domain.TargetAssignment, 0, len(records))
	for _, r := range records {
		out = append(out, recordToAssignment(r))
	}
	return out, nil
}

// GetActiveAssignmentByTarget finds the ACTIVE assignment where
// playerID is the target (prey), used by the Scheduler to find and close
// a zone-death victim's inbound edge.
func (s *Store) GetActiveAssignmentByTarget(gameID, playerID string) (*domain.TargetAssignment, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionAssignments,
		"game_id = {:gameId} && target_id = {:playerId} && status = {:status}",
		map[string]any{"gameId": gameID, "playerId": playerID, "status": string(domain.AssignmentActive)},
	)
	if err != nil {
		return nil, errs.NotFound("no active assignment targeting player %s in game %s", playerID, gameID)
	}
	return recordToAssignment(record), nil
}
