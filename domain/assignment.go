package domain

import "time"

// AssignmentStatus is the lifecycle of one hunter->target edge.
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "ACTIVE"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

// TargetAssignment is one row of the append-only elimination chain
// history; the current assignment for an assigner is its ACTIVE row.
type TargetAssignment struct {
	ID            string           `json:"id" db:"id"`
	GameID        string           `json:"gameId" db:"game_id"`
	AssignerID    string           `json:"assignerId" db:"assigner_id"`
	TargetID      string           `json:"targetId" db:"target_id"`
	Status        AssignmentStatus `json:"status" db:"status"`
	AssignmentDate time.Time       `json:"assignmentDate" db:"assignment_date"`
	CompletedDate *time.Time       `json:"completedDate,omitempty" db:"completed_date"`
}
