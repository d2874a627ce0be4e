package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus enumerates assignment lifecycle states.
type AssignmentStatus string

const (
	AssignmentStatusNotStarted AssignmentStatus = "NOT_STARTED"
	AssignmentStatusInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusCompleted  AssignmentStatus = "COMPLETED"
)

// Assignment binds one flow to one employee, with lifecycle state and
// aggregate progress. Status, completion percentage and completed_at are
// written only from progression.Recompute output.
type Assignment struct {
	ID                   uuid.UUID        `json:"id"`
	TenantID             uuid.UUID        `json:"tenant_id"`
	FlowID               uuid.UUID        `json:"flow_id"`
	UserID               uuid.UUID        `json:"user_id"`
	AssignedBy           *uuid.UUID       `json:"assigned_by,omitempty"`
	Status               AssignmentStatus `json:"status"`
	CompletionPercentage int              `json:"completion_percentage"`
	AssignedAt           time.Time        `json:"assigned_at"`
	StartedAt            *time.Time       `json:"started_at,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	DueDate              *time.Time       `json:"due_date,omitempty"`
	LastRemindedAt       *time.Time       `json:"-"`
}

// IsOverdue reports whether the assignment is past its due date and not yet
// completed.
func (a *Assignment) IsOverdue(now time.Time) bool {
	if a.DueDate == nil {
		return false
	}
	return now.After(*a.DueDate) && a.Status != AssignmentStatusCompleted
}

// AssignRequest is the payload for assigning a flow to a user.
type AssignRequest struct {
	FlowID  uuid.UUID  `json:"flow_id" binding:"required"`
	UserID  uuid.UUID  `json:"user_id" binding:"required"`
	DueDate *time.Time `json:"due_date" binding:"omitempty"`
}

// BulkAssignRequest assigns one flow to multiple users. Users with an active
// assignment for the flow are skipped.
type BulkAssignRequest struct {
	FlowID  uuid.UUID   `json:"flow_id" binding:"required"`
	UserIDs []uuid.UUID `json:"user_ids" binding:"required,min=1"`
	DueDate *time.Time  `json:"due_date" binding:"omitempty"`
}

// AssignmentFilter holds the admin listing filters.
type AssignmentFilter struct {
	Status    *AssignmentStatus
	FlowID    *uuid.UUID
	UserID    *uuid.UUID
	IsOverdue *bool
}

// AssignmentDetail is an assignment together with its progress ledger.
type AssignmentDetail struct {
	Assignment Assignment       `json:"assignment"`
	Progress   []ModuleProgress `json:"progress"`
}

// EmployeeDashboard summarizes an employee's assignments.
type EmployeeDashboard struct {
	TotalAssignments int          `json:"total_assignments"`
	Completed        int          `json:"completed"`
	InProgress       int          `json:"in_progress"`
	NotStarted       int          `json:"not_started"`
	Overdue          int          `json:"overdue"`
	Assignments      []Assignment `json:"assignments"`
}
