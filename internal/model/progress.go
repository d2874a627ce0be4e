package model

import (
	"time"

	"github.com/google/uuid"
)

// ModuleProgress is the per-(assignment, module) completion record. Exactly
// one row exists per module in the assignment's flow, created atomically with
// the assignment. The module's position, required flag, type and quiz
// definition are snapshotted here so the ledger stays self-contained even if
// the flow is edited afterwards.
type ModuleProgress struct {
	ID           uuid.UUID  `json:"id"`
	AssignmentID uuid.UUID  `json:"assignment_id"`
	ModuleID     uuid.UUID  `json:"module_id"`
	ModuleTitle  string     `json:"module_title"`
	Position     int        `json:"position"`
	IsRequired   bool       `json:"is_required"`
	ModuleType   ModuleType `json:"module_type"`
	// Quiz is the snapshotted quiz definition for quiz modules, nil otherwise.
	// Not serialized to clients: it contains correct answers.
	Quiz             *QuizDefinition `json:"-"`
	IsCompleted      bool            `json:"is_completed"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	TimeSpentMinutes int             `json:"time_spent_minutes"`
	QuizScore        *int            `json:"quiz_score,omitempty"`
	QuizPassed       *bool           `json:"quiz_passed,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CompleteModuleRequest is the payload for marking a module completed.
type CompleteModuleRequest struct {
	Notes            *string `json:"notes" binding:"omitempty,max=5000"`
	TimeSpentMinutes *int    `json:"time_spent_minutes" binding:"omitempty,min=0"`
}

// SubmitQuizRequest is the payload for submitting quiz answers. Answers are
// keyed by the stringified question index, values are chosen option indexes.
type SubmitQuizRequest struct {
	Answers          map[string]int `json:"answers" binding:"required"`
	TimeSpentMinutes *int           `json:"time_spent_minutes" binding:"omitempty,min=0"`
}
