package model

import (
	"time"

	"github.com/google/uuid"
)

// Flow represents an onboarding flow: an ordered program of modules a tenant
// assigns to its employees.
type Flow struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	IsActive     bool       `json:"is_active"`
	DisplayOrder int        `json:"display_order"`
	ModuleCount  int        `json:"module_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// CreateFlowRequest is the payload for creating a new flow.
type CreateFlowRequest struct {
	Title        string  `json:"title" binding:"required,min=1,max=200"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
	IsActive     *bool   `json:"is_active" binding:"omitempty"`
	DisplayOrder int     `json:"display_order" binding:"omitempty,min=0"`
}

// UpdateFlowRequest is the payload for updating an existing flow.
type UpdateFlowRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
	IsActive     *bool   `json:"is_active" binding:"omitempty"`
	DisplayOrder *int    `json:"display_order" binding:"omitempty,min=0"`
}

// CloneFlowRequest is the payload for cloning a flow with all its modules.
type CloneFlowRequest struct {
	NewTitle string `json:"new_title" binding:"required,min=1,max=200"`
}

// FlowPayload is the Redis-cached employee-facing view of a flow. Quiz
// definitions are stripped of correct answers before caching.
type FlowPayload struct {
	FlowID      uuid.UUID           `json:"flow_id"`
	Title       string              `json:"title"`
	Description *string             `json:"description,omitempty"`
	Modules     []ModuleForEmployee `json:"modules"`
}

// ModuleForEmployee is a module without grading data, sent to employees.
type ModuleForEmployee struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description,omitempty"`
	ModuleType       ModuleType     `json:"module_type"`
	ContentText      *string        `json:"content_text,omitempty"`
	ContentURL       *string        `json:"content_url,omitempty"`
	Position         int            `json:"position"`
	IsRequired       bool           `json:"is_required"`
	EstimatedMinutes *int           `json:"estimated_minutes,omitempty"`
	Quiz             *QuizForTaking `json:"quiz,omitempty"`
}

// QuizForTaking is a quiz definition without correct answers.
type QuizForTaking struct {
	Questions    []QuestionForTaking `json:"questions"`
	PassingScore int                 `json:"passing_score"`
}

// QuestionForTaking is a single question as presented to the employee.
type QuestionForTaking struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}
