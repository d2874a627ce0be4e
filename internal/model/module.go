package model

import (
	"time"

	"github.com/google/uuid"
)

// ModuleType enumerates the supported module content types.
type ModuleType string

const (
	ModuleTypeText     ModuleType = "text"
	ModuleTypeVideo    ModuleType = "video"
	ModuleTypeDocument ModuleType = "document"
	ModuleTypeLink     ModuleType = "link"
	ModuleTypeQuiz     ModuleType = "quiz"
)

// DefaultPassingScore is applied when a quiz definition omits passing_score.
const DefaultPassingScore = 70

// Module is one step within a flow. Position defines the sequencing order
// and is unique within a flow.
type Module struct {
	ID               uuid.UUID       `json:"id"`
	FlowID           uuid.UUID       `json:"flow_id"`
	Title            string          `json:"title"`
	Description      *string         `json:"description,omitempty"`
	ModuleType       ModuleType      `json:"module_type"`
	ContentText      *string         `json:"content_text,omitempty"`
	ContentURL       *string         `json:"content_url,omitempty"`
	Position         int             `json:"position"`
	IsRequired       bool            `json:"is_required"`
	EstimatedMinutes *int            `json:"estimated_minutes,omitempty"`
	Quiz             *QuizDefinition `json:"quiz,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// QuizDefinition holds the gradable content of a quiz module. Stored as JSONB
// and snapshotted into module_progress rows at assignment time so that later
// edits never change how an in-flight assignment is graded.
type QuizDefinition struct {
	Questions []QuizQuestion `json:"questions"`
	// PassingScore is the minimum score (0-100) to pass. Zero means unset;
	// DefaultPassingScore applies.
	PassingScore int `json:"passing_score,omitempty"`
}

// QuizQuestion is a single question with its correct option index.
type QuizQuestion struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// CreateModuleRequest is the payload for adding a module to a flow.
type CreateModuleRequest struct {
	Title            string          `json:"title" binding:"required,min=1,max=200"`
	Description      *string         `json:"description" binding:"omitempty,max=2000"`
	ModuleType       string          `json:"module_type" binding:"required,oneof=text video document link quiz"`
	ContentText      *string         `json:"content_text" binding:"omitempty"`
	ContentURL       *string         `json:"content_url" binding:"omitempty,max=500"`
	Position         int             `json:"position" binding:"min=0"`
	IsRequired       *bool           `json:"is_required" binding:"omitempty"`
	EstimatedMinutes *int            `json:"estimated_minutes" binding:"omitempty,min=1"`
	Quiz             *QuizDefinition `json:"quiz" binding:"omitempty"`
}

// UpdateModuleRequest is the payload for updating a module.
type UpdateModuleRequest struct {
	Title            *string         `json:"title" binding:"omitempty,min=1,max=200"`
	Description      *string         `json:"description" binding:"omitempty,max=2000"`
	ContentText      *string         `json:"content_text" binding:"omitempty"`
	ContentURL       *string         `json:"content_url" binding:"omitempty,max=500"`
	Position         *int            `json:"position" binding:"omitempty,min=0"`
	IsRequired       *bool           `json:"is_required" binding:"omitempty"`
	EstimatedMinutes *int            `json:"estimated_minutes" binding:"omitempty,min=1"`
	Quiz             *QuizDefinition `json:"quiz" binding:"omitempty"`
}

// ReorderModulesRequest maps module IDs to their new positions.
type ReorderModulesRequest struct {
	Positions map[string]int `json:"positions" binding:"required,min=1"`
}
