package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError               Event = "error"
	EventModuleCompleted     Event = "module_completed"
	EventQuizGraded          Event = "quiz_graded"
	EventAssignmentCompleted Event = "assignment_completed"
	EventPong                Event = "pong"
)

// ProgressEvent is published on an assignment's Redis channel after each
// ledger mutation and forwarded verbatim to stream subscribers.
type ProgressEvent struct {
	Event                Event  `json:"event"`
	AssignmentID         string `json:"assignment_id"`
	ModuleID             string `json:"module_id,omitempty"`
	Status               string `json:"status"`
	CompletionPercentage int    `json:"completion_percentage"`
	QuizScore            *int   `json:"quiz_score,omitempty"`
	QuizPassed           *bool  `json:"quiz_passed,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
