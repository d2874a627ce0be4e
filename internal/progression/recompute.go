package progression

import (
	"math"
	"time"

	"github.com/onboardly/onboardly-backend/internal/model"
)

// Outcome is the next aggregate state of an assignment, derived purely from
// its ledger. It is the only thing ever persisted to an assignment's status,
// completion percentage and completed_at columns.
type Outcome struct {
	Percentage  int
	Status      model.AssignmentStatus
	CompletedAt *time.Time
}

// Recompute derives an assignment's aggregate state from the full progress
// ledger. It must be called after every ledger mutation, inside the same
// transaction that performed it.
//
// Rules:
//   - percentage = round(100 * completed / total); an empty ledger is 100%.
//   - COMPLETED when every required entry is completed; with no required
//     entries, when every entry is completed.
//   - completed_at is stamped once and kept afterwards; status never
//     regresses from COMPLETED.
//   - a non-zero percentage moves NOT_STARTED to IN_PROGRESS.
func Recompute(a model.Assignment, ledger []model.ModuleProgress, now time.Time) Outcome {
	total := len(ledger)

	if total == 0 {
		return Outcome{
			Percentage:  100,
			Status:      model.AssignmentStatusCompleted,
			CompletedAt: stamp(a.CompletedAt, now),
		}
	}

	completed := 0
	requiredTotal := 0
	requiredDone := 0
	for _, p := range ledger {
		if p.IsCompleted {
			completed++
		}
		if p.IsRequired {
			requiredTotal++
			if p.IsCompleted {
				requiredDone++
			}
		}
	}

	pct := int(math.Round(100 * float64(completed) / float64(total)))

	done := false
	if requiredTotal > 0 {
		done = requiredDone == requiredTotal
	} else {
		done = completed == total
	}

	if a.Status == model.AssignmentStatusCompleted || done {
		return Outcome{
			Percentage:  pct,
			Status:      model.AssignmentStatusCompleted,
			CompletedAt: stamp(a.CompletedAt, now),
		}
	}

	status := a.Status
	if pct > 0 && status == model.AssignmentStatusNotStarted {
		status = model.AssignmentStatusInProgress
	}

	return Outcome{Percentage: pct, Status: status, CompletedAt: a.CompletedAt}
}

// stamp keeps an existing completion timestamp, stamping now only on the
// first transition.
func stamp(existing *time.Time, now time.Time) *time.Time {
	if existing != nil {
		return existing
	}
	t := now
	return &t
}
