package progression

import (
	"sort"

	"github.com/onboardly/onboardly-backend/internal/model"
)

// Locked reports whether the module at the given position is currently
// ineligible for completion. The module with the lowest position is never
// locked; any other module is locked until the entry at the immediately
// preceding position is completed. Only the direct predecessor matters, so
// unlocking advances one step at a time even with gaps earlier in the flow.
func Locked(ledger []model.ModuleProgress, position int) bool {
	if len(ledger) == 0 {
		return false
	}

	ordered := make([]model.ModuleProgress, len(ledger))
	copy(ordered, ledger)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	if ordered[0].Position == position {
		return false
	}

	for i := 1; i < len(ordered); i++ {
		if ordered[i].Position == position {
			return !ordered[i-1].IsCompleted
		}
	}

	// Unknown position: treat as locked so a stale client cannot complete
	// a module that is no longer part of the ledger.
	return true
}
