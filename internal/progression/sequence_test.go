package progression

import (
	"testing"

	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func ledgerAt(completed ...bool) []model.ModuleProgress {
	ledger := make([]model.ModuleProgress, len(completed))
	for i, done := range completed {
		ledger[i] = model.ModuleProgress{Position: i, IsCompleted: done}
	}
	return ledger
}

func TestLockedFirstModuleNeverLocked(t *testing.T) {
	require.False(t, Locked(ledgerAt(false, false, false), 0))
}

func TestLockedUntilPredecessorCompleted(t *testing.T) {
	ledger := ledgerAt(false, false, false)

	require.True(t, Locked(ledger, 1))
	require.True(t, Locked(ledger, 2))

	ledger[0].IsCompleted = true
	require.False(t, Locked(ledger, 1))
	require.True(t, Locked(ledger, 2))
}

func TestLockedOnlyImmediatePredecessorMatters(t *testing.T) {
	// Position 1 completed but 0 is not: position 2 still unlocks.
	ledger := ledgerAt(false, true, false)

	require.False(t, Locked(ledger, 2))
	require.False(t, Locked(ledger, 0))
	require.True(t, Locked(ledger, 1))
}

func TestLockedNonContiguousPositions(t *testing.T) {
	ledger := []model.ModuleProgress{
		{Position: 10, IsCompleted: true},
		{Position: 20, IsCompleted: false},
		{Position: 30, IsCompleted: false},
	}

	require.False(t, Locked(ledger, 10))
	require.False(t, Locked(ledger, 20))
	require.True(t, Locked(ledger, 30))
}

func TestLockedUnknownPosition(t *testing.T) {
	require.True(t, Locked(ledgerAt(true, true), 7))
}

func TestLockedEmptyLedger(t *testing.T) {
	require.False(t, Locked(nil, 0))
}
