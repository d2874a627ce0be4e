package progression

import (
	"testing"
	"time"

	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func freshAssignment() model.Assignment {
	return model.Assignment{Status: model.AssignmentStatusNotStarted}
}

func entry(pos int, required, completed bool) model.ModuleProgress {
	return model.ModuleProgress{Position: pos, IsRequired: required, IsCompleted: completed}
}

func TestRecomputeFreshAssignment(t *testing.T) {
	ledger := []model.ModuleProgress{entry(0, true, false), entry(1, true, false)}
	out := Recompute(freshAssignment(), ledger, now)

	require.Equal(t, 0, out.Percentage)
	require.Equal(t, model.AssignmentStatusNotStarted, out.Status)
	require.Nil(t, out.CompletedAt)
}

func TestRecomputeEmptyLedgerCompletesImmediately(t *testing.T) {
	out := Recompute(freshAssignment(), nil, now)

	require.Equal(t, 100, out.Percentage)
	require.Equal(t, model.AssignmentStatusCompleted, out.Status)
	require.NotNil(t, out.CompletedAt)
	require.Equal(t, now, *out.CompletedAt)
}

func TestRecomputePercentageRounding(t *testing.T) {
	// 1 of 3 -> 33, 2 of 3 -> 67.
	ledger := []model.ModuleProgress{entry(0, true, true), entry(1, true, false), entry(2, true, false)}
	out := Recompute(freshAssignment(), ledger, now)
	require.Equal(t, 33, out.Percentage)

	ledger[1].IsCompleted = true
	out = Recompute(freshAssignment(), ledger, now)
	require.Equal(t, 67, out.Percentage)
}

func TestRecomputeOptionalModulesDoNotBlockCompletion(t *testing.T) {
	ledger := []model.ModuleProgress{
		entry(0, true, true),
		entry(1, false, false), // optional, incomplete
		entry(2, true, true),
	}
	out := Recompute(freshAssignment(), ledger, now)

	require.Equal(t, 67, out.Percentage)
	require.Equal(t, model.AssignmentStatusCompleted, out.Status)
	require.NotNil(t, out.CompletedAt)
}

func TestRecomputeNoRequiredModulesCompletesWhenAllDone(t *testing.T) {
	ledger := []model.ModuleProgress{entry(0, false, true), entry(1, false, false)}
	out := Recompute(freshAssignment(), ledger, now)
	require.Equal(t, model.AssignmentStatusInProgress, out.Status)

	ledger[1].IsCompleted = true
	out = Recompute(freshAssignment(), ledger, now)
	require.Equal(t, model.AssignmentStatusCompleted, out.Status)
}

func TestRecomputeKeepsExistingCompletedAt(t *testing.T) {
	earlier := now.Add(-48 * time.Hour)
	a := model.Assignment{
		Status:      model.AssignmentStatusCompleted,
		CompletedAt: &earlier,
	}
	ledger := []model.ModuleProgress{entry(0, true, true)}
	out := Recompute(a, ledger, now)

	require.Equal(t, model.AssignmentStatusCompleted, out.Status)
	require.Equal(t, earlier, *out.CompletedAt)
}

func TestRecomputeStatusNeverRegresses(t *testing.T) {
	// A completed assignment stays completed even if the ledger would no
	// longer satisfy the required set (defensive: ledgers are append-only
	// in practice).
	a := model.Assignment{Status: model.AssignmentStatusCompleted, CompletedAt: &now}
	ledger := []model.ModuleProgress{entry(0, true, false)}
	out := Recompute(a, ledger, now)

	require.Equal(t, model.AssignmentStatusCompleted, out.Status)
}

// Two required modules, completed in order.
func TestTwoRequiredModulesCompletedInOrder(t *testing.T) {
	a := freshAssignment()
	ledger := []model.ModuleProgress{entry(0, true, false), entry(1, true, false)}

	out := Recompute(a, ledger, now)
	require.Equal(t, 0, out.Percentage)
	require.Equal(t, model.AssignmentStatusNotStarted, out.Status)

	ledger[0].IsCompleted = true
	out = Recompute(a, ledger, now)
	require.Equal(t, 50, out.Percentage)
	require.Equal(t, model.AssignmentStatusInProgress, out.Status)
	require.Nil(t, out.CompletedAt)

	a.Status = out.Status
	ledger[1].IsCompleted = true
	out = Recompute(a, ledger, now)
	require.Equal(t, 100, out.Percentage)
	require.Equal(t, model.AssignmentStatusCompleted, out.Status)
	require.NotNil(t, out.CompletedAt)
}

// A required, optional, required ledger: the middle optional module still
// gates position 2 via the locking rule.
func TestOptionalModuleBetweenRequired(t *testing.T) {
	a := freshAssignment()
	ledger := []model.ModuleProgress{
		entry(0, true, false),
		entry(1, false, false),
		entry(2, true, false),
	}

	ledger[0].IsCompleted = true
	out := Recompute(a, ledger, now)
	require.Equal(t, 33, out.Percentage)
	require.Equal(t, model.AssignmentStatusInProgress, out.Status)

	// Position 2 stays locked until the optional module at 1 is done.
	require.True(t, Locked(ledger, 2))

	a.Status = out.Status
	ledger[1].IsCompleted = true
	out = Recompute(a, ledger, now)
	require.Equal(t, 67, out.Percentage)
	require.Equal(t, model.AssignmentStatusInProgress, out.Status)

	require.False(t, Locked(ledger, 2))
	ledger[2].IsCompleted = true
	out = Recompute(a, ledger, now)
	require.Equal(t, 100, out.Percentage)
	require.Equal(t, model.AssignmentStatusCompleted, out.Status)
	require.NotNil(t, out.CompletedAt)
}

// A failed quiz records a score but leaves the ledger entry incomplete, so
// the aggregate state is unchanged.
func TestFailedQuizLeavesStatusUntouched(t *testing.T) {
	def := quizDef(70, 0, 0, 0, 0)
	res := Grade(def, map[string]int{"0": 0, "1": 0, "2": 1, "3": 1})
	require.Equal(t, 50, res.Score)
	require.False(t, res.Passed)

	ledger := []model.ModuleProgress{entry(0, true, false)}
	score := res.Score
	passed := res.Passed
	ledger[0].QuizScore = &score
	ledger[0].QuizPassed = &passed
	ledger[0].IsCompleted = res.Passed

	out := Recompute(freshAssignment(), ledger, now)
	require.Equal(t, 0, out.Percentage)
	require.Equal(t, model.AssignmentStatusNotStarted, out.Status)
}
