package progression

import (
	"testing"

	"github.com/onboardly/onboardly-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func quizDef(passing int, correct ...int) model.QuizDefinition {
	qs := make([]model.QuizQuestion, len(correct))
	for i, c := range correct {
		qs[i] = model.QuizQuestion{
			Prompt:        "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: c,
		}
	}
	return model.QuizDefinition{Questions: qs, PassingScore: passing}
}

func TestGradeAllCorrect(t *testing.T) {
	def := quizDef(70, 1, 2, 0)
	res := Grade(def, map[string]int{"0": 1, "1": 2, "2": 0})

	require.Equal(t, 100, res.Score)
	require.True(t, res.Passed)
}

func TestGradeHalfCorrectBelowThreshold(t *testing.T) {
	// passing_score 70, 4 questions, 2 correct -> 50, failed.
	def := quizDef(70, 0, 0, 0, 0)
	res := Grade(def, map[string]int{"0": 0, "1": 0, "2": 3, "3": 3})

	require.Equal(t, 50, res.Score)
	require.False(t, res.Passed)
}

func TestGradeRoundsScore(t *testing.T) {
	// 2 of 3 correct -> 66.67 rounds to 67.
	def := quizDef(67, 1, 1, 1)
	res := Grade(def, map[string]int{"0": 1, "1": 1, "2": 0})

	require.Equal(t, 67, res.Score)
	require.True(t, res.Passed)
}

func TestGradeEmptyDefinitionNeverPasses(t *testing.T) {
	res := Grade(model.QuizDefinition{}, map[string]int{})

	require.Equal(t, 0, res.Score)
	require.False(t, res.Passed)
}

func TestGradeMissingAnswersCountWrong(t *testing.T) {
	def := quizDef(50, 1, 1)
	res := Grade(def, map[string]int{"0": 1})

	require.Equal(t, 50, res.Score)
	require.True(t, res.Passed)
}

func TestGradeDefaultPassingScore(t *testing.T) {
	// Unset passing score falls back to 70.
	def := quizDef(0, 1, 1, 1, 1, 1)

	// 3/5 = 60 < 70.
	res := Grade(def, map[string]int{"0": 1, "1": 1, "2": 1, "3": 0, "4": 0})
	require.Equal(t, 60, res.Score)
	require.False(t, res.Passed)

	// 4/5 = 80 >= 70.
	res = Grade(def, map[string]int{"0": 1, "1": 1, "2": 1, "3": 1, "4": 0})
	require.Equal(t, 80, res.Score)
	require.True(t, res.Passed)
}

func TestGradeDeterministic(t *testing.T) {
	def := quizDef(70, 2, 3, 1, 0)
	answers := map[string]int{"0": 2, "1": 0, "2": 1, "3": 0}

	first := Grade(def, answers)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Grade(def, answers))
	}
}
