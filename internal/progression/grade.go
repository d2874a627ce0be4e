package progression

import (
	"math"
	"strconv"

	"github.com/onboardly/onboardly-backend/internal/model"
)

// GradeResult is the outcome of grading a quiz submission.
type GradeResult struct {
	Score  int
	Passed bool
}

// Grade scores a quiz submission against its definition. Answers are keyed by
// stringified question index; an answer matches when it equals the question's
// correct option index. A definition with zero questions never passes.
func Grade(def model.QuizDefinition, answers map[string]int) GradeResult {
	total := len(def.Questions)
	if total == 0 {
		return GradeResult{Score: 0, Passed: false}
	}

	correct := 0
	for i, q := range def.Questions {
		answer, ok := answers[strconv.Itoa(i)]
		if ok && answer == q.CorrectOption {
			correct++
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(total)))
	return GradeResult{
		Score:  score,
		Passed: score >= passingScore(def),
	}
}

// passingScore returns the module's passing threshold, falling back to
// model.DefaultPassingScore when the definition leaves it unset.
func passingScore(def model.QuizDefinition) int {
	if def.PassingScore <= 0 {
		return model.DefaultPassingScore
	}
	return def.PassingScore
}
