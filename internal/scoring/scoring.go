// Package scoring computes the final session score. It is pure: no IO,
// no session mutation.
package scoring

import (
	"math"

	"quiz-session-service/internal/models"
)

// Score returns the rounded percentage of correct answers, 0..100.
// Answers is index-aligned with questions; a nil slot counts the same as a
// wrong answer. An empty question list scores 0 (the selector rejects empty
// pools, so this is a guard, not a path).
func Score(questions []models.Question, answers []*int) int {
	if len(questions) == 0 {
		return 0
	}
	correct := CorrectCount(questions, answers)
	return int(math.Round(100 * float64(correct) / float64(len(questions))))
}

// CorrectCount counts slots whose recorded answer matches the question's
// correct option index.
func CorrectCount(questions []models.Question, answers []*int) int {
	correct := 0
	for i, q := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if *answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return correct
}
