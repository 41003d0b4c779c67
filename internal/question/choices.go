package question

import (
	"math/rand/v2"

	"github.com/ArnaudClarat/FactRush/internal/domain"
)

// Choices derives the presentable answer choices for q.
//
// Boolean questions always offer exactly True/False. Multiple-choice
// questions offer the correct answer and all incorrect ones in uniformly
// random order (Fisher-Yates, so the correct answer's position carries no
// information). Any other type is treated as a single fixed answer.
func Choices(q *domain.Question) []string {
	switch q.Type {
	case domain.TypeBoolean:
		return []string{"True", "False"}

	case domain.TypeMultiple:
		choices := make([]string, 0, len(q.IncorrectAnswers)+1)
		choices = append(choices, q.CorrectAnswer)
		choices = append(choices, q.IncorrectAnswers...)
		rand.Shuffle(len(choices), func(i, j int) {
			choices[i], choices[j] = choices[j], choices[i]
		})
		return choices

	default:
		return []string{q.CorrectAnswer}
	}
}
