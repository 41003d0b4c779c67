package question

import (
	"html"

	"github.com/ArnaudClarat/FactRush/internal/domain"
)

// Normalize decodes HTML entity escapes in the question text and every
// answer, in place. The trivia API escapes all three fields on the wire.
// Decoding is lenient (malformed sequences pass through) and idempotent, so
// normalizing twice is harmless.
func Normalize(q *domain.Question) {
	q.Text = html.UnescapeString(q.Text)
	q.CorrectAnswer = html.UnescapeString(q.CorrectAnswer)
	for i, a := range q.IncorrectAnswers {
		q.IncorrectAnswers[i] = html.UnescapeString(a)
	}
}
