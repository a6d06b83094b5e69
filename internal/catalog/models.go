package catalog

import "context"

// Question is the canonical, immutable catalog entry. Correct holds the
// set of correct option labels (cardinality >= 1); multi-correct
// questions are graded with flat partial credit.
type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"question_text"`
	Options []string `json:"options"`
	Correct []string `json:"correct_answers,omitempty"`
}

// Source supplies the canonical question set, answer keys included.
// Callers that serve students must strip keys via StudentView.
type Source interface {
	All(ctx context.Context) ([]Question, error)
}

// StudentView returns a copy of the questions with answer keys removed.
func StudentView(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.Correct = nil
		out[i] = q
	}
	return out
}
