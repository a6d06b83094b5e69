package grading

import "github.com/kaaratech/mcq-assessment/internal/catalog"

// Answer is one (question, selected option label) pair from a submission.
type Answer struct {
	QuestionID int64  `json:"question_id"`
	Selected   string `json:"selected_answer"`
}

// Points awarded per correct selection.
const (
	singleAnswerPoints = 1.0
	// Flat partial credit for any multi-answer question, regardless of
	// how many correct options it has.
	multiAnswerPoints = 0.5
)

// Score grades a submission against the catalog. It is pure and
// deterministic: identical inputs always yield the identical score,
// which re-grading and audits rely on.
//
// Rules:
//   - answers referencing unknown question ids are ignored, not errors
//   - duplicate answers for the same question: last one wins
//   - selected label in the correct set: +1.0 when the set has a single
//     entry, +0.5 otherwise
//   - no upper clamp beyond the natural catalog size
func Score(answers []Answer, questions []catalog.Question) float64 {
	keys := make(map[int64][]string, len(questions))
	for _, q := range questions {
		keys[q.ID] = q.Correct
	}

	// Collapse duplicates, last-wins.
	selected := make(map[int64]string, len(answers))
	for _, a := range answers {
		if _, known := keys[a.QuestionID]; !known {
			continue
		}
		selected[a.QuestionID] = a.Selected
	}

	total := 0.0
	for qid, label := range selected {
		correct := keys[qid]
		if !contains(correct, label) {
			continue
		}
		if len(correct) == 1 {
			total += singleAnswerPoints
		} else {
			total += multiAnswerPoints
		}
	}
	return total
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
