package grading

import (
	"testing"

	"github.com/kaaratech/mcq-assessment/internal/catalog"
)

func sampleCatalog() []catalog.Question {
	return []catalog.Question{
		{ID: 1, Text: "single", Options: []string{"A", "B", "C", "D"}, Correct: []string{"B"}},
		{ID: 2, Text: "multi", Options: []string{"A", "B", "C", "D"}, Correct: []string{"A", "C"}},
		{ID: 3, Text: "triple", Options: []string{"A", "B", "C", "D"}, Correct: []string{"A", "B", "D"}},
	}
}

func TestScore(t *testing.T) {
	qs := sampleCatalog()

	tests := []struct {
		name    string
		answers []Answer
		want    float64
	}{
		{name: "empty submission", answers: nil, want: 0},
		{name: "single correct", answers: []Answer{{1, "B"}}, want: 1.0},
		{name: "single wrong", answers: []Answer{{1, "A"}}, want: 0},
		{name: "multi one correct option", answers: []Answer{{2, "A"}}, want: 0.5},
		{name: "multi other correct option", answers: []Answer{{2, "C"}}, want: 0.5},
		{name: "multi wrong option", answers: []Answer{{2, "B"}}, want: 0},
		{name: "three-correct set still flat half point", answers: []Answer{{3, "D"}}, want: 0.5},
		{name: "unknown question ignored", answers: []Answer{{99, "A"}, {1, "B"}}, want: 1.0},
		{name: "duplicates last wins", answers: []Answer{{1, "B"}, {1, "A"}}, want: 0},
		{name: "duplicates last wins correct", answers: []Answer{{1, "A"}, {1, "B"}}, want: 1.0},
		{name: "mixed", answers: []Answer{{1, "B"}, {2, "C"}, {3, "B"}}, want: 2.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.answers, qs)
			if got != tc.want {
				t.Fatalf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreIsPure(t *testing.T) {
	qs := sampleCatalog()
	answers := []Answer{{1, "B"}, {2, "A"}, {3, "D"}}
	first := Score(answers, qs)
	second := Score(answers, qs)
	if first != second {
		t.Fatalf("Score not deterministic: %v then %v", first, second)
	}
	if first != 2.0 {
		t.Fatalf("Score = %v, want 2.0", first)
	}
}
