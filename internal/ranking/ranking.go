package ranking

import (
	"math"
	"sort"

	"github.com/kaaratech/mcq-assessment/internal/attempt"
	"github.com/kaaratech/mcq-assessment/internal/identity"
)

// Composite weights and the speed curve are fixed policy; the quiz
// denominator tracks the live catalog size.
const (
	quizWeight     = 0.5
	academicWeight = 0.3
	speedWeight    = 0.2

	maxTimeSeconds = 1200.0
)

// Entry is one row of the administrative listing. Attempt and
// Normalized are nil for students who never started or whose inputs are
// incomplete; they are omitted, never defaulted to zero.
type Entry struct {
	Student    identity.Student `json:"student"`
	Attempt    *attempt.Attempt `json:"attempt"`
	Normalized *float64         `json:"normalized_score"`
}

// Normalize computes the composite display score. ok is false when the
// attempt is missing score or elapsed time, or any academic attribute
// is absent.
func Normalize(a attempt.Attempt, s identity.Student, totalQuestions int) (float64, bool) {
	if a.Score == nil || a.ElapsedSeconds == nil || totalQuestions <= 0 {
		return 0, false
	}
	if s.CGPA == nil || s.TenthPct == nil || s.TwelfthPct == nil {
		return 0, false
	}

	timePenalty := math.Max(0, (float64(*a.ElapsedSeconds)-0.25*maxTimeSeconds)/(0.75*maxTimeSeconds))
	// Can exceed 100 for very fast finishers; accepted as-is.
	speedScore := (1 - timePenalty) * 100
	academicScore := (*s.CGPA*10 + *s.TenthPct + *s.TwelfthPct) / 3
	quizScore := *a.Score / float64(totalQuestions) * 100

	v := quizScore*quizWeight + academicScore*academicWeight + speedScore*speedWeight
	return math.Round(v*100) / 100, true
}

// Sort orders entries for the administrative listing: raw quiz score
// descending, students without a committed score last, ties broken by
// full name ascending. Normalized is display-only and never consulted.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		si := rawScore(entries[i])
		sj := rawScore(entries[j])
		switch {
		case si == nil && sj == nil:
			return entries[i].Student.FullName < entries[j].Student.FullName
		case si == nil:
			return false
		case sj == nil:
			return true
		case *si != *sj:
			return *si > *sj
		default:
			return entries[i].Student.FullName < entries[j].Student.FullName
		}
	})
}

func rawScore(e Entry) *float64 {
	if e.Attempt == nil {
		return nil
	}
	return e.Attempt.Score
}
