package attempt

import "errors"

var (
	// ErrNotFound is returned by GetStatus before any attempt exists.
	ErrNotFound = errors.New("attempt not found")
	// ErrAlreadyCompleted rejects a quiz request after submission.
	ErrAlreadyCompleted = errors.New("quiz already completed")
	// ErrSessionExpired rejects a quiz request past the hard limit.
	ErrSessionExpired = errors.New("quiz session expired")
	// ErrInvalidState rejects a submission with no in-progress attempt.
	ErrInvalidState = errors.New("no submittable attempt")
	// ErrTimeExceeded rejects a submission past hard limit plus grace.
	ErrTimeExceeded = errors.New("time limit exceeded")
	// ErrAlreadySubmitted is returned to the loser of a submission race;
	// the winner's committed result is untouched.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)
