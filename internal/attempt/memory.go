package attempt

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps attempts in-process. The mutex provides the same
// at-most-one-commit guarantee the SQL store gets from its conditional
// update.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	byStudent map[int64]*Attempt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, byStudent: map[int64]*Attempt{}}
}

func (m *MemoryStore) GetByStudent(_ context.Context, studentID int64) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byStudent[studentID]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return *a, nil
}

func (m *MemoryStore) Create(_ context.Context, studentID int64, startedAt time.Time) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byStudent[studentID]; ok {
		return *a, nil
	}
	a := &Attempt{ID: m.nextID, StudentID: studentID, StartedAt: startedAt.UTC()}
	m.nextID++
	m.byStudent[studentID] = a
	return *a, nil
}

func (m *MemoryStore) CommitSubmission(_ context.Context, attemptID int64, score float64, elapsedSeconds int64, submittedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byStudent {
		if a.ID != attemptID {
			continue
		}
		if a.SubmittedAt != nil {
			return false, nil
		}
		t := submittedAt.UTC()
		a.Score = &score
		a.ElapsedSeconds = &elapsedSeconds
		a.SubmittedAt = &t
		return true, nil
	}
	return false, ErrNotFound
}
