package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/aizithy/audio-extractor-cloud/internal/shared"
)

// Store is the concurrent task registry. It owns every record: callers get
// clones, and mutation happens only through Update under the store's lock.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{tasks: map[string]*Task{}}
}

// Create allocates a new pending record for the given request parameters
// and returns a clone of it. Creation never fails.
func (s *Store) Create(req Request) *Task {
	task := &Task{
		ID:           shared.GenerateID(),
		Status:       StatusPending,
		Progress:     0,
		Message:      "task created, waiting for a worker",
		CreatedAt:    time.Now(),
		URL:          req.URL,
		ExtractAudio: req.ExtractAudio,
		KeepVideo:    req.KeepVideo,
		AudioFormat:  req.AudioFormat,
		AudioQuality: req.AudioQuality,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	return task.Clone()
}

// Get returns a clone of the record, or [shared.ErrNotFound].
func (s *Store) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: task %s", shared.ErrNotFound, id)
	}
	return task.Clone(), nil
}

// Update atomically applies fn to the record. Records evicted before their
// job finished report [shared.ErrNotFound] and the update is a no-op.
func (s *Store) Update(id string, fn func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %s", shared.ErrNotFound, id)
	}
	fn(task)
	return nil
}

// List returns clones of all records, optionally filtered by status.
// Order is unspecified.
func (s *Store) List(filter Status) []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter != "" && task.Status != filter {
			continue
		}
		out = append(out, task.Clone())
	}
	return out
}

// Delete removes the record. The caller owns any associated file cleanup.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("%w: task %s", shared.ErrNotFound, id)
	}
	delete(s.tasks, id)
	return nil
}

// Len reports the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
