package task

import (
	"context"
	"sync"

	"github.com/nao1215/contactscan/internal/model"
)

// MemoryStore is an in-memory Store. It backs runs that disable the
// SQLite database: task state then lives only for the process lifetime,
// which is all the submitting CLI needs to poll its own submissions.
//
// Design decision: We clone tasks on every read and write rather than
// sharing pointers because:
//  1. Workers mutate the task they dequeued; shared pointers would leak
//     those writes into earlier Get results
//  2. Clone-on-access mirrors the serialization boundary of the SQLite
//     store, so both Store implementations behave identically
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*model.Task)}
}

// SaveTask inserts a new task record.
func (s *MemoryStore) SaveTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

// UpdateTask updates an existing task. It returns model.ErrTaskNotFound
// when the task was never saved.
func (s *MemoryStore) UpdateTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return model.ErrTaskNotFound
	}
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

// GetTask retrieves a task by ID.
func (s *MemoryStore) GetTask(_ context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, model.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}
