package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"tasklist/app/logging"
	"tasklist/app/models"
	"tasklist/app/storage"
)

var (
	ErrDuplicateID  = errors.New("task id already exists")
	ErrCorruptState = errors.New("stored tasks are unreadable")
)

// CorruptPolicy decides what happens when the stored collection cannot be decoded.
type CorruptPolicy string

const (
	// CorruptReset logs the decode error and starts with an empty store.
	// The next mutation overwrites the unreadable value.
	CorruptReset CorruptPolicy = "reset"
	// CorruptFail makes NewTaskStore return ErrCorruptState.
	CorruptFail CorruptPolicy = "fail"
)

// ParseCorruptPolicy maps a config value to a policy; empty means CorruptReset.
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch p := CorruptPolicy(s); p {
	case "":
		return CorruptReset, nil
	case CorruptReset, CorruptFail:
		return p, nil
	default:
		return "", fmt.Errorf("unknown corrupt-data policy %q", s)
	}
}

type StoreOptions struct {
	OnCorrupt CorruptPolicy
	Logger    *log.Logger
}

// TaskStore is the ordered task collection. Every mutation writes the full
// collection to the KV under storage.TasksKey before returning.
//
// TaskStore is not safe for concurrent use; TaskListApp serializes access.
type TaskStore struct {
	kv     storage.KV
	logger *log.Logger
	tasks  []models.Task
}

// EncodeTasks serializes tasks as a JSON array. A nil slice encodes as [].
func EncodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return json.Marshal(tasks)
}

// DecodeTasks parses a JSON array of tasks. JSON null decodes to an empty slice.
func DecodeTasks(b []byte) ([]models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// NewTaskStore restores the collection from kv, or starts empty when nothing is stored.
func NewTaskStore(ctx context.Context, kv storage.KV, opts StoreOptions) (*TaskStore, error) {
	s := &TaskStore{kv: kv, logger: opts.Logger, tasks: []models.Task{}}

	b, ok, err := kv.Get(ctx, storage.TasksKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", storage.TasksKey, err)
	}
	if !ok {
		return s, nil
	}

	tasks, err := DecodeTasks(b)
	if err != nil {
		if opts.OnCorrupt == CorruptFail {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		logging.Warn(s.logger, "stored_tasks_corrupt", map[string]any{
			"key":    storage.TasksKey,
			"error":  err.Error(),
			"policy": string(CorruptReset),
		})
		return s, nil
	}
	s.tasks = tasks
	return s, nil
}

// GetAll returns a copy of the collection in insertion order.
func (s *TaskStore) GetAll() []models.Task {
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with id.
func (s *TaskStore) Get(id int64) (models.Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// Len is the number of tasks including soft-deleted ones.
func (s *TaskStore) Len() int { return len(s.tasks) }

// NextID returns now in milliseconds, bumped past the largest existing id when needed.
func (s *TaskStore) NextID(now time.Time) int64 {
	id := now.UnixMilli()
	for _, t := range s.tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

// AddTask appends t and persists.
func (s *TaskStore) AddTask(ctx context.Context, t models.Task) error {
	if s.indexOf(t.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, t.ID)
	}

	prev := s.tasks
	next := make([]models.Task, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, t)

	return s.commit(ctx, prev, next)
}

// UpdateTask replaces the task with id by a patched copy and persists.
// It reports false, and writes nothing, when no task has that id.
func (s *TaskStore) UpdateTask(ctx context.Context, id int64, p models.Patch) (bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	prev := s.tasks
	next := make([]models.Task, len(prev))
	copy(next, prev)
	next[i] = next[i].Apply(p)

	if err := s.commit(ctx, prev, next); err != nil {
		return false, err
	}
	return true, nil
}

// commit installs next and persists it. On a failed write prev is restored.
func (s *TaskStore) commit(ctx context.Context, prev, next []models.Task) error {
	s.tasks = next
	if err := s.persist(ctx); err != nil {
		s.tasks = prev
		logging.Error(s.logger, "persist_tasks_failed", map[string]any{
			"key":   storage.TasksKey,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (s *TaskStore) persist(ctx context.Context) error {
	b, err := EncodeTasks(s.tasks)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, storage.TasksKey, b); err != nil {
		return fmt.Errorf("persist %s: %w", storage.TasksKey, err)
	}
	return nil
}

func (s *TaskStore) indexOf(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
