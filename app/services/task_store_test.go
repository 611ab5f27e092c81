package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/app/logging"
	"tasklist/app/models"
	"tasklist/app/storage"
)

// failingKV wraps a KV and fails every Put while fail is set.
type failingKV struct {
	storage.KV
	fail bool
}

var errDiskFull = errors.New("disk full")

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errDiskFull
	}
	return f.KV.Put(ctx, key, value)
}

func newStore(t *testing.T, kv storage.KV) *TaskStore {
	t.Helper()
	s, err := NewTaskStore(context.Background(), kv, StoreOptions{})
	require.NoError(t, err)
	return s
}

func storedTasks(t *testing.T, kv storage.KV) []models.Task {
	t.Helper()
	b, ok, err := kv.Get(context.Background(), storage.TasksKey)
	require.NoError(t, err)
	require.True(t, ok, "tasks key must be written")
	tasks, err := DecodeTasks(b)
	require.NoError(t, err)
	return tasks
}

func TestTaskStore_StartsEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := newStore(t, kv)

	assert.Empty(t, s.GetAll())
	_, ok, err := kv.Get(context.Background(), storage.TasksKey)
	require.NoError(t, err)
	assert.False(t, ok, "loading must not write")
}

func TestTaskStore_AddPersistsInOrder(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := newStore(t, kv)

	require.NoError(t, s.AddTask(ctx, models.Task{ID: 1, Text: "a", Author: "Ann"}))
	require.NoError(t, s.AddTask(ctx, models.Task{ID: 2, Text: "b", Author: "Ben"}))

	all := s.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, all, storedTasks(t, kv))

	err := s.AddTask(ctx, models.Task{ID: 2, Text: "dup", Author: "Dee"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, s.GetAll(), 2)
}

func TestTaskStore_UpdateTask(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := newStore(t, kv)
	require.NoError(t, s.AddTask(ctx, models.Task{ID: 10, Text: "a", Author: "Ann"}))

	done := true
	ok, err := s.UpdateTask(ctx, 10, models.Patch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, ok)

	got, found := s.Get(10)
	require.True(t, found)
	assert.True(t, got.Completed)
	assert.Equal(t, "a", got.Text)
	assert.True(t, storedTasks(t, kv)[0].Completed)

	ok, err = s.UpdateTask(ctx, 99, models.Patch{Completed: &done})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTaskStore_GetAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemoryKV())
	require.NoError(t, s.AddTask(ctx, models.Task{ID: 1, Text: "a", Author: "Ann"}))

	all := s.GetAll()
	all[0].Text = "mutated"

	got, _ := s.Get(1)
	assert.Equal(t, "a", got.Text)
}

func TestTaskStore_RestoresFromStorage(t *testing.T) {
	ctx := context.Background()
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)

	first := newStore(t, kv)
	require.NoError(t, first.AddTask(ctx, models.Task{ID: 1, Text: "Buy milk", Author: "Alice"}))
	require.NoError(t, first.AddTask(ctx, models.Task{ID: 2, Text: "Walk dog", Author: " Bob ", Completed: true}))
	del := true
	_, err = first.UpdateTask(ctx, 1, models.Patch{Deleted: &del})
	require.NoError(t, err)

	second := newStore(t, kv)
	assert.Equal(t, first.GetAll(), second.GetAll())
}

func TestTaskStore_RollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: storage.NewMemoryKV()}
	s := newStore(t, kv)
	require.NoError(t, s.AddTask(ctx, models.Task{ID: 1, Text: "a", Author: "Ann"}))

	kv.fail = true
	err := s.AddTask(ctx, models.Task{ID: 2, Text: "b", Author: "Ben"})
	assert.ErrorIs(t, err, errDiskFull)
	assert.Len(t, s.GetAll(), 1)

	done := true
	_, err = s.UpdateTask(ctx, 1, models.Patch{Completed: &done})
	assert.ErrorIs(t, err, errDiskFull)
	got, _ := s.Get(1)
	assert.False(t, got.Completed)
}

func TestTaskStore_CorruptReset(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, storage.TasksKey, []byte(`{not json`)))

	var logs bytes.Buffer
	s, err := NewTaskStore(ctx, kv, StoreOptions{OnCorrupt: CorruptReset, Logger: logging.New(&logs)})
	require.NoError(t, err)
	assert.Empty(t, s.GetAll())
	assert.Contains(t, logs.String(), "stored_tasks_corrupt")

	require.NoError(t, s.AddTask(ctx, models.Task{ID: 1, Text: "a", Author: "Ann"}))
	assert.Len(t, storedTasks(t, kv), 1)
}

func TestTaskStore_CorruptFail(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, storage.TasksKey, []byte(`{"id":1}`)))

	_, err := NewTaskStore(ctx, kv, StoreOptions{OnCorrupt: CorruptFail})
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestTaskStore_NextID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, storage.NewMemoryKV())
	now := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, int64(1_700_000_000_000), s.NextID(now))

	require.NoError(t, s.AddTask(ctx, models.Task{ID: s.NextID(now), Text: "a", Author: "Ann"}))
	assert.Equal(t, int64(1_700_000_000_001), s.NextID(now), "same millisecond must not collide")
	assert.Equal(t, int64(1_700_000_000_005), s.NextID(now.Add(5*time.Millisecond)))
}

func TestCodec_RoundTrip(t *testing.T) {
	tasks := []models.Task{
		{ID: 3, Text: "c", Author: "Cy", Completed: true},
		{ID: 1, Text: "a", Author: "Ann", Deleted: true},
		{ID: 2, Text: "  b  ", Author: "Ben"},
	}
	b, err := EncodeTasks(tasks)
	require.NoError(t, err)
	got, err := DecodeTasks(b)
	require.NoError(t, err)
	assert.Equal(t, tasks, got)

	b, err = EncodeTasks(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	got, err = DecodeTasks([]byte("null"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCodec_WireLayout(t *testing.T) {
	b, err := EncodeTasks([]models.Task{{ID: 1700000000000, Text: "Buy milk", Author: "Alice"}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":1700000000000,"text":"Buy milk","author":"Alice","completed":false,"deleted":false}]`,
		string(b))
}

func TestParseCorruptPolicy(t *testing.T) {
	p, err := ParseCorruptPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CorruptReset, p)

	p, err = ParseCorruptPolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, CorruptFail, p)

	_, err = ParseCorruptPolicy("repair")
	assert.Error(t, err)
}
