package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"tasklist/app/logging"
	"tasklist/app/models"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskDeleted  = errors.New("task is deleted")
	ErrUndelete     = errors.New("deleted tasks cannot be restored")
)

// FormState is the visible part of the FormController.
type FormState struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Error  string `json:"error,omitempty"`
}

// State is everything the view needs, captured after one event.
type State struct {
	Tasks   []models.Task `json:"tasks"`
	Visible []models.Task `json:"visible"`
	Filter  models.Filter `json:"filter"`
	Form    FormState     `json:"form"`
	Counts  models.Counts `json:"counts"`
}

type AppOptions struct {
	Clock  Clock
	Logger *log.Logger
}

// TaskListApp is the state container for one task list. Each exported mutating
// method is one user event: it runs to completion under a single lock, then
// subscribers receive the resulting State in event order.
type TaskListApp struct {
	mu     sync.Mutex
	store  *TaskStore
	form   FormController
	filter FilterSelector
	clock  Clock
	logger *log.Logger

	// eventMu serializes whole events, subscriber callbacks included.
	eventMu sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewTaskListApp(store *TaskStore, opts AppOptions) *TaskListApp {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	return &TaskListApp{
		store:  store,
		filter: NewFilterSelector(),
		clock:  opts.Clock,
		logger: opts.Logger,
		subs:   map[int]func(State){},
	}
}

// Subscribe registers fn to receive the State after every event.
// fn may call Snapshot but must not call mutating methods.
func (a *TaskListApp) Subscribe(fn func(State)) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// Snapshot returns the current State.
func (a *TaskListApp) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

// Tasks returns the full collection, deleted tasks included.
func (a *TaskListApp) Tasks() []models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.GetAll()
}

func (a *TaskListApp) Get(id int64) (models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, ok := a.store.Get(id)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return t, nil
}

// SetInput replaces the pending form values without submitting.
func (a *TaskListApp) SetInput(text, author string) {
	_ = a.dispatch(func() error {
		a.form.Text = text
		a.form.Author = author
		return nil
	})
}

// SubmitForm sets the form input and submits it.
func (a *TaskListApp) SubmitForm(ctx context.Context, text, author string) (models.Task, SubmitResult, error) {
	var (
		created models.Task
		res     SubmitResult
	)
	err := a.dispatch(func() error {
		a.form.Text = text
		a.form.Author = author

		var err error
		created, res, err = a.form.Submit(ctx, a.store, a.clock.Now())
		if err == nil && res == SubmitCreated {
			logging.Info(a.logger, "task_created", map[string]any{"id": created.ID})
		}
		return err
	})
	return created, res, err
}

// CreateTask validates and appends a task without touching the form state.
// It returns ErrInvalidAuthor or ErrEmptyField when validation fails.
func (a *TaskListApp) CreateTask(ctx context.Context, text, author string) (models.Task, error) {
	var created models.Task
	err := a.dispatch(func() error {
		if err := Validate(text, author); err != nil {
			return err
		}
		t := models.Task{ID: a.store.NextID(a.clock.Now()), Text: text, Author: author}
		if err := a.store.AddTask(ctx, t); err != nil {
			return err
		}
		created = t
		logging.Info(a.logger, "task_created", map[string]any{"id": t.ID})
		return nil
	})
	return created, err
}

// ToggleComplete flips the completed flag of a task that is not deleted.
func (a *TaskListApp) ToggleComplete(ctx context.Context, id int64) (models.Task, error) {
	var out models.Task
	err := a.dispatch(func() error {
		t, ok := a.store.Get(id)
		if !ok {
			return ErrTaskNotFound
		}
		completed := !t.Completed
		var err error
		out, err = a.patchLocked(ctx, t, models.Patch{Completed: &completed})
		return err
	})
	return out, err
}

// Delete soft-deletes a task. Deleting an already deleted task changes nothing.
func (a *TaskListApp) Delete(ctx context.Context, id int64) (models.Task, error) {
	var out models.Task
	err := a.dispatch(func() error {
		t, ok := a.store.Get(id)
		if !ok {
			return ErrTaskNotFound
		}
		deleted := true
		var err error
		out, err = a.patchLocked(ctx, t, models.Patch{Deleted: &deleted})
		return err
	})
	return out, err
}

// Update applies p under the same rules as the UI actions: a deleted task
// accepts no further changes and cannot be un-deleted.
func (a *TaskListApp) Update(ctx context.Context, id int64, p models.Patch) (models.Task, error) {
	var out models.Task
	err := a.dispatch(func() error {
		t, ok := a.store.Get(id)
		if !ok {
			return ErrTaskNotFound
		}
		var err error
		out, err = a.patchLocked(ctx, t, p)
		return err
	})
	return out, err
}

// SelectFilter changes the active filter.
func (a *TaskListApp) SelectFilter(s string) error {
	return a.dispatch(func() error {
		return a.filter.Select(s)
	})
}

func (a *TaskListApp) patchLocked(ctx context.Context, t models.Task, p models.Patch) (models.Task, error) {
	if t.Deleted {
		switch {
		case p.Deleted != nil && !*p.Deleted:
			return t, ErrUndelete
		case p.Completed != nil && *p.Completed != t.Completed:
			return t, ErrTaskDeleted
		default:
			return t, nil
		}
	}

	next := t.Apply(p)
	if next == t {
		return t, nil
	}
	if _, err := a.store.UpdateTask(ctx, t.ID, p); err != nil {
		return t, err
	}
	logging.Info(a.logger, "task_updated", map[string]any{
		"id":        next.ID,
		"completed": next.Completed,
		"deleted":   next.Deleted,
	})
	return next, nil
}

// dispatch runs fn as one event and then notifies subscribers.
func (a *TaskListApp) dispatch(fn func() error) error {
	a.eventMu.Lock()
	defer a.eventMu.Unlock()

	a.mu.Lock()
	err := fn()
	st := a.stateLocked()
	subs := a.subscribersLocked()
	a.mu.Unlock()

	for _, s := range subs {
		s(st)
	}
	return err
}

func (a *TaskListApp) subscribersLocked() []func(State) {
	ids := make([]int, 0, len(a.subs))
	for id := range a.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]func(State), 0, len(ids))
	for _, id := range ids {
		out = append(out, a.subs[id])
	}
	return out
}

func (a *TaskListApp) stateLocked() State {
	tasks := a.store.GetAll()
	return State{
		Tasks:   tasks,
		Visible: VisibleTasks(tasks, a.filter.Filter),
		Filter:  a.filter.Filter,
		Form: FormState{
			Text:   a.form.Text,
			Author: a.form.Author,
			Error:  a.form.Error,
		},
		Counts: Summarize(tasks),
	}
}
