package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"tasklist/app/models"
)

// InvalidAuthorMessage is shown below the form when the author contains a digit.
const InvalidAuthorMessage = "Author name cannot contain numbers."

var (
	ErrInvalidAuthor = errors.New(InvalidAuthorMessage)
	// ErrEmptyField marks the silent no-op submission: no task and no message.
	ErrEmptyField = errors.New("text and author are required")
)

// Validate checks a submission. The digit check runs first, so an author like
// "2" with empty text is an ErrInvalidAuthor, not an ErrEmptyField.
func Validate(text, author string) error {
	if containsDigit(author) {
		return ErrInvalidAuthor
	}
	if strings.TrimSpace(text) == "" || strings.TrimSpace(author) == "" {
		return ErrEmptyField
	}
	return nil
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// FormController holds the pending submission and its error message.
type FormController struct {
	Text   string
	Author string
	Error  string
}

// SubmitResult is the outcome of a FormController submission.
type SubmitResult int

const (
	SubmitCreated SubmitResult = iota
	SubmitInvalidAuthor
	SubmitIgnored
)

// Check applies Validate to the current input and updates Error.
// The inputs are left untouched on any failure.
func (f *FormController) Check() SubmitResult {
	switch err := Validate(f.Text, f.Author); {
	case errors.Is(err, ErrInvalidAuthor):
		f.Error = InvalidAuthorMessage
		return SubmitInvalidAuthor
	case errors.Is(err, ErrEmptyField):
		return SubmitIgnored
	default:
		return SubmitCreated
	}
}

// Reset clears all three fields after a task was created.
func (f *FormController) Reset() {
	f.Text = ""
	f.Author = ""
	f.Error = ""
}

// Submit validates the input and, when it passes, appends a new task to store
// using the values exactly as typed, then clears the form.
// A persistence error leaves the form as it was.
func (f *FormController) Submit(ctx context.Context, store *TaskStore, now time.Time) (models.Task, SubmitResult, error) {
	if res := f.Check(); res != SubmitCreated {
		return models.Task{}, res, nil
	}

	t := models.Task{
		ID:     store.NextID(now),
		Text:   f.Text,
		Author: f.Author,
	}
	if err := store.AddTask(ctx, t); err != nil {
		return models.Task{}, SubmitCreated, err
	}
	f.Reset()
	return t, SubmitCreated, nil
}
