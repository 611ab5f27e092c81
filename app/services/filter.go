package services

import (
	"tasklist/app/models"
)

// FilterSelector holds the active filter mode.
type FilterSelector struct {
	Filter models.Filter
}

func NewFilterSelector() FilterSelector {
	return FilterSelector{Filter: models.FilterAll}
}

// Select parses s and makes it the active filter. The filter is unchanged on error.
func (f *FilterSelector) Select(s string) error {
	filter, err := models.ParseFilter(s)
	if err != nil {
		return err
	}
	f.Filter = filter
	return nil
}

// Matches reports whether t is visible under filter.
func Matches(t models.Task, filter models.Filter) bool {
	switch filter {
	case models.FilterCompleted:
		return t.Completed && !t.Deleted
	case models.FilterIncomplete:
		return !t.Completed && !t.Deleted
	case models.FilterDeleted:
		return t.Deleted
	default:
		return !t.Deleted
	}
}

// VisibleTasks returns the tasks visible under filter, in store order.
func VisibleTasks(tasks []models.Task, filter models.Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, filter) {
			out = append(out, t)
		}
	}
	return out
}

// Summarize counts non-deleted and completed non-deleted tasks, ignoring the active filter.
func Summarize(tasks []models.Task) models.Counts {
	var c models.Counts
	for _, t := range tasks {
		if t.Deleted {
			continue
		}
		c.Total++
		if t.Completed {
			c.Completed++
		}
	}
	return c
}
