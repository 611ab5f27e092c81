package models

import (
	"errors"
	"strings"
)

// ErrUnknownFilter is returned by ParseFilter for values outside the four filter modes.
var ErrUnknownFilter = errors.New("unknown filter")

// Task represents a single to-do item. Tasks are soft-deleted, never removed.
type Task struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Author    string `json:"author" yaml:"author"`
	Completed bool   `json:"completed" yaml:"completed"`
	Deleted   bool   `json:"deleted" yaml:"deleted"`
}

// Patch represents a partial update.
// nil pointer => "no change"
type Patch struct {
	Completed *bool `json:"completed,omitempty"`
	Deleted   *bool `json:"deleted,omitempty"`
}

// Apply returns a copy of t with the non-nil fields of p merged in.
func (t Task) Apply(p Patch) Task {
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Deleted != nil {
		t.Deleted = *p.Deleted
	}
	return t
}

// Filter selects which tasks are visible.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterIncomplete Filter = "incomplete"
	FilterDeleted    Filter = "deleted"
)

// Filters returns the filter modes in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterCompleted, FilterIncomplete, FilterDeleted}
}

// ParseFilter maps a user-supplied value to a Filter. Empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterIncomplete, FilterDeleted:
		return f, nil
	default:
		return "", ErrUnknownFilter
	}
}

// Label is the human-readable option text.
func (f Filter) Label() string {
	switch f {
	case FilterCompleted:
		return "Completed"
	case FilterIncomplete:
		return "Incomplete"
	case FilterDeleted:
		return "Deleted"
	default:
		return "All"
	}
}

// Counts are the header counters, computed over the whole store.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}
