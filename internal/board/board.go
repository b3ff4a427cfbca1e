// Package board holds the client-side task list and the active filters.
//
// State is owned by a single front end and is not safe for concurrent use.
// It never renders anything: callers re-render after each mutation.
package board

import (
	"fmt"

	"taskboard/internal/service"
)

// FilterField names one of the board filters.
type FilterField string

const (
	FilterText     FilterField = "text"
	FilterStatus   FilterField = "status"
	FilterPriority FilterField = "priority"
)

// Filters are the active board filters. Empty values match everything.
type Filters struct {
	Text     string
	Status   service.Status
	Priority service.Priority
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return f.Text != "" || f.Status != "" || f.Priority != ""
}

// State is the ordered task list plus filters.
type State struct {
	tasks   []service.Task
	Filters Filters
}

// New returns an empty State.
func New() *State {
	return &State{}
}

// Tasks returns a copy of the task list in order.
func (s *State) Tasks() []service.Task {
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *State) Len() int { return len(s.tasks) }

// ReplaceAll discards the current list and stores tasks in order.
func (s *State) ReplaceAll(tasks []service.Task) {
	s.tasks = make([]service.Task, len(tasks))
	copy(s.tasks, tasks)
}

// Upsert replaces the task with the same ID, or appends it.
func (s *State) Upsert(t service.Task) {
	if i := s.index(t.ID); i >= 0 && t.ID != "" {
		s.tasks[i] = t
		return
	}
	s.tasks = append(s.tasks, t)
}

// Remove deletes the task with the given ID. Reports whether one was removed.
func (s *State) Remove(id string) bool {
	i := s.index(id)
	if i < 0 || id == "" {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

// Find returns the task with the given ID.
func (s *State) Find(id string) (service.Task, bool) {
	if i := s.index(id); i >= 0 && id != "" {
		return s.tasks[i], true
	}
	return service.Task{}, false
}

// SetFilter sets one filter. An empty value clears it.
func (s *State) SetFilter(field FilterField, value string) error {
	switch field {
	case FilterText:
		s.Filters.Text = value
	case FilterStatus:
		if value == "" {
			s.Filters.Status = ""
			return nil
		}
		st, ok := service.ParseStatus(value)
		if !ok {
			return fmt.Errorf("invalid status filter: %s", value)
		}
		s.Filters.Status = st
	case FilterPriority:
		if value == "" {
			s.Filters.Priority = ""
			return nil
		}
		p, ok := service.ParsePriority(value)
		if !ok {
			return fmt.Errorf("invalid priority filter: %s", value)
		}
		s.Filters.Priority = p
	default:
		return fmt.Errorf("unknown filter: %s", field)
	}
	return nil
}

func (s *State) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
