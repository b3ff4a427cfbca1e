// Package view turns board state into the board view model and HTML.
package view

import (
	"math"
	"strings"

	"taskboard/internal/board"
	"taskboard/internal/service"
)

// Column is one status bucket of the board.
type Column struct {
	Status service.Status
	Label  string
	Tasks  []service.Task
}

// Summary holds the board counters.
type Summary struct {
	Total      int
	Pending    int
	InProgress int
	Done       int
	Percent    int // completion, 0-100
}

// BoardView is everything needed to draw the board.
type BoardView struct {
	Columns []Column
	Summary Summary
	Filters board.Filters
	Empty   bool
}

// Matches reports whether t passes the filters.
func Matches(t service.Task, f board.Filters) bool {
	if f.Text != "" {
		hay := strings.ToLower(t.Title + " " + t.Description + " " + t.Assignee + " " + string(t.Priority))
		if !strings.Contains(hay, strings.ToLower(f.Text)) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Filter returns the tasks that pass f, preserving order.
func Filter(tasks []service.Task, f board.Filters) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Group buckets tasks into the three status columns, in column order.
// Tasks with an unknown status land in the pending column.
func Group(tasks []service.Task) []Column {
	cols := make([]Column, len(service.Statuses))
	idx := make(map[service.Status]int, len(service.Statuses))
	for i, st := range service.Statuses {
		cols[i] = Column{Status: st, Label: st.Label(), Tasks: []service.Task{}}
		idx[st] = i
	}
	for _, t := range tasks {
		i, ok := idx[t.Status]
		if !ok {
			i = idx[service.StatusPending]
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
	}
	return cols
}

// Summarize counts tasks per status.
func Summarize(tasks []service.Task) Summary {
	var s Summary
	s.Total = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case service.StatusInProgress:
			s.InProgress++
		case service.StatusDone:
			s.Done++
		default:
			s.Pending++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Done) * 100 / float64(s.Total)))
	}
	return s
}

// Board builds the view model for s. Counters describe the filtered subset.
func Board(s *board.State) BoardView {
	visible := Filter(s.Tasks(), s.Filters)
	return BoardView{
		Columns: Group(visible),
		Summary: Summarize(visible),
		Filters: s.Filters,
		Empty:   len(visible) == 0,
	}
}
