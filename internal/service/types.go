// Package service defines the backend-agnostic interface for task operations.
package service

import "strings"

// Status is the board column a task belongs to.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Statuses lists every status in column order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

// Label returns the human-readable column title.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return "Pending"
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusDone
}

// ParseStatus parses a canonical status name (case-insensitive, '-' and ' ' are
// accepted in place of '_').
func ParseStatus(s string) (Status, bool) {
	st := Status(normalizeEnum(s))
	return st, st.Valid()
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ParsePriority parses a canonical priority name (case-insensitive).
func ParsePriority(s string) (Priority, bool) {
	p := Priority(normalizeEnum(s))
	return p, p.Valid()
}

func normalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// Task represents a single task record in its canonical form.
type Task struct {
	ID          string // empty until the backend assigns one
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Assignee    string
	DueDate     string // YYYY-MM-DD
}
