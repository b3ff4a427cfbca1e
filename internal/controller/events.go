package controller

import (
	"taskboard/internal/board"
	"taskboard/internal/service"
)

// Level is the severity of a Notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   Level
	Message string
	Err     error // underlying failure, if any
}

// Notifier receives notices. Front ends show them briefly and move on.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// FilterEvent changes one filter.
type FilterEvent struct {
	Field board.FilterField
	Value string
}

// SavedEvent reports a task the service accepted.
type SavedEvent struct {
	Task    service.Task
	Created bool
}

// DeletedEvent reports a task the service removed.
type DeletedEvent struct {
	ID string
}

// HandleFilter validates ev against the current filters and returns the
// mutation that applies it.
func HandleFilter(s *board.State, ev FilterEvent) (board.Mutation, error) {
	tmp := board.New()
	tmp.Filters = s.Filters
	if err := tmp.SetFilter(ev.Field, ev.Value); err != nil {
		return nil, err
	}
	return board.SetFilters(tmp.Filters), nil
}

// HandleLoaded replaces the board with a fresh list.
func HandleLoaded(tasks []service.Task) board.Mutation {
	return board.ReplaceAll(tasks)
}

// HandleSaved patches the saved task into the board by id.
func HandleSaved(ev SavedEvent) board.Mutation {
	return board.Upsert(ev.Task)
}

// HandleDeleted removes the deleted task from the board.
func HandleDeleted(ev DeletedEvent) board.Mutation {
	return board.Remove(ev.ID)
}
