package board

import "taskboard/internal/service"

// Mutation is a state change returned by an event handler and applied by the
// front end that owns the State.
type Mutation func(*State)

// Apply runs m against s. A nil Mutation is a no-op.
func (m Mutation) Apply(s *State) {
	if m != nil {
		m(s)
	}
}

// ReplaceAll returns a Mutation that replaces the whole list.
func ReplaceAll(tasks []service.Task) Mutation {
	return func(s *State) { s.ReplaceAll(tasks) }
}

// Upsert returns a Mutation that replaces or appends t.
func Upsert(t service.Task) Mutation {
	return func(s *State) { s.Upsert(t) }
}

// Remove returns a Mutation that removes the task with id.
func Remove(id string) Mutation {
	return func(s *State) { s.Remove(id) }
}

// SetFilters returns a Mutation that replaces all filters at once.
func SetFilters(f Filters) Mutation {
	return func(s *State) { s.Filters = f }
}

// Txn is an optimistic change to one task that can be undone.
type Txn struct {
	id   string
	prev service.Task
}

// Begin snapshots the task with id, then applies change to it in place.
// Returns false if no such task exists.
func (s *State) Begin(id string, change func(*service.Task)) (*Txn, bool) {
	i := s.index(id)
	if i < 0 || id == "" {
		return nil, false
	}
	tx := &Txn{id: id, prev: s.tasks[i]}
	change(&s.tasks[i])
	return tx, true
}

// Rollback undoes the change if the task is still present. restore copies
// the affected fields from the snapshot; nil restores the whole record.
func (tx *Txn) Rollback(s *State, restore func(cur *service.Task, prev service.Task)) {
	i := s.index(tx.id)
	if i < 0 {
		return
	}
	if restore == nil {
		s.tasks[i] = tx.prev
		return
	}
	restore(&s.tasks[i], tx.prev)
}

// Previous returns the task as it was before the change.
func (tx *Txn) Previous() service.Task { return tx.prev }
