// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for remote task operations.
// Every call is a single request/response cycle; implementations never retry.
// Front ends never import a backend SDK directly.
type Service interface {
	// List returns all tasks in backend order.
	List(ctx context.Context) ([]Task, error)

	// Create stores a new task. The returned Task carries the assigned ID when
	// the backend echoes the record; otherwise it is the zero Task and the
	// caller must re-fetch the list to learn the ID.
	Create(ctx context.Context, task Task) (Task, error)

	// Get returns a single task. Returns an error matching ErrNotFound when
	// the backend does not know the ID.
	Get(ctx context.Context, id string) (Task, error)

	// Update replaces the task stored under id.
	Update(ctx context.Context, id string, task Task) error

	// Delete removes the task stored under id.
	Delete(ctx context.Context, id string) error
}
