// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"taskboard/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are assigned from a counter, as a database-backed service would.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int

	// ReturnCreated makes Create echo the stored record. When false, Create
	// returns a zero Task and callers must re-fetch.
	ReturnCreated bool

	// Error injection for testing
	ListErr   error
	CreateErr error
	GetErr    error
	UpdateErr error
	DeleteErr error

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:        1,
		ReturnCreated: true,
		Calls:         make(map[string]int),
	}
}

// AddTask stores a task as-is. An empty ID is assigned from the counter.
func (f *FakeService) AddTask(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		t.ID = strconv.Itoa(f.nextID)
		f.nextID++
	}
	f.tasks = append(f.tasks, t)
	return t
}

// Stored returns a copy of the stored tasks.
func (f *FakeService) Stored() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// CallCount returns the number of calls to method.
func (f *FakeService) CallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[method]
}

// TotalCalls returns the number of calls to any method.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.Calls[method]++
	f.mu.Unlock()
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context) ([]service.Task, error) {
	f.record("List")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Stored(), nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, task service.Task) (service.Task, error) {
	f.record("Create")
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	task.ID = ""
	created := f.AddTask(task)
	if !f.ReturnCreated {
		return service.Task{}, nil
	}
	return created, nil
}

// Get implements service.Service.
func (f *FakeService) Get(ctx context.Context, id string) (service.Task, error) {
	f.record("Get")
	if f.GetErr != nil {
		return service.Task{}, f.GetErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, notFound("get")
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, id string, task service.Task) error {
	f.record("Update")
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			task.ID = id
			f.tasks[i] = task
			return nil
		}
	}
	return notFound("update")
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id string) error {
	f.record("Delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound("delete")
}

func notFound(op string) error {
	return &service.ServiceError{Op: op, StatusCode: http.StatusNotFound}
}

// ErrUnavailable is a ready-made 503 for error injection.
var ErrUnavailable = &service.ServiceError{Op: "test", StatusCode: http.StatusServiceUnavailable}
