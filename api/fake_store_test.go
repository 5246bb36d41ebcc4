package api_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jacentio/todo-api/store"
	"github.com/jacentio/todo-api/todo"
)

// fakeStore is an in-memory Store. Errors set on it are returned by the
// matching method instead of touching the map.
type fakeStore struct {
	mu    sync.Mutex
	items map[string]todo.Todo

	getErr    error
	putErr    error
	updateErr error
	deleteErr error
	listErr   error
	pingErr   error

	lastList store.ListInput
}

func newFakeStore(items ...todo.Todo) *fakeStore {
	fs := &fakeStore{items: make(map[string]todo.Todo)}
	for _, t := range items {
		fs.items[t.ID] = t
	}
	return fs
}

func (f *fakeStore) TableName() string { return "todos-test" }

func (f *fakeStore) Get(_ context.Context, id string) (todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return todo.Todo{}, f.getErr
	}
	t, ok := f.items[id]
	if !ok {
		return todo.Todo{}, store.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) Put(_ context.Context, t todo.Todo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.items[t.ID] = t
	return nil
}

func (f *fakeStore) UpdateFields(_ context.Context, id string, fields todo.Fields, updatedAt time.Time) (todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return todo.Todo{}, f.updateErr
	}
	t, ok := f.items[id]
	if !ok {
		return todo.Todo{}, store.ErrNotFound
	}
	t = t.Apply(fields, updatedAt)
	f.items[id] = t
	return t, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) List(_ context.Context, input store.ListInput) (store.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = input
	if f.listErr != nil {
		return store.ListResult{}, f.listErr
	}

	items := []todo.Todo{}
	for _, t := range f.items {
		if input.Status != "" && t.Status != input.Status {
			continue
		}
		items = append(items, t)
	}
	slices.SortFunc(items, func(a, b todo.Todo) int {
		return strings.Compare(b.CreatedAt, a.CreatedAt)
	})

	scanned := len(items)
	if len(items) > input.Limit {
		items = items[:input.Limit]
	}
	return store.ListResult{Items: items, Count: len(items), ScannedCount: scanned}, nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}
