package api

import (
	"context"
	"time"

	"github.com/jacentio/todo-api/store"
	"github.com/jacentio/todo-api/todo"
)

// Store abstracts persistence for handlers. *store.Store implements it.
type Store interface {
	TableName() string
	Get(ctx context.Context, id string) (todo.Todo, error)
	Put(ctx context.Context, t todo.Todo) error
	UpdateFields(ctx context.Context, id string, f todo.Fields, updatedAt time.Time) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, input store.ListInput) (store.ListResult, error)
	Ping(ctx context.Context) error
}

var _ Store = (*store.Store)(nil)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Table     string `json:"table"`
	Database  string `json:"database"`
	Error     string `json:"error,omitempty"`
}

type listResponse struct {
	Todos        []todo.Todo `json:"todos"`
	Count        int         `json:"count"`
	TotalScanned int         `json:"total_scanned"`
	StatusFilter *string     `json:"status_filter"`
	NextToken    string      `json:"next_token,omitempty"`
}
