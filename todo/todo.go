// Package todo defines the todo entity and the validation rules applied to
// client payloads before they reach the store.
package todo

import "time"

// Status represents the state of a todo.
type Status string

const (
	// StatusPending is the default status of a new todo.
	StatusPending Status = "pending"

	// StatusCompleted marks a todo as done.
	StatusCompleted Status = "completed"

	// StatusArchived hides a todo from day-to-day lists.
	StatusArchived Status = "archived"
)

const (
	// MaxTitleLength is the maximum title length in characters.
	MaxTitleLength = 200

	// MaxDescriptionLength is the maximum description length in characters.
	MaxDescriptionLength = 1000

	// TimestampLayout is the fixed-width ISO 8601 layout used for created_at
	// and updated_at. Fixed width keeps lexical order equal to time order,
	// which the status index relies on.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusCompleted, StatusArchived}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Todo is the persisted todo record.
type Todo struct {
	ID          string `json:"id" dynamodbav:"id"`
	Title       string `json:"title" dynamodbav:"title"`
	Description string `json:"description" dynamodbav:"description"`
	Status      Status `json:"status" dynamodbav:"status"`
	CreatedAt   string `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   string `json:"updated_at" dynamodbav:"updated_at"`
}

// Fields holds normalized, validated field values. A nil field is absent
// and must be left untouched by an update.
type Fields struct {
	Title       *string
	Description *string
	Status      *Status
}

// IsEmpty reports whether no field is set.
func (f Fields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Status == nil
}

// Timestamp formats t in TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// New builds a todo from fields validated for creation. Missing optional
// fields fall back to their defaults.
func New(id string, f Fields, now time.Time) Todo {
	ts := Timestamp(now)
	t := Todo{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	return t
}

// Apply returns a copy of t with the set fields replaced and UpdatedAt
// refreshed. ID and CreatedAt are never changed.
func (t Todo) Apply(f Fields, now time.Time) Todo {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	t.UpdatedAt = Timestamp(now)
	return t
}
