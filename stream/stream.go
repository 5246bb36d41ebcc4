// Package stream consumes the todo table's DynamoDB stream and logs todo
// lifecycle changes.
package stream

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	log "github.com/sirupsen/logrus"

	"github.com/jacentio/todo-api/store"
	"github.com/jacentio/todo-api/todo"
)

var (
	errMissingImage = errors.New("stream image missing")
	errMissingID    = errors.New("stream image has no id")
)

// ChangeKind classifies a stream record.
type ChangeKind int

const (
	// Unknown is a record this package does not understand.
	Unknown ChangeKind = iota
	Created
	Updated
	// StatusChanged is an update that moved the todo to a different status.
	StatusChanged
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case StatusChanged:
		return "status_changed"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is a decoded todo change.
type Change struct {
	Kind ChangeKind

	// Todo is the new image, or the old image for Deleted.
	Todo todo.Todo

	// Previous is the old image of an update. It is nil when the stream
	// view type does not include old images.
	Previous *todo.Todo
}

// Classify decodes a stream record into a Change.
func Classify(record events.DynamoDBEventRecord) (Change, error) {
	switch record.EventName {
	case string(events.DynamoDBOperationTypeInsert):
		t, err := decodeTodo(record.Change.NewImage)
		if err != nil {
			return Change{}, err
		}
		return Change{Kind: Created, Todo: t}, nil

	case string(events.DynamoDBOperationTypeModify):
		t, err := decodeTodo(record.Change.NewImage)
		if err != nil {
			return Change{}, err
		}
		c := Change{Kind: Updated, Todo: t}
		if len(record.Change.OldImage) > 0 {
			prev, err := decodeTodo(record.Change.OldImage)
			if err != nil {
				return Change{}, err
			}
			c.Previous = &prev
			if prev.Status != t.Status {
				c.Kind = StatusChanged
			}
		}
		return c, nil

	case string(events.DynamoDBOperationTypeRemove):
		image := record.Change.OldImage
		if len(image) == 0 {
			// KEYS_ONLY streams carry only the key.
			id := getStringAttr(record.Change.Keys, store.AttrID)
			if id == "" {
				return Change{}, errMissingID
			}
			return Change{Kind: Deleted, Todo: todo.Todo{ID: id}}, nil
		}
		t, err := decodeTodo(image)
		if err != nil {
			return Change{}, err
		}
		return Change{Kind: Deleted, Todo: t}, nil
	}

	return Change{Kind: Unknown}, nil
}

// Handler logs todo changes from a DynamoDB stream.
type Handler struct {
	logger *log.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Handler{logger: logger}
}

// HandleChanges processes a batch of stream records. Malformed records are
// logged and skipped so one bad image never blocks the shard. It is
// designed to be used as an AWS Lambda handler.
func (h *Handler) HandleChanges(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := h.logger.WithFields(log.Fields{
			"event_id":   record.EventID,
			"event_name": record.EventName,
		})

		change, err := Classify(record)
		if err != nil {
			entry.WithError(err).Warn("skipping malformed stream record")
			continue
		}
		if change.Kind == Unknown {
			entry.Debug("ignoring stream record")
			continue
		}

		fields := log.Fields{
			"change":  change.Kind.String(),
			"todo_id": change.Todo.ID,
		}
		if change.Todo.Status != "" {
			fields["status"] = string(change.Todo.Status)
		}
		if change.Kind == StatusChanged {
			fields["previous_status"] = string(change.Previous.Status)
		}
		entry.WithFields(fields).Info("todo changed")
	}
	return nil
}
