package store

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrNotFound is returned when no todo exists with the given id.
	ErrNotFound = errors.New("todo-api: todo not found")

	// ErrInvalidPageToken is returned when a list page token cannot be decoded.
	ErrInvalidPageToken = errors.New("todo-api: invalid pagination token")
)

// ErrorKind classifies a DynamoDB failure.
type ErrorKind int

const (
	// Other covers throttling, network failures and anything unclassified.
	Other ErrorKind = iota

	// TableMissing means the table or index does not exist.
	TableMissing

	// InvalidRequest means DynamoDB rejected the request parameters.
	InvalidRequest

	// ConditionFailed means a condition expression evaluated to false.
	ConditionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case TableMissing:
		return "table_missing"
	case InvalidRequest:
		return "invalid_request"
	case ConditionFailed:
		return "condition_failed"
	default:
		return "other"
	}
}

// Error is a classified store failure.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("todo-api: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a classified store error.
func KindOf(err error) (ErrorKind, bool) {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind, true
	}
	return Other, false
}

// classify wraps a DynamoDB error in an *Error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kindFor(err), Err: err}
}

func kindFor(err error) ErrorKind {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return TableMissing
	}
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ConditionFailed
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException":
			return TableMissing
		case "ValidationException", "SerializationException":
			return InvalidRequest
		case "ConditionalCheckFailedException":
			return ConditionFailed
		}
	}
	return Other
}
