package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/todo-api/todo"
)

const (
	// DefaultTableName is the table used when none is configured.
	DefaultTableName = "flask-todo-dev"

	// DefaultStatusIndex is the status/created_at index name used when none is configured.
	DefaultStatusIndex = "StatusDateIndex"

	// DefaultLimit is the page size used when the requested limit is out of range.
	DefaultLimit = 50

	// MinLimit and MaxLimit bound the page size.
	MinLimit = 1
	MaxLimit = 100
)

// Attribute names of a stored todo.
const (
	AttrID          = "id"
	AttrTitle       = "title"
	AttrDescription = "description"
	AttrStatus      = "status"
	AttrCreatedAt   = "created_at"
	AttrUpdatedAt   = "updated_at"
)

// API is the subset of the DynamoDB client used by the Store.
// *dynamodb.Client satisfies it; tests inject fakes.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// ListInput defines parameters for listing todos.
type ListInput struct {
	// Status selects the index query when it is a valid status.
	// Any other value, including "", lists with a table scan.
	Status todo.Status

	// Limit is the page size. Values outside [MinLimit, MaxLimit] become DefaultLimit.
	Limit int

	// PageToken is the NextPageToken of a previous page.
	PageToken string
}

// ListResult is one page of todos.
type ListResult struct {
	Items []todo.Todo

	// Count is len(Items).
	Count int

	// ScannedCount is the number of items DynamoDB evaluated for the page.
	ScannedCount int

	// NextPageToken is set when more results remain.
	NextPageToken string
}

// NormalizeLimit clamps a requested page size, falling back to DefaultLimit.
func NormalizeLimit(limit int) int {
	if limit < MinLimit || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}
