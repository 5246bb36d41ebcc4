package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jacentio/todo-api/internal/pagetoken"
	"github.com/jacentio/todo-api/todo"
)

// Store provides DynamoDB operations for todos. It is safe for concurrent
// use; share one instance per process.
type Store struct {
	client API
	config Config
	tracer trace.Tracer
}

// New creates a new Store instance.
func New(client API, config Config, opts ...Option) *Store {
	config.validate()

	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Store{
		client: client,
		config: config,
		tracer: o.tracerProvider.Tracer(tracerName),
	}
}

// TableName returns the configured table name.
func (s *Store) TableName() string {
	return s.config.TableName
}

// Get retrieves a todo by id, returning ErrNotFound if it doesn't exist.
// An empty id is never sent to DynamoDB.
func (s *Store) Get(ctx context.Context, id string) (t todo.Todo, err error) {
	ctx, span := s.startSpan(ctx, "Get", attribute.String("todo.id", id))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return todo.Todo{}, ErrNotFound
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       itemKey(id),
	})
	if err != nil {
		return todo.Todo{}, classify("get", err)
	}
	if len(result.Item) == 0 {
		return todo.Todo{}, ErrNotFound
	}

	return unmarshalTodo("get", result.Item)
}

// Put writes a todo, replacing any existing item with the same id.
func (s *Store) Put(ctx context.Context, t todo.Todo) (err error) {
	ctx, span := s.startSpan(ctx, "Put",
		attribute.String("todo.id", t.ID),
		attribute.String("todo.status", string(t.Status)),
	)
	defer func() { endSpan(span, err) }()

	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return &Error{Op: "put", Kind: Other, Err: fmt.Errorf("marshal todo: %w", err)}
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.TableName),
		Item:      item,
	})
	return classify("put", err)
}

// UpdateFields sets the fields present in f and refreshes updated_at,
// returning the updated todo. id and created_at are never modified. The
// write is conditioned on the item existing so that a todo deleted
// concurrently is not recreated as a partial item; that case returns
// ErrNotFound.
func (s *Store) UpdateFields(ctx context.Context, id string, f todo.Fields, updatedAt time.Time) (t todo.Todo, err error) {
	ctx, span := s.startSpan(ctx, "UpdateFields", attribute.String("todo.id", id))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return todo.Todo{}, ErrNotFound
	}

	expr := buildUpdateExpression(fieldAttributes(f), todo.Timestamp(updatedAt))
	expr.Names["#id"] = AttrID

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       itemKey(id),
		UpdateExpression:          aws.String(expr.Expression),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  expr.Names,
		ExpressionAttributeValues: expr.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return todo.Todo{}, ErrNotFound
		}
		return todo.Todo{}, classify("update", err)
	}

	return unmarshalTodo("update", result.Attributes)
}

// Delete removes a todo. It returns ErrNotFound if nothing was deleted.
// The delete is not conditioned; callers check existence first.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete", attribute.String("todo.id", id))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return ErrNotFound
	}

	result, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.config.TableName),
		Key:          itemKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return classify("delete", err)
	}
	if len(result.Attributes) == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of todos. A valid status queries the status index
// newest first. Otherwise the table is scanned and only the returned page
// is sorted by created_at descending; ordering across pages is not global.
func (s *Store) List(ctx context.Context, input ListInput) (res ListResult, err error) {
	limit := NormalizeLimit(input.Limit)
	ctx, span := s.startSpan(ctx, "List",
		attribute.String("todo.status", string(input.Status)),
		attribute.Int("db.limit", limit),
		attribute.Bool("db.page_token", input.PageToken != ""),
	)
	defer func() { endSpan(span, err) }()

	startKey, err := pagetoken.Decode(input.PageToken)
	if err != nil {
		return ListResult{}, ErrInvalidPageToken
	}

	var (
		raw          []map[string]types.AttributeValue
		lastKey      map[string]types.AttributeValue
		scannedCount int32
	)

	useIndex := input.Status.IsValid()
	if useIndex {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.config.TableName),
			IndexName:              aws.String(s.config.StatusIndex),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": AttrStatus,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(input.Status)},
			},
			Limit:             aws.Int32(int32(limit)),
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return ListResult{}, classify("query", err)
		}
		raw, lastKey, scannedCount = out.Items, out.LastEvaluatedKey, out.ScannedCount
	} else {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.config.TableName),
			Limit:             aws.Int32(int32(limit)),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return ListResult{}, classify("scan", err)
		}
		raw, lastKey, scannedCount = out.Items, out.LastEvaluatedKey, out.ScannedCount
	}

	items := make([]todo.Todo, 0, len(raw))
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return ListResult{}, &Error{Op: "list", Kind: Other, Err: fmt.Errorf("unmarshal todos: %w", err)}
	}
	if items == nil {
		items = []todo.Todo{}
	}

	if !useIndex {
		slices.SortStableFunc(items, func(a, b todo.Todo) int {
			return strings.Compare(b.CreatedAt, a.CreatedAt)
		})
	}

	next, err := pagetoken.Encode(lastKey)
	if err != nil {
		return ListResult{}, &Error{Op: "list", Kind: Other, Err: err}
	}

	span.SetAttributes(attribute.Int("db.count", len(items)))

	return ListResult{
		Items:         items,
		Count:         len(items),
		ScannedCount:  int(scannedCount),
		NextPageToken: next,
	}, nil
}

// Ping checks that the table is reachable and usable.
func (s *Store) Ping(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Ping")
	defer func() { endSpan(span, err) }()

	result, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.config.TableName),
	})
	if err != nil {
		return classify("ping", err)
	}
	if result.Table == nil {
		return &Error{Op: "ping", Kind: Other, Err: fmt.Errorf("table %s has no description", s.config.TableName)}
	}

	switch result.Table.TableStatus {
	case types.TableStatusActive, types.TableStatusUpdating:
		return nil
	default:
		return &Error{
			Op:   "ping",
			Kind: Other,
			Err:  fmt.Errorf("table %s is not active (status: %s)", s.config.TableName, result.Table.TableStatus),
		}
	}
}

// Init validates the table schema: the table must exist with partition key
// "id", and the status index must be keyed on status and created_at.
//
// Pass skipSchemaValidation true to return immediately, which is useful
// when the schema is managed and verified elsewhere.
func (s *Store) Init(ctx context.Context, skipSchemaValidation bool) error {
	if skipSchemaValidation {
		return nil
	}

	response, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.config.TableName),
	})
	if err != nil {
		var notFoundError *types.ResourceNotFoundException
		if errors.As(err, &notFoundError) {
			return fmt.Errorf("table %s does not exist", s.config.TableName)
		}
		return fmt.Errorf("failed to describe table %s: %w", s.config.TableName, err)
	}
	table := response.Table
	if table == nil {
		return fmt.Errorf("table %s has no description", s.config.TableName)
	}

	if hash, _ := keySchema(table.KeySchema); hash != AttrID {
		return fmt.Errorf("table %s has partition key %q, expected %q", s.config.TableName, hash, AttrID)
	}

	return verifyIndex(table, s.config.StatusIndex, AttrStatus, AttrCreatedAt)
}

// verifyIndex checks that a global secondary index exists with the given keys
// and projects every attribute.
func verifyIndex(table *types.TableDescription, name, hashKey, rangeKey string) error {
	for _, gsi := range table.GlobalSecondaryIndexes {
		if aws.ToString(gsi.IndexName) != name {
			continue
		}

		hash, rng := keySchema(gsi.KeySchema)
		if hash != hashKey {
			return fmt.Errorf("index %s has partition key %q, expected %q", name, hash, hashKey)
		}
		if rng != rangeKey {
			return fmt.Errorf("index %s has sort key %q, expected %q", name, rng, rangeKey)
		}
		if gsi.Projection == nil || gsi.Projection.ProjectionType != types.ProjectionTypeAll {
			return fmt.Errorf("index %s must project all attributes", name)
		}
		return nil
	}

	return fmt.Errorf("table %s has no index %s", aws.ToString(table.TableName), name)
}

func keySchema(elems []types.KeySchemaElement) (hash, rng string) {
	for _, e := range elems {
		switch e.KeyType {
		case types.KeyTypeHash:
			hash = aws.ToString(e.AttributeName)
		case types.KeyTypeRange:
			rng = aws.ToString(e.AttributeName)
		}
	}
	return hash, rng
}

func (s *Store) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "dynamodb"),
		attribute.String("db.table", s.config.TableName),
	)
	return s.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// endSpan records err on the span unless it is an expected outcome.
func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrID: &types.AttributeValueMemberS{Value: id},
	}
}

func unmarshalTodo(op string, item map[string]types.AttributeValue) (todo.Todo, error) {
	var t todo.Todo
	if err := attributevalue.UnmarshalMap(item, &t); err != nil {
		return todo.Todo{}, &Error{Op: op, Kind: Other, Err: fmt.Errorf("unmarshal todo: %w", err)}
	}
	return t, nil
}
