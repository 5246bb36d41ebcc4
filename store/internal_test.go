package store

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/todo-api/todo"
)

func TestBuildUpdateExpression_OnlyUpdatedAt(t *testing.T) {
	expr := buildUpdateExpression(nil, "2024-01-01T00:00:00.000000Z")

	if expr.Expression != "SET #updated_at = :updated_at" {
		t.Errorf("unexpected expression %q", expr.Expression)
	}
	if len(expr.Names) != 1 || len(expr.Values) != 1 {
		t.Errorf("expected only updated_at placeholders, got %v / %v", expr.Names, expr.Values)
	}
}

func TestBuildUpdateExpression_SkipsProtected(t *testing.T) {
	attrs := map[string]types.AttributeValue{
		"id":         &types.AttributeValueMemberS{Value: "other"},
		"created_at": &types.AttributeValueMemberS{Value: "1999"},
		"updated_at": &types.AttributeValueMemberS{Value: "1999"},
		"title":      &types.AttributeValueMemberS{Value: "t"},
	}
	expr := buildUpdateExpression(attrs, "now")

	if expr.Expression != "SET #attr0 = :val0, #updated_at = :updated_at" {
		t.Errorf("unexpected expression %q", expr.Expression)
	}
	if expr.Names["#attr0"] != "title" {
		t.Errorf("expected #attr0 to be title, got %q", expr.Names["#attr0"])
	}
	if v := expr.Values[":updated_at"].(*types.AttributeValueMemberS); v.Value != "now" {
		t.Errorf("expected updated_at 'now', got %q", v.Value)
	}
}

func TestBuildUpdateExpression_SortedPlaceholders(t *testing.T) {
	title := "t"
	desc := "d"
	status := todo.StatusArchived
	expr := buildUpdateExpression(fieldAttributes(todo.Fields{Title: &title, Description: &desc, Status: &status}), "now")

	want := "SET #attr0 = :val0, #attr1 = :val1, #attr2 = :val2, #updated_at = :updated_at"
	if expr.Expression != want {
		t.Errorf("expected %q, got %q", want, expr.Expression)
	}
	order := []string{expr.Names["#attr0"], expr.Names["#attr1"], expr.Names["#attr2"]}
	if order[0] != "description" || order[1] != "status" || order[2] != "title" {
		t.Errorf("expected sorted attributes, got %v", order)
	}
}

func TestFieldAttributes_Empty(t *testing.T) {
	if attrs := fieldAttributes(todo.Fields{}); len(attrs) != 0 {
		t.Errorf("expected no attributes, got %v", attrs)
	}
}

func TestKeySchema(t *testing.T) {
	hashName, rangeName := "status", "created_at"
	hash, rng := keySchema([]types.KeySchemaElement{
		{AttributeName: &rangeName, KeyType: types.KeyTypeRange},
		{AttributeName: &hashName, KeyType: types.KeyTypeHash},
	})
	if hash != "status" || rng != "created_at" {
		t.Errorf("expected status/created_at, got %q/%q", hash, rng)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := map[ErrorKind]string{
		Other:           "other",
		TableMissing:    "table_missing",
		InvalidRequest:  "invalid_request",
		ConditionFailed: "condition_failed",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("expected %q, got %q", want, kind.String())
		}
	}
}
