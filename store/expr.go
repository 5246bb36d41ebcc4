package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/todo-api/todo"
)

// updateExpression is a built SET expression with its placeholders.
type updateExpression struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// isProtected reports whether an attribute can never be changed by an update.
func isProtected(attr string) bool {
	return attr == AttrID || attr == AttrCreatedAt || attr == AttrUpdatedAt
}

// fieldAttributes converts the set fields into item attributes.
func fieldAttributes(f todo.Fields) map[string]types.AttributeValue {
	attrs := make(map[string]types.AttributeValue, 3)
	if f.Title != nil {
		attrs[AttrTitle] = &types.AttributeValueMemberS{Value: *f.Title}
	}
	if f.Description != nil {
		attrs[AttrDescription] = &types.AttributeValueMemberS{Value: *f.Description}
	}
	if f.Status != nil {
		attrs[AttrStatus] = &types.AttributeValueMemberS{Value: string(*f.Status)}
	}
	return attrs
}

// buildUpdateExpression builds a SET expression for attrs plus updated_at.
// Protected attributes are skipped. Placeholders are assigned in sorted
// attribute order so the expression is deterministic.
func buildUpdateExpression(attrs map[string]types.AttributeValue, updatedAt string) updateExpression {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		if isProtected(k) {
			continue
		}
		names = append(names, k)
	}
	slices.Sort(names)

	expr := updateExpression{
		Names: map[string]string{
			"#updated_at": AttrUpdatedAt,
		},
		Values: map[string]types.AttributeValue{
			":updated_at": &types.AttributeValueMemberS{Value: updatedAt},
		},
	}

	setClauses := make([]string, 0, len(names)+1)
	for i, k := range names {
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		expr.Names[nameKey] = k
		expr.Values[valueKey] = attrs[k]
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	setClauses = append(setClauses, "#updated_at = :updated_at")

	expr.Expression = "SET " + strings.Join(setClauses, ", ")
	return expr
}
