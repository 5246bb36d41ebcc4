// Package pagetoken converts DynamoDB pagination keys to and from opaque,
// URL-safe tokens.
package pagetoken

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bytedance/sonic"
)

// ErrInvalid is returned when a token cannot be decoded.
var ErrInvalid = errors.New("pagetoken: invalid token")

// keyAttr mirrors the DynamoDB JSON shape for the scalar types a key can hold.
type keyAttr struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
}

// Encode turns a LastEvaluatedKey into a token. An empty key yields "".
func Encode(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	attrs := make(map[string]keyAttr, len(key))
	for name, v := range key {
		switch av := v.(type) {
		case *types.AttributeValueMemberS:
			s := av.Value
			attrs[name] = keyAttr{S: &s}
		case *types.AttributeValueMemberN:
			n := av.Value
			attrs[name] = keyAttr{N: &n}
		default:
			return "", fmt.Errorf("pagetoken: unsupported key attribute %q of type %T", name, v)
		}
	}

	data, err := sonic.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("pagetoken: marshal key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode turns a token back into an ExclusiveStartKey. An empty token
// yields a nil key.
func Decode(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalid
	}

	var attrs map[string]keyAttr
	if err := sonic.Unmarshal(data, &attrs); err != nil || len(attrs) == 0 {
		return nil, ErrInvalid
	}

	key := make(map[string]types.AttributeValue, len(attrs))
	for name, a := range attrs {
		switch {
		case a.S != nil && a.N == nil:
			key[name] = &types.AttributeValueMemberS{Value: *a.S}
		case a.N != nil && a.S == nil:
			key[name] = &types.AttributeValueMemberN{Value: *a.N}
		default:
			return nil, ErrInvalid
		}
	}
	return key, nil
}
