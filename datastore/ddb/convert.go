/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	ferrors "github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

func marshalItem(item map[string]any) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	return av, nil
}

func marshalValues(values map[string]any) (map[string]types.AttributeValue, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(values))
	for placeholder, v := range values {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value for %s: %w", placeholder, err)
		}
		out[placeholder] = av
	}
	return out, nil
}

// decodeItem converts a DynamoDB item to a row. Numbers decode to int64 when
// integral and float64 otherwise, matching what the preprocessor writes.
func decodeItem(av map[string]types.AttributeValue) (storagemodels.Item, error) {
	var raw map[string]any
	err := attributevalue.UnmarshalMapWithOptions(av, &raw, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	item := make(storagemodels.Item, len(raw))
	for k, v := range raw {
		item[k] = normalize(v)
	}
	return item, nil
}

func decodeItems(avs []map[string]types.AttributeValue) ([]storagemodels.Item, error) {
	items := make([]storagemodels.Item, 0, len(avs))
	for _, av := range avs {
		item, err := decodeItem(av)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case attributevalue.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = normalize(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalize(inner)
		}
		return t
	}
	return v
}

// marshalKey coerces key values to the declared key types and marshals them.
func marshalKey(schema storagemodels.TableSchema, key storagemodels.Key) (map[string]types.AttributeValue, error) {
	if len(key) != len(schema.KeyAttributes) {
		return nil, ferrors.NewValidationError("key",
			fmt.Sprintf("expected attributes %q, got %d attributes", schema.KeyNames(), len(key)))
	}
	typed := make(map[string]any, len(key))
	for _, name := range schema.KeyNames() {
		v, ok := key[name]
		if !ok || v == nil {
			return nil, ferrors.NewValidationError(name, "key attribute is missing")
		}
		typ, _ := schema.AttributeType(name)
		coerced, err := processor.Coerce(v, typ)
		if err != nil {
			return nil, ferrors.NewValidationError(name, err.Error())
		}
		typed[name] = coerced
	}
	return marshalItem(typed)
}

// keyID renders the key attributes of a marshaled item as a comparable string.
func keyID(av map[string]types.AttributeValue, names []string) string {
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('=')
		switch v := av[name].(type) {
		case *types.AttributeValueMemberS:
			sb.WriteString("S:" + v.Value)
		case *types.AttributeValueMemberN:
			sb.WriteString("N:" + v.Value)
		default:
			sb.WriteString(fmt.Sprintf("%T", v))
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// describeKey renders a key for log messages.
func describeKey(key map[string]any) string {
	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, key[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
