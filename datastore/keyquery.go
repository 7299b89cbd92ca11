/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"strings"
	"time"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

// KeyQuery builds QueryByKey parameters from a table's key schema with a
// fluent interface.
type KeyQuery struct {
	schema       storagemodels.TableSchema
	partition    any
	sortOperator string // "=", "begins_with", ">", "<", ">=", "<=", "BETWEEN"
	sortValues   []any
	filters      []string
	names        map[string]string
	values       map[string]any
	limit        *int32
	forward      *bool
}

// NewKeyQuery starts a query against the table described by schema.
func NewKeyQuery(schema storagemodels.TableSchema) *KeyQuery {
	return &KeyQuery{
		schema: schema,
		names:  make(map[string]string),
		values: make(map[string]any),
	}
}

// WithPartitionKey sets the partition key value
func (q *KeyQuery) WithPartitionKey(value any) *KeyQuery {
	q.partition = value
	return q
}

// WithSortKey matches the sort key exactly
func (q *KeyQuery) WithSortKey(value any) *KeyQuery {
	return q.sortKey("=", value)
}

// WithSortKeyPrefix matches sort keys starting with prefix
func (q *KeyQuery) WithSortKeyPrefix(prefix string) *KeyQuery {
	return q.sortKey("begins_with", prefix)
}

// WithSortKeyGreaterThan matches sort keys after value
func (q *KeyQuery) WithSortKeyGreaterThan(value any) *KeyQuery {
	return q.sortKey(">", value)
}

// WithSortKeyAtLeast matches sort keys at or after value
func (q *KeyQuery) WithSortKeyAtLeast(value any) *KeyQuery {
	return q.sortKey(">=", value)
}

// WithSortKeyLessThan matches sort keys before value
func (q *KeyQuery) WithSortKeyLessThan(value any) *KeyQuery {
	return q.sortKey("<", value)
}

// WithSortKeyAtMost matches sort keys at or before value
func (q *KeyQuery) WithSortKeyAtMost(value any) *KeyQuery {
	return q.sortKey("<=", value)
}

// WithSortKeyBetween matches sort keys in the inclusive range [start, end]
func (q *KeyQuery) WithSortKeyBetween(start, end any) *KeyQuery {
	return q.sortKey("BETWEEN", start, end)
}

func (q *KeyQuery) sortKey(operator string, values ...any) *KeyQuery {
	q.sortOperator = operator
	q.sortValues = values
	return q
}

// After matches timestamp sort keys after t
func (q *KeyQuery) After(t time.Time) *KeyQuery {
	return q.WithSortKeyGreaterThan(formatTime(t))
}

// Before matches timestamp sort keys before t
func (q *KeyQuery) Before(t time.Time) *KeyQuery {
	return q.WithSortKeyLessThan(formatTime(t))
}

// Between matches timestamp sort keys from start to end inclusive
func (q *KeyQuery) Between(start, end time.Time) *KeyQuery {
	return q.WithSortKeyBetween(formatTime(start), formatTime(end))
}

// Since matches timestamp sort keys in the window d before now
func (q *KeyQuery) Since(d time.Duration, now time.Time) *KeyQuery {
	return q.After(now.Add(-d))
}

// Latest returns results newest first
func (q *KeyQuery) Latest() *KeyQuery {
	forward := false
	q.forward = &forward
	return q
}

// Oldest returns results oldest first
func (q *KeyQuery) Oldest() *KeyQuery {
	forward := true
	q.forward = &forward
	return q
}

// WithFilter keeps only rows whose attribute equals value
func (q *KeyQuery) WithFilter(attribute string, value any) *KeyQuery {
	n := len(q.filters)
	name, placeholder := fmt.Sprintf("#f%d", n), fmt.Sprintf(":f%d", n)
	q.filters = append(q.filters, name+" = "+placeholder)
	q.names[name] = attribute
	q.values[placeholder] = value
	return q
}

// WithLimit sets the page size limit
func (q *KeyQuery) WithLimit(limit int32) *KeyQuery {
	q.limit = &limit
	return q
}

// Build constructs the query parameters.
func (q *KeyQuery) Build() (storagemodels.QueryParams, error) {
	if q.partition == nil {
		return storagemodels.QueryParams{}, errors.NewValidationError(q.schema.PartitionKey(), "partition key value is required")
	}

	params := storagemodels.QueryParams{
		ExpressionAttributeNames:  map[string]string{"#k0": q.schema.PartitionKey()},
		ExpressionAttributeValues: map[string]any{":k0": q.partition},
		Limit:                     q.limit,
		ScanIndexForward:          q.forward,
	}
	conditions := []string{"#k0 = :k0"}

	if q.sortOperator != "" {
		sortKey := q.schema.SortKey()
		if sortKey == "" {
			return storagemodels.QueryParams{}, errors.NewValidationError(q.schema.Name, "table has no sort key")
		}
		params.ExpressionAttributeNames["#k1"] = sortKey
		params.ExpressionAttributeValues[":k1"] = q.sortValues[0]

		switch q.sortOperator {
		case "begins_with":
			conditions = append(conditions, "begins_with(#k1, :k1)")
		case "BETWEEN":
			conditions = append(conditions, "#k1 BETWEEN :k1 AND :k2")
			params.ExpressionAttributeValues[":k2"] = q.sortValues[1]
		default:
			conditions = append(conditions, "#k1 "+q.sortOperator+" :k1")
		}
	}
	params.KeyConditionExpression = strings.Join(conditions, " AND ")

	if len(q.filters) > 0 {
		filter := strings.Join(q.filters, " AND ")
		params.FilterExpression = &filter
		for k, v := range q.names {
			params.ExpressionAttributeNames[k] = v
		}
		for k, v := range q.values {
			params.ExpressionAttributeValues[k] = v
		}
	}
	return params, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
