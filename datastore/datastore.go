/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

// State is the lifecycle state of a gateway's table.
type State int

const (
	// Uninitialized means the table has not been found or created yet.
	Uninitialized State = iota
	// Exists means the table was found or its creation was requested.
	Exists
	// Ready means the backing store confirmed the table is usable.
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Exists:
		return "exists"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Gateway owns the connection to one logical table.
//
// Writes accept only items produced by a processor.Preprocessor for the same
// table. Anything else fails with a SchemaViolationError before any call to
// the backing store.
type Gateway interface {
	Schema() storagemodels.TableSchema

	TableName() string

	State() State

	Exists(ctx context.Context) (bool, error)

	// PutOne writes one item. With idempotent set, the write only happens if
	// the key is absent; an existing key yields Skipped and no error.
	PutOne(ctx context.Context, item processor.StorageItem, idempotent bool) (storagemodels.WriteOutcome, error)

	// PutMany writes items and returns those actually written. Per-item
	// failures are counted, not returned, unless every item failed.
	PutMany(ctx context.Context, items []processor.StorageItem, idempotent bool) ([]processor.StorageItem, storagemodels.WriteCounts, error)

	// GetOne returns nil and no error when the key is absent.
	GetOne(ctx context.Context, key storagemodels.Key) (storagemodels.Item, error)

	UpdateOne(ctx context.Context, key storagemodels.Key, updates map[string]any) error

	DeleteOne(ctx context.Context, key storagemodels.Key) error

	ScanAll(ctx context.Context) ([]storagemodels.Item, error)

	ScanWhere(ctx context.Context, params storagemodels.ScanParams) ([]storagemodels.Item, error)

	CountAll(ctx context.Context) (int64, error)

	// QueryByKey returns an empty result and logs a warning when the table
	// does not exist yet.
	QueryByKey(ctx context.Context, params storagemodels.QueryParams) ([]storagemodels.Item, error)

	// Stream delivers every row over a channel, one page at a time. The
	// sequence is finite and cannot be restarted.
	Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult

	// DescribeSchema rebuilds the key schema from the live table.
	DescribeSchema(ctx context.Context) (storagemodels.TableSchema, error)

	DeleteTable(ctx context.Context) error
}

// Equals builds scan parameters selecting rows whose attribute equals value.
func Equals(attribute string, value any) storagemodels.ScanParams {
	return storagemodels.ScanParams{
		FilterExpression:          "#a0 = :v0",
		ExpressionAttributeNames:  map[string]string{"#a0": attribute},
		ExpressionAttributeValues: map[string]any{":v0": value},
	}
}

// KeyEquals builds query parameters matching a partition key value and,
// when sortValue is non-nil, a sort key value.
func KeyEquals(schema storagemodels.TableSchema, partitionValue, sortValue any) storagemodels.QueryParams {
	params := storagemodels.QueryParams{
		KeyConditionExpression:    "#k0 = :k0",
		ExpressionAttributeNames:  map[string]string{"#k0": schema.PartitionKey()},
		ExpressionAttributeValues: map[string]any{":k0": partitionValue},
	}
	if sortKey := schema.SortKey(); sortKey != "" && sortValue != nil {
		params.KeyConditionExpression += " AND #k1 = :k1"
		params.ExpressionAttributeNames["#k1"] = sortKey
		params.ExpressionAttributeValues[":k1"] = sortValue
	}
	return params
}
