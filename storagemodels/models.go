/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// RawDocument is an unprocessed nested document, for example a decoded API
// response fragment.
type RawDocument map[string]any

// FlatRecord maps dot-joined paths to leaf values. A nil value marks an
// expected leaf that was absent from the source document.
type FlatRecord map[string]any

// Item is a row as read back from a table.
type Item map[string]any

// Key holds the key attribute values that identify one row.
type Key map[string]any

// Clone returns a shallow copy of the record.
func (r FlatRecord) Clone() FlatRecord {
	out := make(FlatRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the item.
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// KeyOf extracts the key attributes of the schema from the item. The boolean
// is false if any key attribute is missing.
func (i Item) KeyOf(schema TableSchema) (Key, bool) {
	key := make(Key, len(schema.KeyAttributes))
	for _, name := range schema.KeyNames() {
		v, ok := i[name]
		if !ok || v == nil {
			return nil, false
		}
		key[name] = v
	}
	return key, true
}

// QueryParams defines parameters for a key-condition query.
type QueryParams struct {
	// KeyConditionExpression is the primary condition for the query, written
	// with #name and :value placeholders.
	KeyConditionExpression string
	// ExpressionAttributeNames maps #name placeholders to attribute names.
	ExpressionAttributeNames map[string]string
	// ExpressionAttributeValues binds :value placeholders to plain Go values.
	ExpressionAttributeValues map[string]any
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// IndexName is optional if you wish to query a secondary index.
	IndexName *string
	// Limit defines an optional limit per query page.
	Limit *int32
	// ScanIndexForward specifies the order for index traversal.
	// If true (default), traversal is in ascending order.
	ScanIndexForward *bool
}

// ScanParams defines an optional filter and projection for a scan.
type ScanParams struct {
	FilterExpression          string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]any
	ProjectionAttributes      []string
}

// WriteOutcome is the result of a single-item write.
type WriteOutcome int

const (
	// Written means the item was stored.
	Written WriteOutcome = iota
	// Skipped means an idempotent write found the key already present.
	Skipped
)

func (o WriteOutcome) String() string {
	switch o {
	case Written:
		return "written"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// WriteCounts summarizes a bulk write. Total = Succeeded + Skipped + Failed.
type WriteCounts struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
}

// Add merges other into c.
func (c *WriteCounts) Add(other WriteCounts) {
	c.Total += other.Total
	c.Succeeded += other.Succeeded
	c.Skipped += other.Skipped
	c.Failed += other.Failed
}

// AllFailed reports whether a non-empty batch had no successful or skipped item.
func (c WriteCounts) AllFailed() bool {
	return c.Total > 0 && c.Failed == c.Total
}
