/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the Gateway interface for testing
package mock

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/suparena/flatstore/collection"
	"github.com/suparena/flatstore/datastore"
	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

// Gateway is an in-memory datastore.Gateway. Rows are kept in insertion
// order. Filter and key-condition expressions are limited to AND-joined
// comparison, BETWEEN and begins_with terms over placeholders.
type Gateway struct {
	mu     sync.RWMutex
	schema storagemodels.TableSchema
	exists bool
	rows   map[string]storagemodels.Item
	order  []string

	putErrorFunc func(item storagemodels.Item) error
	scanError    error
	deleteError  error
	updateError  error
}

var _ datastore.Gateway = (*Gateway)(nil)

// New creates a mock gateway whose table already exists.
func New(schema storagemodels.TableSchema) *Gateway {
	return &Gateway{
		schema: schema,
		exists: true,
		rows:   make(map[string]storagemodels.Item),
	}
}

// WithoutTable makes the gateway behave as if its table does not exist.
func (m *Gateway) WithoutTable() *Gateway {
	m.exists = false
	return m
}

// WithPutError makes every write fail with err
func (m *Gateway) WithPutError(err error) *Gateway {
	m.putErrorFunc = func(storagemodels.Item) error { return err }
	return m
}

// WithPutErrorFunc makes writes fail for the items f returns an error for
func (m *Gateway) WithPutErrorFunc(f func(item storagemodels.Item) error) *Gateway {
	m.putErrorFunc = f
	return m
}

// WithScanError makes scans, counts and queries fail with err
func (m *Gateway) WithScanError(err error) *Gateway {
	m.scanError = err
	return m
}

// WithDeleteError makes DeleteOne return an error
func (m *Gateway) WithDeleteError(err error) *Gateway {
	m.deleteError = err
	return m
}

// WithUpdateError makes UpdateOne return an error
func (m *Gateway) WithUpdateError(err error) *Gateway {
	m.updateError = err
	return m
}

func (m *Gateway) Schema() storagemodels.TableSchema {
	return m.schema
}

func (m *Gateway) TableName() string {
	return m.schema.Name
}

func (m *Gateway) State() datastore.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.exists {
		return datastore.Ready
	}
	return datastore.Uninitialized
}

func (m *Gateway) Exists(ctx context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists, nil
}

// PutOne stores an item, honouring the idempotent flag like the real gateway.
func (m *Gateway) PutOne(ctx context.Context, item processor.StorageItem, idempotent bool) (storagemodels.WriteOutcome, error) {
	if err := item.CheckWritable(m.schema); err != nil {
		return storagemodels.Written, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.exists {
		return storagemodels.Written, &errors.BackingStoreError{
			Operation: "PutItem", Table: m.schema.Name, Code: "ResourceNotFoundException",
			Cause: errors.NewNotFoundError("table", m.schema.Name),
		}
	}

	row := item.Item()
	if m.putErrorFunc != nil {
		if err := m.putErrorFunc(row); err != nil {
			return storagemodels.Written, &errors.BackingStoreError{Operation: "PutItem", Table: m.schema.Name, Cause: err}
		}
	}

	id, err := m.rowKey(row)
	if err != nil {
		return storagemodels.Written, err
	}
	if _, exists := m.rows[id]; exists {
		if idempotent {
			return storagemodels.Skipped, nil
		}
	} else {
		m.order = append(m.order, id)
	}
	m.rows[id] = row
	return storagemodels.Written, nil
}

// PutMany applies PutOne to every item and reports counts the way the real
// gateway does.
func (m *Gateway) PutMany(ctx context.Context, items []processor.StorageItem, idempotent bool) ([]processor.StorageItem, storagemodels.WriteCounts, error) {
	counts := storagemodels.WriteCounts{Total: len(items)}
	for n, item := range items {
		if !item.Preprocessed() || item.Table() != m.schema.Name {
			return nil, counts, errors.NewSchemaViolation(m.schema.Name,
				fmt.Sprintf("batch item %d was not preprocessed for this table", n))
		}
	}

	var written []processor.StorageItem
	var lastErr error
	for _, item := range items {
		outcome, err := m.PutOne(ctx, item, idempotent)
		switch {
		case err != nil:
			counts.Failed++
			lastErr = err
		case outcome == storagemodels.Skipped:
			counts.Skipped++
		default:
			counts.Succeeded++
			written = append(written, item)
		}
	}
	if counts.AllFailed() {
		return nil, counts, &errors.BatchError{Table: m.schema.Name, Total: counts.Total, Failed: counts.Failed, Last: lastErr}
	}
	return written, counts, nil
}

// GetOne retrieves a row by key, nil if absent
func (m *Gateway) GetOne(ctx context.Context, key storagemodels.Key) (storagemodels.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, err := m.rowKey(storagemodels.Item(key))
	if err != nil {
		return nil, err
	}
	if row, ok := m.rows[id]; ok {
		return row.Clone(), nil
	}
	return nil, nil
}

// UpdateOne sets attributes on an existing row
func (m *Gateway) UpdateOne(ctx context.Context, key storagemodels.Key, updates map[string]any) error {
	if m.updateError != nil {
		return m.updateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.rowKey(storagemodels.Item(key))
	if err != nil {
		return err
	}
	row, ok := m.rows[id]
	if !ok {
		return errors.NewNotFoundError(m.schema.Name, id)
	}
	for field, v := range updates {
		if m.schema.IsKey(field) {
			return errors.NewValidationError(field, "key attributes cannot be updated")
		}
		row[field] = v
	}
	return nil
}

// DeleteOne removes a row; an absent row is not an error
func (m *Gateway) DeleteOne(ctx context.Context, key storagemodels.Key) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.rowKey(storagemodels.Item(key))
	if err != nil {
		return err
	}
	if _, ok := m.rows[id]; !ok {
		return nil
	}
	delete(m.rows, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Gateway) ScanAll(ctx context.Context) ([]storagemodels.Item, error) {
	return m.ScanWhere(ctx, storagemodels.ScanParams{})
}

func (m *Gateway) ScanWhere(ctx context.Context, params storagemodels.ScanParams) ([]storagemodels.Item, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []storagemodels.Item
	for _, id := range m.order {
		row := m.rows[id]
		ok, err := matches(params.FilterExpression, row, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, project(row, params.ProjectionAttributes))
	}
	return items, nil
}

func (m *Gateway) CountAll(ctx context.Context) (int64, error) {
	if err := m.readable(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.rows)), nil
}

// QueryByKey returns no rows when the table does not exist.
func (m *Gateway) QueryByKey(ctx context.Context, params storagemodels.QueryParams) ([]storagemodels.Item, error) {
	if m.State() != datastore.Ready {
		return []storagemodels.Item{}, nil
	}
	if m.scanError != nil {
		return nil, m.scanError
	}
	if params.KeyConditionExpression == "" {
		return nil, errors.NewValidationError("KeyConditionExpression", "key condition is required")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := []storagemodels.Item{}
	for _, id := range m.order {
		row := m.rows[id]
		ok, err := matches(params.KeyConditionExpression, row, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if ok && params.FilterExpression != nil {
			ok, err = matches(*params.FilterExpression, row, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
			if err != nil {
				return nil, err
			}
		}
		if ok {
			items = append(items, row.Clone())
		}
	}
	if sortKey := m.schema.SortKey(); sortKey != "" {
		descending := params.ScanIndexForward != nil && !*params.ScanIndexForward
		sort.SliceStable(items, func(i, j int) bool {
			c := collection.Compare(items[i][sortKey], items[j][sortKey])
			if descending {
				return c > 0
			}
			return c < 0
		})
	}
	return items, nil
}

// Stream returns a channel of rows in insertion order
func (m *Gateway) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.NewStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult, options.BufferSize)

	items, err := m.ScanAll(ctx)
	go func() {
		defer close(resultChan)
		if err != nil {
			resultChan <- storagemodels.StreamResult{Error: err, Meta: storagemodels.StreamMeta{Timestamp: time.Now()}}
			return
		}
		for index, item := range items {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult{
				Item: item,
				Meta: storagemodels.StreamMeta{
					Index:      int64(index),
					PageNumber: 1,
					Timestamp:  time.Now(),
				},
			}:
			}
		}
	}()
	return resultChan
}

// DescribeSchema returns the key part of the configured schema.
func (m *Gateway) DescribeSchema(ctx context.Context) (storagemodels.TableSchema, error) {
	if m.State() != datastore.Ready {
		return storagemodels.TableSchema{}, errors.NewNotFoundError("table", m.schema.Name)
	}
	schema := storagemodels.TableSchema{Name: m.schema.Name, KeyAttributes: m.schema.KeyAttributes, Capacity: m.schema.Capacity}
	for _, key := range m.schema.KeyAttributes {
		typ, _ := m.schema.AttributeType(key.Name)
		schema.AttributeDefinitions = append(schema.AttributeDefinitions, storagemodels.AttributeDefinition{Name: key.Name, Type: typ})
	}
	return schema, nil
}

func (m *Gateway) DeleteTable(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exists = false
	m.rows = make(map[string]storagemodels.Item)
	m.order = nil
	return nil
}

// Helper methods for testing

// Rows returns copies of the stored rows in insertion order
func (m *Gateway) Rows() []storagemodels.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]storagemodels.Item, 0, len(m.order))
	for _, id := range m.order {
		rows = append(rows, m.rows[id].Clone())
	}
	return rows
}

// Count returns the number of stored rows
func (m *Gateway) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Clear removes all rows
func (m *Gateway) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[string]storagemodels.Item)
	m.order = nil
}

func (m *Gateway) readable() error {
	if m.State() != datastore.Ready {
		return errors.NewNotFoundError("table", m.schema.Name)
	}
	return m.scanError
}

// rowKey renders the key attributes of row, coerced to their declared types.
func (m *Gateway) rowKey(row storagemodels.Item) (string, error) {
	parts := make([]string, 0, len(m.schema.KeyAttributes))
	for _, name := range m.schema.KeyNames() {
		v, ok := row[name]
		if !ok || v == nil {
			return "", errors.NewValidationError(name, "key attribute is missing")
		}
		typ, _ := m.schema.AttributeType(name)
		coerced, err := processor.Coerce(v, typ)
		if err != nil {
			return "", errors.NewValidationError(name, err.Error())
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, coerced))
	}
	return strings.Join(parts, "|"), nil
}

var (
	comparisonTerm = regexp.MustCompile(`^(#\w+) (=|<>|<=|>=|<|>) (:\w+)$`)
	betweenTerm    = regexp.MustCompile(`^(#\w+) BETWEEN (:\w+) AND (:\w+)$`)
	beginsWithTerm = regexp.MustCompile(`^begins_with\((#\w+), ?(:\w+)\)$`)
)

// matches evaluates a conjunction of comparison, BETWEEN and begins_with
// terms over placeholders. An empty expression matches every row.
func matches(expr string, row storagemodels.Item, names map[string]string, values map[string]any) (bool, error) {
	terms, err := splitTerms(expr)
	if err != nil {
		return false, err
	}
	for _, term := range terms {
		ok, err := evalTerm(term, row, names, values)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// splitTerms splits on AND while keeping "x BETWEEN :a AND :b" whole.
func splitTerms(expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	var terms []string
	parts := strings.Split(expr, " AND ")
	for i := 0; i < len(parts); i++ {
		term := strings.TrimSpace(parts[i])
		if strings.Contains(term, " BETWEEN ") {
			if i+1 == len(parts) {
				return nil, errors.NewValidationError("expression", fmt.Sprintf("incomplete BETWEEN in %q", expr))
			}
			i++
			term += " AND " + strings.TrimSpace(parts[i])
		}
		terms = append(terms, strings.TrimSuffix(strings.TrimPrefix(term, "("), ")"))
	}
	return terms, nil
}

func evalTerm(term string, row storagemodels.Item, names map[string]string, values map[string]any) (bool, error) {
	lookup := func(name string, placeholders ...string) (any, []any, bool, error) {
		attr := name
		if resolved, ok := names[name]; ok {
			attr = resolved
		}
		bound := make([]any, len(placeholders))
		for i, p := range placeholders {
			v, ok := values[p]
			if !ok {
				return nil, nil, false, errors.NewValidationError("expression", fmt.Sprintf("unbound value %q", p))
			}
			bound[i] = v
		}
		got, present := row[attr]
		return got, bound, present && got != nil, nil
	}

	if m := beginsWithTerm.FindStringSubmatch(term); m != nil {
		got, bound, present, err := lookup(m[1], m[2])
		if err != nil || !present {
			return false, err
		}
		s, ok := got.(string)
		prefix, _ := bound[0].(string)
		return ok && strings.HasPrefix(s, prefix), nil
	}
	if m := betweenTerm.FindStringSubmatch(term); m != nil {
		got, bound, present, err := lookup(m[1], m[2], m[3])
		if err != nil || !present {
			return false, err
		}
		return sameKind(got, bound[0]) && collection.Compare(got, bound[0]) >= 0 && collection.Compare(got, bound[1]) <= 0, nil
	}
	if m := comparisonTerm.FindStringSubmatch(term); m != nil {
		got, bound, present, err := lookup(m[1], m[3])
		if err != nil || !present {
			return false, err
		}
		want := bound[0]
		switch m[2] {
		case "=":
			return collection.Equal(got, want), nil
		case "<>":
			return !collection.Equal(got, want), nil
		}
		if !sameKind(got, want) {
			return false, nil
		}
		c := collection.Compare(got, want)
		switch m[2] {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		}
		return c >= 0, nil
	}
	return false, errors.NewValidationError("expression", fmt.Sprintf("unsupported term %q", term))
}

// sameKind reports whether a and b can be ordered against each other. Only
// two strings or two numbers can.
func sameKind(a, b any) bool {
	_, bs := b.(string)
	_, bb := b.(bool)
	switch a.(type) {
	case string:
		return bs
	case bool:
		return false
	}
	return !bs && !bb
}

func project(row storagemodels.Item, attributes []string) storagemodels.Item {
	if len(attributes) == 0 {
		return row.Clone()
	}
	out := make(storagemodels.Item, len(attributes))
	for _, name := range attributes {
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}
	return out
}
