/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flatstore

import (
	"context"

	"github.com/suparena/flatstore/collection"
	"github.com/suparena/flatstore/datastore"
	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

// DistinctValues lists the values of attribute found across all rows of
// table, each once. attribute may be a bare or a stored name.
func (s *Storage) DistinctValues(ctx context.Context, table, attribute string) ([]any, error) {
	t, err := s.Table(table)
	if err != nil {
		return nil, err
	}
	name := t.AttributeName(attribute)
	rows, err := t.Gateway.ScanWhere(ctx, storagemodels.ScanParams{ProjectionAttributes: []string{name}})
	if err != nil {
		return nil, err
	}
	return collection.DistinctValues(rows, name), nil
}

// RowsWithValue lists the rows of table whose attribute equals value. For a
// schema-governed attribute, value is first coerced to the declared type.
func (s *Storage) RowsWithValue(ctx context.Context, table, attribute string, value any) ([]storagemodels.Item, error) {
	t, err := s.Table(table)
	if err != nil {
		return nil, err
	}
	name := t.AttributeName(attribute)
	if typ, ok := t.Gateway.Schema().AttributeType(name); ok {
		if value, err = processor.Coerce(value, typ); err != nil {
			return nil, errors.NewValidationError(attribute, err.Error())
		}
	}
	return t.Gateway.ScanWhere(ctx, datastore.Equals(name, value))
}

// RowsJoinedBy lists the child rows of rel that carry id in their foreign key.
func (s *Storage) RowsJoinedBy(ctx context.Context, rel Relation, id string) ([]storagemodels.Item, error) {
	if !IsValidIdentifier(id) {
		return nil, errors.NewValidationError(rel.ForeignKey, "invalid identifier "+id)
	}
	return s.RowsWithValue(ctx, rel.Child, rel.ForeignKey, id)
}

// SortedRows scans table and returns its rows sorted by keys.
func (s *Storage) SortedRows(ctx context.Context, table string, keys ...collection.SortKey) ([]storagemodels.Item, error) {
	t, err := s.Table(table)
	if err != nil {
		return nil, err
	}
	rows, err := t.Gateway.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	resolved := make([]collection.SortKey, len(keys))
	for i, key := range keys {
		resolved[i] = collection.SortKey{Attribute: t.AttributeName(key.Attribute), Direction: key.Direction}
	}
	return collection.SortByAttributes(rows, resolved...), nil
}
