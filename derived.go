/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flatstore

import (
	"context"
	"fmt"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/flatten"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

// Relation links a parent table to a table of rows derived from it. The
// parent's IDField and the child's ForeignKey hold the same generated
// identifier. Both are bare field names as they appear in the documents.
type Relation struct {
	Parent     string
	Child      string
	IDField    string
	ForeignKey string

	// ChildFlatten configures how each child document is flattened.
	ChildFlatten []flatten.Option
}

// DerivedRowsResult reports what AddDocumentAndDerivedRows wrote.
type DerivedRowsResult struct {
	ID       string
	Parent   storagemodels.WriteOutcome
	Children storagemodels.WriteCounts
}

// AddDocumentAndDerivedRows stores a parent document and the rows derived
// from it under one generated identifier. Every document is flattened and
// preprocessed before anything is written; a document that cannot produce
// its table's keys fails the call with a SchemaViolationError. The parent is
// then written alone and idempotently, followed by the children as one
// idempotent batch.
func (s *Storage) AddDocumentAndDerivedRows(ctx context.Context, rel Relation, parent storagemodels.RawDocument, children []storagemodels.RawDocument) (DerivedRowsResult, error) {
	parentTable, err := s.Table(rel.Parent)
	if err != nil {
		return DerivedRowsResult{}, err
	}
	childTable, err := s.Table(rel.Child)
	if err != nil {
		return DerivedRowsResult{}, err
	}
	if rel.IDField == "" || rel.ForeignKey == "" {
		return DerivedRowsResult{}, errors.NewValidationError("Relation", "IDField and ForeignKey are required")
	}

	result := DerivedRowsResult{ID: s.newID()}

	parentItem := parentTable.Prepare(withField(parent, rel.IDField, result.ID))
	if err := parentItem.CheckWritable(parentTable.Gateway.Schema()); err != nil {
		return result, err
	}

	childItems := make([]processor.StorageItem, 0, len(children))
	for n, child := range children {
		item := childTable.Prepare(withField(child, rel.ForeignKey, result.ID), rel.ChildFlatten...)
		if err := item.CheckWritable(childTable.Gateway.Schema()); err != nil {
			return result, fmt.Errorf("derived row %d: %w", n, err)
		}
		childItems = append(childItems, item)
	}

	result.Parent, err = parentTable.Gateway.PutOne(ctx, parentItem, true)
	if err != nil {
		s.logger.Error("failed to store parent row",
			"table", rel.Parent,
			"id", result.ID,
			"error", err)
		return result, err
	}

	if len(childItems) > 0 {
		_, result.Children, err = childTable.Gateway.PutMany(ctx, childItems, true)
		if err != nil {
			s.logger.Error("failed to store derived rows",
				"table", rel.Child,
				"id", result.ID,
				"error", err)
			return result, err
		}
	}

	s.logger.Info("stored document and derived rows",
		"parent", rel.Parent,
		"child", rel.Child,
		"id", result.ID,
		"parentOutcome", result.Parent.String(),
		"succeeded", result.Children.Succeeded,
		"skipped", result.Children.Skipped,
		"failed", result.Children.Failed)
	return result, nil
}

// withField returns a shallow copy of doc with field set to value.
func withField(doc storagemodels.RawDocument, field string, value any) storagemodels.RawDocument {
	out := make(storagemodels.RawDocument, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[field] = value
	return out
}
