/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flatstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/registry"
	"github.com/suparena/flatstore/storagemodels"
)

func configKey(table string) string {
	return strings.ToLower(table) + ".table_config"
}

func itemsKey(table string) string {
	return strings.ToLower(table) + ".items"
}

// Dump writes the configuration and every row of every registered table to
// w as one JSON document with "<table>.table_config" and "<table>.items"
// entries. Table names are lower-cased in the entry keys.
func (s *Storage) Dump(ctx context.Context, w io.Writer) error {
	doc := make(map[string]any)
	for _, name := range s.Tables() {
		t, err := s.Table(name)
		if err != nil {
			return err
		}
		rows, err := t.Gateway.ScanAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to dump table %s: %w", name, err)
		}
		if rows == nil {
			rows = []storagemodels.Item{}
		}
		doc[configKey(name)] = registry.ConfigOf(t.Gateway.Schema())
		doc[itemsKey(name)] = rows
		s.logger.Info("dumped table", "table", name, "items", len(rows))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Load reads a document written by Dump and stores its rows idempotently.
// Every registered table must be present in the document, exist in the
// backing store and declare the same key schema; all of this is checked
// before any row is written. It returns the write counts per table.
func (s *Storage) Load(ctx context.Context, r io.Reader) (map[string]storagemodels.WriteCounts, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.NewValidationError("dump", err.Error())
	}

	batches := make(map[string][]processor.StorageItem)
	for _, name := range s.Tables() {
		t, err := s.Table(name)
		if err != nil {
			return nil, err
		}
		items, err := s.loadTable(ctx, t, doc)
		if err != nil {
			return nil, err
		}
		batches[name] = items
	}

	counts := make(map[string]storagemodels.WriteCounts, len(batches))
	for _, name := range s.Tables() {
		t, _ := s.Table(name)
		_, c, err := t.Gateway.PutMany(ctx, batches[name], true)
		counts[name] = c
		if err != nil {
			return counts, fmt.Errorf("failed to load table %s: %w", name, err)
		}
		s.logger.Info("loaded table",
			"table", name,
			"total", c.Total,
			"succeeded", c.Succeeded,
			"skipped", c.Skipped,
			"failed", c.Failed)
	}
	return counts, nil
}

// loadTable verifies the dumped configuration of t and preprocesses its rows.
func (s *Storage) loadTable(ctx context.Context, t *Table, doc map[string]json.RawMessage) ([]processor.StorageItem, error) {
	name := t.Name()
	rawConfig, ok := doc[configKey(name)]
	if !ok {
		return nil, errors.NewSchemaViolation(name, "dump has no "+configKey(name)+" entry")
	}
	var config registry.TableConfig
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, errors.NewSchemaViolation(name, "unreadable table config: "+err.Error())
	}
	dumped, err := config.Schema()
	if err != nil {
		return nil, err
	}
	if !t.Gateway.Schema().Compatible(dumped) {
		return nil, errors.NewSchemaViolation(name, "dumped table config does not match")
	}

	exists, err := t.Gateway.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NewNotFoundError("table", name)
	}

	var rows []map[string]any
	if raw, ok := doc[itemsKey(name)]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return nil, errors.NewValidationError(itemsKey(name), err.Error())
		}
	}

	items := make([]processor.StorageItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, t.Preprocessor.Preprocess(storagemodels.FlatRecord(normalizeJSON(row).(map[string]any))))
	}
	return items, nil
}

// normalizeJSON turns json.Number values into int64 when integral and
// float64 otherwise.
func normalizeJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeJSON(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeJSON(e)
		}
		return x
	}
	return v
}
