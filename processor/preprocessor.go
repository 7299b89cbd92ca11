/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/flatten"
	"github.com/suparena/flatstore/storagemodels"
)

// StorageItem is a flat record whose schema-governed attributes have been
// coerced and prefixed for one table. The only way to obtain a marked item is
// Preprocessor.Preprocess; the zero value is unmarked and gateways refuse it.
type StorageItem struct {
	table  string
	attrs  storagemodels.FlatRecord
	errs   []error
	marked bool
}

// Table returns the table the item was preprocessed for.
func (i StorageItem) Table() string {
	return i.table
}

// Preprocessed reports whether the item went through a Preprocessor.
func (i StorageItem) Preprocessed() bool {
	return i.marked
}

// Len returns the number of attributes.
func (i StorageItem) Len() int {
	return len(i.attrs)
}

// Get returns a single attribute value.
func (i StorageItem) Get(name string) (any, bool) {
	v, ok := i.attrs[name]
	return v, ok
}

// Attributes returns a copy of the item's attributes.
func (i StorageItem) Attributes() storagemodels.FlatRecord {
	return i.attrs.Clone()
}

// Item returns a copy of the attributes as a row.
func (i StorageItem) Item() storagemodels.Item {
	return storagemodels.Item(i.attrs.Clone())
}

// Errors returns the coercion errors recorded for dropped attributes.
func (i StorageItem) Errors() []error {
	return i.errs
}

// Key extracts the key attribute values for schema.
func (i StorageItem) Key(schema storagemodels.TableSchema) (storagemodels.Key, bool) {
	return storagemodels.Item(i.attrs).KeyOf(schema)
}

// MissingKeys lists key attributes of schema that are absent, null or empty.
func (i StorageItem) MissingKeys(schema storagemodels.TableSchema) []string {
	var missing []string
	for _, name := range schema.KeyNames() {
		v, ok := i.attrs[name]
		if !ok || v == nil || v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// CheckWritable returns a SchemaViolationError unless the item was
// preprocessed for schema and carries every key attribute.
func (i StorageItem) CheckWritable(schema storagemodels.TableSchema) error {
	if !i.marked {
		return errors.NewSchemaViolation(schema.Name, "item was not preprocessed")
	}
	if i.table != schema.Name {
		return errors.NewSchemaViolation(schema.Name, "item was preprocessed for table "+i.table)
	}
	if missing := i.MissingKeys(schema); len(missing) > 0 {
		return errors.NewSchemaViolation(schema.Name, fmt.Sprintf("missing key attributes %q", missing))
	}
	return nil
}

// Preprocessor turns flat records into storage items for one table.
type Preprocessor struct {
	schema   storagemodels.TableSchema
	resolver *PrefixResolver
	logger   *slog.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithPrefix overrides the attribute name prefix derived from the table name.
func WithPrefix(prefix string) Option {
	return func(p *Preprocessor) {
		p.schema.AttributeNamePrefix = prefix
	}
}

// WithLogger sets the logger used to report dropped attributes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Preprocessor) {
		p.logger = logger
	}
}

// NewPreprocessor validates schema and builds its prefix resolver.
func NewPreprocessor(schema storagemodels.TableSchema, opts ...Option) (*Preprocessor, error) {
	p := &Preprocessor{schema: schema, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.schema.Validate(); err != nil {
		return nil, err
	}
	p.resolver = NewPrefixResolver(p.schema)
	return p, nil
}

// Schema returns the table schema.
func (p *Preprocessor) Schema() storagemodels.TableSchema {
	return p.schema
}

// Resolver returns the prefix resolver.
func (p *Preprocessor) Resolver() *PrefixResolver {
	return p.resolver
}

// Preprocess coerces and prefixes the governed attributes of record and
// copies the rest through unchanged. An attribute that fails coercion is
// logged, recorded on the item and left out; the rest of the record is kept.
//
// Attributes already carrying the table prefix are coerced in place, so
// preprocessing a stored row again yields the same item. When both the bare
// and the prefixed form are present, the prefixed one wins.
func (p *Preprocessor) Preprocess(record storagemodels.FlatRecord) StorageItem {
	item := StorageItem{
		table:  p.schema.Name,
		attrs:  make(storagemodels.FlatRecord, len(record)),
		marked: true,
	}

	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)

	var bare []string
	for _, name := range names {
		value := record[name]
		if typ, ok := p.resolver.ResolvePrefixed(name); ok {
			p.store(&item, name, name, value, typ)
			continue
		}
		if _, ok := p.resolver.Resolve(name); ok {
			bare = append(bare, name)
			continue
		}
		item.attrs[name] = value
	}

	for _, name := range bare {
		res, _ := p.resolver.Resolve(name)
		if _, taken := record[res.Name]; taken {
			continue
		}
		p.store(&item, name, res.Name, record[name], res.Type)
	}
	return item
}

// PreprocessDocument flattens doc and preprocesses the result.
func (p *Preprocessor) PreprocessDocument(doc storagemodels.RawDocument, opts ...flatten.Option) StorageItem {
	return p.Preprocess(flatten.Flatten(doc, opts...))
}

func (p *Preprocessor) store(item *StorageItem, source, target string, value any, typ storagemodels.AttributeType) {
	if value == nil {
		item.attrs[target] = nil
		return
	}
	coerced, err := Coerce(value, typ)
	if err != nil {
		cerr := &errors.CoercionError{Attribute: source, Value: value, Type: string(typ), Reason: reasonOf(err)}
		item.errs = append(item.errs, cerr)
		p.logger.Error("dropping attribute that failed coercion",
			"table", p.schema.Name,
			"attribute", source,
			"type", string(typ),
			"error", cerr)
		return
	}
	item.attrs[target] = coerced
}

func reasonOf(err error) string {
	if ce, ok := err.(*errors.CoercionError); ok {
		return ce.Reason
	}
	return err.Error()
}
