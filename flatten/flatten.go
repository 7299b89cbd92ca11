/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flatten

import (
	"sort"
	"strings"

	"github.com/suparena/flatstore/storagemodels"
)

// DefaultSeparator joins path segments.
const DefaultSeparator = "."

type options struct {
	parentKey    string
	separator    string
	expectedKeys []string
}

// Option configures Flatten and Unflatten.
type Option func(*options)

// WithParentKey prefixes every produced path with key.
func WithParentKey(key string) Option {
	return func(o *options) {
		o.parentKey = key
	}
}

// WithSeparator replaces the default "." separator.
func WithSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.separator = sep
		}
	}
}

// WithExpectedKeys names leaves that must be present at every nesting level
// holding leaf values. Missing ones are emitted with a nil value.
func WithExpectedKeys(keys ...string) Option {
	return func(o *options) {
		o.expectedKeys = append(o.expectedKeys, keys...)
	}
}

func newOptions(opts []Option) options {
	o := options{separator: DefaultSeparator}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Flatten walks nested maps and returns a record keyed by separator-joined
// paths. Lists and other non-map values are stored as they are. An empty
// nested map is stored as a leaf so that Unflatten can restore it.
//
// When two paths collapse to the same key, because a source key contains the
// separator, the later one in key order wins.
func Flatten(doc map[string]any, opts ...Option) storagemodels.FlatRecord {
	o := newOptions(opts)
	out := make(storagemodels.FlatRecord)
	flattenInto(out, doc, o.parentKey, o)
	return out
}

// FlattenDocument is Flatten for a RawDocument.
func FlattenDocument(doc storagemodels.RawDocument, opts ...Option) storagemodels.FlatRecord {
	return Flatten(doc, opts...)
}

func flattenInto(out storagemodels.FlatRecord, level map[string]any, parent string, o options) {
	keys := make([]string, 0, len(level))
	for key := range level {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasLeaf := false
	for _, key := range keys {
		path := join(parent, key, o.separator)
		if nested, ok := asMap(level[key]); ok && len(nested) > 0 {
			flattenInto(out, nested, path, o)
			continue
		}
		hasLeaf = true
		out[path] = level[key]
	}

	if !hasLeaf {
		return
	}
	for _, key := range o.expectedKeys {
		if _, present := level[key]; present {
			continue
		}
		path := join(parent, key, o.separator)
		if _, produced := out[path]; !produced {
			out[path] = nil
		}
	}
}

func join(parent, key, sep string) string {
	if parent == "" {
		return key
	}
	return parent + sep + key
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case storagemodels.RawDocument:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// Unflatten rebuilds the nested document from a flat record. It is the
// inverse of Flatten for documents whose keys do not contain the separator.
// Where a leaf and a deeper path share a prefix, the deeper path wins.
func Unflatten(record storagemodels.FlatRecord, opts ...Option) storagemodels.RawDocument {
	o := newOptions(opts)

	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make(storagemodels.RawDocument)
	for _, key := range keys {
		path := key
		if o.parentKey != "" {
			trimmed, ok := strings.CutPrefix(key, o.parentKey+o.separator)
			if !ok {
				continue
			}
			path = trimmed
		}
		parts := strings.Split(path, o.separator)
		current := map[string]any(result)
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = record[key]
	}
	return result
}
