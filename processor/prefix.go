/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"strings"

	"github.com/suparena/flatstore/storagemodels"
)

// Singularize turns a plural English word into its singular form: a trailing
// "ies" becomes "y", otherwise a trailing "s" is dropped. Irregular plurals
// such as "people" or "indices" are returned wrong or unchanged.
func Singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies"):
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "s"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}

// DerivePrefix returns the attribute name prefix for a table name:
// the singularized, lower-cased name followed by a dot.
func DerivePrefix(tableName string) string {
	return Singularize(strings.ToLower(tableName)) + "."
}

// Resolution is the storage name and declared type of a schema-governed field.
type Resolution struct {
	Name string
	Type storagemodels.AttributeType
}

// PrefixResolver maps bare field names to the prefixed attribute names the
// schema declares.
type PrefixResolver struct {
	prefix   string
	bare     map[string]Resolution
	prefixed map[string]storagemodels.AttributeType
}

// NewPrefixResolver computes the prefix for schema once. An explicit
// AttributeNamePrefix on the schema wins over the derived one.
func NewPrefixResolver(schema storagemodels.TableSchema) *PrefixResolver {
	prefix := schema.AttributeNamePrefix
	if prefix == "" {
		prefix = DerivePrefix(schema.Name)
	}

	r := &PrefixResolver{
		prefix:   prefix,
		bare:     make(map[string]Resolution),
		prefixed: make(map[string]storagemodels.AttributeType),
	}
	for _, def := range schema.AttributeDefinitions {
		if !strings.HasPrefix(def.Name, prefix) {
			continue
		}
		bareName := strings.TrimPrefix(def.Name, prefix)
		if bareName == "" {
			continue
		}
		r.bare[bareName] = Resolution{Name: def.Name, Type: def.Type}
		r.prefixed[def.Name] = def.Type
	}
	return r
}

// Prefix returns the attribute name prefix, including the trailing dot.
func (r *PrefixResolver) Prefix() string {
	return r.prefix
}

// Resolve returns the prefixed name and type for a bare field name.
func (r *PrefixResolver) Resolve(bareName string) (Resolution, bool) {
	res, ok := r.bare[bareName]
	return res, ok
}

// ResolvePrefixed returns the declared type of an already prefixed name.
func (r *PrefixResolver) ResolvePrefixed(name string) (storagemodels.AttributeType, bool) {
	typ, ok := r.prefixed[name]
	return typ, ok
}

// BareNames returns the governed bare names in no particular order.
func (r *PrefixResolver) BareNames() []string {
	names := make([]string, 0, len(r.bare))
	for name := range r.bare {
		names = append(names, name)
	}
	return names
}
