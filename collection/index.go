/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package collection

import (
	"sort"
	"strings"

	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

// KeyFunc derives an index key from an item. It returns false when the item
// has no key.
type KeyFunc func(item storagemodels.Item) (string, bool)

// AttributeKey keys items by the string form of one attribute.
func AttributeKey(attribute string) KeyFunc {
	return func(item storagemodels.Item) (string, bool) {
		v, ok := item[attribute]
		if !ok || v == nil {
			return "", false
		}
		return processor.ToString(v), true
	}
}

// CompositeKey keys items by "attr:value" parts joined with "-". Attributes
// that are absent or empty on an item are left out of its key.
func CompositeKey(attributes ...string) KeyFunc {
	return func(item storagemodels.Item) (string, bool) {
		parts := make([]string, 0, len(attributes))
		for _, attr := range attributes {
			v, ok := item[attr]
			if !ok || v == nil {
				continue
			}
			s := processor.ToString(v)
			if s == "" {
				continue
			}
			parts = append(parts, attr+":"+s)
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, "-"), true
	}
}

// Index maps keys to the items that produced them. A key normally holds one
// item; when several items share a key all of them are kept.
type Index struct {
	keys    []string
	entries map[string][]storagemodels.Item
	unkeyed []storagemodels.Item
}

// IndexByKey builds an index over items. Items for which keyFn reports no
// key are kept aside and available through Unkeyed.
func IndexByKey(items []storagemodels.Item, keyFn KeyFunc) *Index {
	idx := &Index{entries: make(map[string][]storagemodels.Item, len(items))}
	for _, item := range items {
		key, ok := keyFn(item)
		if !ok {
			idx.unkeyed = append(idx.unkeyed, item)
			continue
		}
		if _, seen := idx.entries[key]; !seen {
			idx.keys = append(idx.keys, key)
		}
		idx.entries[key] = append(idx.entries[key], item)
	}
	return idx
}

// Len returns the number of distinct keys
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Keys returns the keys in first-seen order
func (idx *Index) Keys() []string {
	return append([]string(nil), idx.keys...)
}

// One returns the item stored under key. For a collided key it returns the
// first item indexed.
func (idx *Index) One(key string) (storagemodels.Item, bool) {
	items := idx.entries[key]
	if len(items) == 0 {
		return nil, false
	}
	return items[0], true
}

// All returns every item stored under key, in indexing order.
func (idx *Index) All(key string) []storagemodels.Item {
	return idx.entries[key]
}

// HasCollision reports whether more than one item produced key.
func (idx *Index) HasCollision(key string) bool {
	return len(idx.entries[key]) > 1
}

// Collisions returns the keys shared by more than one item.
func (idx *Index) Collisions() []string {
	var keys []string
	for _, key := range idx.keys {
		if idx.HasCollision(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Unkeyed returns the items the key function could not key.
func (idx *Index) Unkeyed() []storagemodels.Item {
	return idx.unkeyed
}

// SortedByKey returns the indexed items ordered by key. Items sharing a key
// keep their indexing order.
func (idx *Index) SortedByKey() []storagemodels.Item {
	keys := idx.Keys()
	sort.Strings(keys)
	out := make([]storagemodels.Item, 0, len(keys))
	for _, key := range keys {
		out = append(out, idx.entries[key]...)
	}
	return out
}
