/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package collection

import (
	"fmt"
	"slices"
	"strings"

	"github.com/suparena/flatstore/storagemodels"
)

// Direction is a sort direction
type Direction int

const (
	Asc Direction = iota
	Desc
)

// ParseDirection accepts ASC and DESC in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "":
		return Asc, nil
	case "DESC":
		return Desc, nil
	}
	return Asc, fmt.Errorf("unknown sort direction %q", s)
}

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// SortKey is one attribute of a multi-key sort.
type SortKey struct {
	Attribute string
	Direction Direction
}

// Select projects items onto attributes. Attributes an item does not have
// are omitted from its projection rather than set to nil. With no items or
// no attributes the result is empty.
func Select(items []storagemodels.Item, attributes []string) []storagemodels.Item {
	if len(items) == 0 || len(attributes) == 0 {
		return []storagemodels.Item{}
	}
	out := make([]storagemodels.Item, 0, len(items))
	for _, item := range items {
		projected := make(storagemodels.Item, len(attributes))
		for _, attr := range attributes {
			if v, ok := item[attr]; ok {
				projected[attr] = v
			}
		}
		out = append(out, projected)
	}
	return out
}

// SortByAttributes returns a stably sorted copy of items. The first key is
// the primary order; each later key only breaks ties left by the keys
// before it. Items missing an attribute, or holding nil, sort after those
// that have it in either direction.
func SortByAttributes(items []storagemodels.Item, keys ...SortKey) []storagemodels.Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b storagemodels.Item) int {
		for _, key := range keys {
			if c := compareAttribute(a, b, key); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func compareAttribute(a, b storagemodels.Item, key SortKey) int {
	av, aok := a[key.Attribute]
	bv, bok := b[key.Attribute]
	aok = aok && av != nil
	bok = bok && bv != nil
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	c := Compare(av, bv)
	if key.Direction == Desc {
		return -c
	}
	return c
}

// DistinctValues returns the values of attribute present across items, each
// once, in first-seen order. Items without the attribute contribute nothing.
func DistinctValues(items []storagemodels.Item, attribute string) []any {
	var values []any
	seen := make(map[string]bool)
	for _, item := range items {
		v, ok := item[attribute]
		if !ok || v == nil {
			continue
		}
		id := identity(v)
		if seen[id] {
			continue
		}
		seen[id] = true
		values = append(values, v)
	}
	return values
}

// WhereEquals returns the items whose attribute equals value.
func WhereEquals(items []storagemodels.Item, attribute string, value any) []storagemodels.Item {
	return Filter(items, func(item storagemodels.Item) bool {
		v, ok := item[attribute]
		return ok && Equal(v, value)
	})
}

// Filter returns the elements for which keep returns true.
func Filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Map applies f to every element.
func Map[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i, item := range items {
		out[i] = f(item)
	}
	return out
}
