/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/flatstore/storagemodels"
)

func people() []storagemodels.Item {
	return []storagemodels.Item{
		{"name": "Alice", "age": int64(30), "score": int64(85)},
		{"name": "Bob", "age": int64(25), "score": int64(90)},
		{"name": "Charlie", "age": int64(35), "score": int64(80)},
		{"name": "David", "age": int64(25), "score": int64(88)},
	}
}

func names(items []storagemodels.Item) []string {
	return Map(items, func(item storagemodels.Item) string { return item["name"].(string) })
}

func TestSelect(t *testing.T) {
	items := []storagemodels.Item{{"a": 1, "b": 2}, {"a": 3}}
	got := Select(items, []string{"a", "b"})

	assert.Equal(t, []storagemodels.Item{{"a": 1, "b": 2}, {"a": 3}}, got)
	_, present := got[1]["b"]
	assert.False(t, present, "absent attributes are omitted, not nil")

	assert.Empty(t, Select(items, nil))
	assert.Empty(t, Select(nil, []string{"a"}))
}

func TestSelectDoesNotAlias(t *testing.T) {
	items := []storagemodels.Item{{"a": 1, "b": 2}}
	got := Select(items, []string{"a"})
	got[0]["a"] = 99
	assert.Equal(t, 1, items[0]["a"])
}

func TestSortByAttributes(t *testing.T) {
	got := SortByAttributes(people(),
		SortKey{Attribute: "age", Direction: Asc},
		SortKey{Attribute: "score", Direction: Desc})
	assert.Equal(t, []string{"Bob", "David", "Alice", "Charlie"}, names(got))

	// the first key is primary
	got = SortByAttributes(people(),
		SortKey{Attribute: "score", Direction: Desc},
		SortKey{Attribute: "age", Direction: Asc})
	assert.Equal(t, []string{"Bob", "David", "Alice", "Charlie"}, names(got))

	got = SortByAttributes(people(), SortKey{Attribute: "age", Direction: Desc})
	assert.Equal(t, []string{"Charlie", "Alice", "Bob", "David"}, names(got), "ties keep input order")
}

func TestSortByAttributesStrings(t *testing.T) {
	items := []storagemodels.Item{
		{"name": "b", "publishedAt": "2025-02-05T11:35:37Z"},
		{"name": "a", "publishedAt": "2024-12-31T23:59:59Z"},
		{"name": "c", "publishedAt": "2025-03-01T00:00:00Z"},
		{"name": "missing"},
	}
	got := SortByAttributes(items, SortKey{Attribute: "publishedAt", Direction: Desc})
	assert.Equal(t, []string{"c", "b", "a", "missing"}, names(got))

	got = SortByAttributes(items, SortKey{Attribute: "publishedAt", Direction: Asc})
	assert.Equal(t, []string{"a", "b", "c", "missing"}, names(got))
}

func TestSortByAttributesMixedTypes(t *testing.T) {
	items := []storagemodels.Item{
		{"name": "str", "v": "10"},
		{"name": "float", "v": 2.5},
		{"name": "bool", "v": true},
		{"name": "int", "v": int64(3)},
		{"name": "nil", "v": nil},
	}
	got := SortByAttributes(items, SortKey{Attribute: "v"})
	assert.Equal(t, []string{"bool", "float", "int", "str", "nil"}, names(got))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	items := people()
	_ = SortByAttributes(items, SortKey{Attribute: "age"})
	assert.Equal(t, []string{"Alice", "Bob", "Charlie", "David"}, names(items))
}

func TestDistinctValues(t *testing.T) {
	items := []storagemodels.Item{
		{"response.queryDetails.q": "SpaceX"},
		{"response.queryDetails.q": "Agentful"},
		{"response.queryDetails.q": "SpaceX"},
		{"other": "x"},
	}
	got := DistinctValues(items, "response.queryDetails.q")
	assert.Equal(t, []any{"SpaceX", "Agentful"}, got)

	assert.Equal(t, []any{int64(1), "1"},
		DistinctValues([]storagemodels.Item{{"n": int64(1)}, {"n": 1.0}, {"n": "1"}}, "n"))
	assert.Empty(t, DistinctValues(items, "absent"))
}

func TestIndexByKey(t *testing.T) {
	items := []storagemodels.Item{
		{"etag": "e1", "n": 1},
		{"etag": "e2", "n": 2},
		{"etag": "e1", "n": 3},
		{"n": 4},
		{"etag": "e1", "n": 5},
	}
	idx := IndexByKey(items, AttributeKey("etag"))

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"e1", "e2"}, idx.Keys())
	assert.True(t, idx.HasCollision("e1"))
	assert.False(t, idx.HasCollision("e2"))
	assert.Equal(t, []string{"e1"}, idx.Collisions())

	all := idx.All("e1")
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[1]["n"])

	one, ok := idx.One("e2")
	require.True(t, ok)
	assert.Equal(t, 2, one["n"])

	_, ok = idx.One("missing")
	assert.False(t, ok)

	require.Len(t, idx.Unkeyed(), 1)
	assert.Equal(t, 4, idx.Unkeyed()[0]["n"])
}

func TestCompositeKey(t *testing.T) {
	key := CompositeKey("snippet.channelId", "snippet.publishedAt", "etag")

	got, ok := key(storagemodels.Item{"snippet.channelId": "UC1", "snippet.publishedAt": "2025", "etag": ""})
	require.True(t, ok)
	assert.Equal(t, "snippet.channelId:UC1-snippet.publishedAt:2025", got)

	_, ok = key(storagemodels.Item{"title": "x"})
	assert.False(t, ok)
}

func TestSortedByKey(t *testing.T) {
	items := []storagemodels.Item{
		{"id": "c", "n": 1},
		{"id": "a", "n": 2},
		{"id": "c", "n": 3},
		{"id": "b", "n": 4},
	}
	sorted := IndexByKey(items, AttributeKey("id")).SortedByKey()
	got := Map(sorted, func(item storagemodels.Item) int { return item["n"].(int) })
	assert.Equal(t, []int{2, 4, 1, 3}, got)
}

func TestWhereEquals(t *testing.T) {
	got := WhereEquals(people(), "age", 25)
	assert.Equal(t, []string{"Bob", "David"}, names(got))
	assert.Empty(t, WhereEquals(people(), "age", "25"))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)
	assert.Equal(t, "DESC", d.String())

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
