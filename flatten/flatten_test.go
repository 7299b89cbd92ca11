/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suparena/flatstore/storagemodels"
)

func searchResponse() map[string]any {
	return map[string]any{
		"kind":          "youtube#searchListResponse",
		"etag":          "abc",
		"nextPageToken": "CAUQAA",
		"pageInfo": map[string]any{
			"totalResults":   1000000,
			"resultsPerPage": 5,
		},
		"queryDetails": map[string]any{
			"part": "snippet",
			"q":    "SpaceX",
		},
		"tags": []any{"rocket", "launch"},
	}
}

func TestFlatten(t *testing.T) {
	expect := assert.New(t)
	flat := Flatten(searchResponse())
	expect.Equal(storagemodels.FlatRecord{
		"kind":                    "youtube#searchListResponse",
		"etag":                    "abc",
		"nextPageToken":           "CAUQAA",
		"pageInfo.totalResults":   1000000,
		"pageInfo.resultsPerPage": 5,
		"queryDetails.part":       "snippet",
		"queryDetails.q":          "SpaceX",
		"tags":                    []any{"rocket", "launch"},
	}, flat)
}

func TestFlattenParentKeyAndSeparator(t *testing.T) {
	expect := assert.New(t)
	flat := Flatten(map[string]any{"a": map[string]any{"b": 1}, "c": 2},
		WithParentKey("root"), WithSeparator("/"))
	expect.Equal(storagemodels.FlatRecord{"root/a/b": 1, "root/c": 2}, flat)

	doc := Unflatten(flat, WithParentKey("root"), WithSeparator("/"))
	expect.Equal(storagemodels.RawDocument{"a": map[string]any{"b": 1}, "c": 2}, doc)
}

func TestRoundTrip(t *testing.T) {
	cases := map[string]map[string]any{
		"empty":  {},
		"flat":   {"a": 1, "b": "two", "c": true},
		"nested": searchResponse(),
		"deep": {
			"l1": map[string]any{
				"l2": map[string]any{
					"l3": map[string]any{"leaf": 3.5},
				},
				"sibling": nil,
			},
		},
		"empty nested map": {"a": map[string]any{}, "b": 1},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Unflatten(Flatten(doc))
			assert.Equal(t, doc, map[string]any(got))
		})
	}
}

func TestExpectedKeysFillLeafLevels(t *testing.T) {
	expect := assert.New(t)
	thumbnails := map[string]any{
		"default": map[string]any{"url": "https://i.ytimg.com/1.jpg", "width": 120, "height": 90},
		"high":    map[string]any{"url": "https://i.ytimg.com/3.jpg"},
	}
	flat := Flatten(thumbnails, WithParentKey("thumbnails"), WithExpectedKeys("url", "width", "height"))
	expect.Equal(storagemodels.FlatRecord{
		"thumbnails.default.url":    "https://i.ytimg.com/1.jpg",
		"thumbnails.default.width":  120,
		"thumbnails.default.height": 90,
		"thumbnails.high.url":       "https://i.ytimg.com/3.jpg",
		"thumbnails.high.width":     nil,
		"thumbnails.high.height":    nil,
	}, flat)

	// the container level holds no leaves, so it is not filled
	_, ok := flat["thumbnails.url"]
	expect.False(ok)
}

func TestExpectedKeysTopLevel(t *testing.T) {
	expect := assert.New(t)
	flat := Flatten(map[string]any{"title": "X"}, WithExpectedKeys("title", "description"))
	expect.Equal(storagemodels.FlatRecord{"title": "X", "description": nil}, flat)

	// an explicit nil is kept as a present value
	flat = Flatten(map[string]any{"title": nil}, WithExpectedKeys("title"))
	expect.Equal(storagemodels.FlatRecord{"title": nil}, flat)
}

func TestCollisionLastWriteWins(t *testing.T) {
	expect := assert.New(t)
	flat := Flatten(map[string]any{
		"a":   map[string]any{"b": "nested"},
		"a.b": "literal",
	})
	expect.Equal(storagemodels.FlatRecord{"a.b": "literal"}, flat)
}

func TestUnflattenDeeperPathWins(t *testing.T) {
	expect := assert.New(t)
	doc := Unflatten(storagemodels.FlatRecord{"a": 1, "a.b": 2})
	expect.Equal(storagemodels.RawDocument{"a": map[string]any{"b": 2}}, doc)
}

func TestFlattenRawDocumentValues(t *testing.T) {
	expect := assert.New(t)
	flat := FlattenDocument(storagemodels.RawDocument{
		"outer": storagemodels.RawDocument{"inner": "v"},
		"tags":  map[string]string{"k": "v"},
	})
	expect.Equal(storagemodels.FlatRecord{"outer.inner": "v", "tags.k": "v"}, flat)
}
