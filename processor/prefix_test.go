/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suparena/flatstore/storagemodels"
)

func TestSingularize(t *testing.T) {
	tests := map[string]string{
		"snippets":  "snippet",
		"responses": "response",
		"queries":   "query",
		"data":      "data",
		"status":    "statu",
		"people":    "people",
		"":          "",
	}
	for in, want := range tests {
		if got := Singularize(in); got != want {
			t.Errorf("Singularize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDerivePrefix(t *testing.T) {
	assert.Equal(t, "snippet.", DerivePrefix("Snippets"))
	assert.Equal(t, "category.", DerivePrefix("Categories"))
}

func snippetSchema() storagemodels.TableSchema {
	return storagemodels.TableSchema{
		Name: "Snippets",
		KeyAttributes: []storagemodels.KeyAttribute{
			{Name: "snippet.channelId", Role: storagemodels.RolePartition},
			{Name: "snippet.publishedAt", Role: storagemodels.RoleSort},
		},
		AttributeDefinitions: []storagemodels.AttributeDefinition{
			{Name: "snippet.channelId", Type: storagemodels.TypeString},
			{Name: "snippet.publishedAt", Type: storagemodels.TypeString},
			{Name: "snippet.viewCount", Type: storagemodels.TypeNumber},
			{Name: "snippet.live", Type: storagemodels.TypeBoolean},
			{Name: "response_id", Type: storagemodels.TypeString},
		},
	}
}

func TestPrefixResolver(t *testing.T) {
	expect := assert.New(t)
	r := NewPrefixResolver(snippetSchema())
	expect.Equal("snippet.", r.Prefix())

	res, ok := r.Resolve("channelId")
	expect.True(ok)
	expect.Equal(Resolution{Name: "snippet.channelId", Type: storagemodels.TypeString}, res)

	_, ok = r.Resolve("title")
	expect.False(ok, "undeclared fields are not governed")
	_, ok = r.Resolve("response_id")
	expect.False(ok, "declared fields outside the prefix are not governed")

	typ, ok := r.ResolvePrefixed("snippet.viewCount")
	expect.True(ok)
	expect.Equal(storagemodels.TypeNumber, typ)

	names := r.BareNames()
	sort.Strings(names)
	expect.Equal([]string{"channelId", "live", "publishedAt", "viewCount"}, names)
}

func TestPrefixResolverOverride(t *testing.T) {
	expect := assert.New(t)
	schema := snippetSchema()
	schema.AttributeNamePrefix = "snippet.live"
	r := NewPrefixResolver(schema)
	expect.Equal("snippet.live", r.Prefix())
	_, ok := r.Resolve("")
	expect.False(ok, "a name equal to the prefix has no bare form")

	schema.AttributeNamePrefix = "response_"
	r = NewPrefixResolver(schema)
	res, ok := r.Resolve("id")
	expect.True(ok)
	expect.Equal("response_id", res.Name)
}
