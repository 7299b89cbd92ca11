/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suparena/flatstore/errors"
)

func snippetSchema() TableSchema {
	return TableSchema{
		Name: "Snippets",
		KeyAttributes: []KeyAttribute{
			{Name: "snippet.channelId", Role: RolePartition},
			{Name: "snippet.publishedAt", Role: RoleSort},
		},
		AttributeDefinitions: []AttributeDefinition{
			{Name: "snippet.channelId", Type: TypeString},
			{Name: "snippet.publishedAt", Type: TypeString},
			{Name: "snippet.views", Type: TypeNumber},
		},
	}
}

func TestParseAttributeType(t *testing.T) {
	expect := assert.New(t)
	cases := map[string]AttributeType{
		"S": TypeString, "string": TypeString,
		"N": TypeNumber, "Number": TypeNumber,
		"B": TypeBoolean, "boolean": TypeBoolean,
	}
	for in, want := range cases {
		got, err := ParseAttributeType(in)
		if expect.NoError(err, in) {
			expect.Equal(want, got, in)
		}
	}
	_, err := ParseAttributeType("SS")
	expect.Error(err)
	expect.Equal("B", TypeBoolean.Code())
}

func TestParseKeyRole(t *testing.T) {
	expect := assert.New(t)
	role, err := ParseKeyRole("HASH")
	expect.NoError(err)
	expect.Equal(RolePartition, role)
	role, err = ParseKeyRole("range")
	expect.NoError(err)
	expect.Equal(RoleSort, role)
	_, err = ParseKeyRole("local")
	expect.Error(err)
}

func TestValidate(t *testing.T) {
	expect := assert.New(t)
	expect.NoError(snippetSchema().Validate())

	undeclared := snippetSchema()
	undeclared.AttributeDefinitions = undeclared.AttributeDefinitions[1:]
	err := undeclared.Validate()
	expect.True(errors.IsConfiguration(err))
	expect.Contains(err.Error(), "snippet.channelId")

	noName := snippetSchema()
	noName.Name = " "
	expect.True(errors.IsConfiguration(noName.Validate()))

	swapped := snippetSchema()
	swapped.KeyAttributes[0].Role, swapped.KeyAttributes[1].Role = RoleSort, RolePartition
	expect.True(errors.IsConfiguration(swapped.Validate()))

	badCapacity := snippetSchema()
	badCapacity.Capacity = &CapacityHints{ReadCapacityUnits: 5}
	expect.True(errors.IsConfiguration(badCapacity.Validate()))
}

func TestSchemaAccessors(t *testing.T) {
	expect := assert.New(t)
	s := snippetSchema()
	expect.Equal([]string{"snippet.channelId", "snippet.publishedAt"}, s.KeyNames())
	expect.Equal("snippet.channelId", s.PartitionKey())
	expect.Equal("snippet.publishedAt", s.SortKey())
	expect.True(s.IsKey("snippet.publishedAt"))
	expect.False(s.IsKey("snippet.views"))

	typ, ok := s.AttributeType("snippet.views")
	expect.True(ok)
	expect.Equal(TypeNumber, typ)

	other := snippetSchema()
	other.AttributeDefinitions = other.AttributeDefinitions[:2]
	expect.True(s.Compatible(other))
	other.KeyAttributes = other.KeyAttributes[:1]
	expect.False(s.Compatible(other))
}

func TestItemKeyOf(t *testing.T) {
	expect := assert.New(t)
	item := Item{"snippet.channelId": "UC1", "snippet.publishedAt": "2025-02-05T11:35:37Z", "title": "X"}
	key, ok := item.KeyOf(snippetSchema())
	expect.True(ok)
	expect.Equal(Key{"snippet.channelId": "UC1", "snippet.publishedAt": "2025-02-05T11:35:37Z"}, key)

	delete(item, "snippet.publishedAt")
	_, ok = item.KeyOf(snippetSchema())
	expect.False(ok)
}

func TestWriteCounts(t *testing.T) {
	expect := assert.New(t)
	var c WriteCounts
	c.Add(WriteCounts{Total: 2, Succeeded: 1, Skipped: 1})
	c.Add(WriteCounts{Total: 1, Failed: 1})
	expect.Equal(WriteCounts{Total: 3, Succeeded: 1, Skipped: 1, Failed: 1}, c)
	expect.False(c.AllFailed())
	expect.True(WriteCounts{Total: 2, Failed: 2}.AllFailed())
	expect.False(WriteCounts{}.AllFailed())
	expect.Equal("skipped", Skipped.String())
}
