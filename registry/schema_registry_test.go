/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

const snippetsJSON = `{
  "TableName": "Snippets",
  "KeySchema": [
    {"AttributeName": "snippet.channelId", "KeyType": "HASH"},
    {"AttributeName": "snippet.publishedAt", "KeyType": "RANGE"}
  ],
  "AttributeDefinitions": [
    {"AttributeName": "snippet.channelId", "AttributeType": "S"},
    {"AttributeName": "snippet.publishedAt", "AttributeType": "S"},
    {"AttributeName": "snippet.live", "AttributeType": "B"}
  ],
  "ProvisionedThroughput": {"ReadCapacityUnits": 5, "WriteCapacityUnits": 5}
}`

const responsesYAML = `
TableName: Responses
AttributeNamePrefix: resp.
KeySchema:
  - AttributeName: resp.response_id
    KeyType: HASH
AttributeDefinitions:
  - AttributeName: resp.response_id
    AttributeType: string
  - AttributeName: resp.pageInfo.totalResults
    AttributeType: number
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseSchemaJSON(t *testing.T) {
	schema, err := ParseSchema([]byte(snippetsJSON))
	require.NoError(t, err)

	assert.Equal(t, "Snippets", schema.Name)
	assert.Equal(t, "snippet.channelId", schema.PartitionKey())
	assert.Equal(t, "snippet.publishedAt", schema.SortKey())
	typ, ok := schema.AttributeType("snippet.live")
	assert.True(t, ok)
	assert.Equal(t, storagemodels.TypeBoolean, typ)
	require.NotNil(t, schema.Capacity)
	assert.Equal(t, int64(5), schema.Capacity.ReadCapacityUnits)
}

func TestParseSchemaYAML(t *testing.T) {
	schema, err := ParseSchema([]byte(responsesYAML))
	require.NoError(t, err)

	assert.Equal(t, "resp.", schema.AttributeNamePrefix)
	assert.Nil(t, schema.Capacity)
	assert.Equal(t, "", schema.SortKey())
}

func TestParseSchemaInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "TableName: [unclosed"},
		{"missing name", `{"KeySchema": [{"AttributeName": "a", "KeyType": "HASH"}], "AttributeDefinitions": [{"AttributeName": "a", "AttributeType": "S"}]}`},
		{"bad key type", `{"TableName": "T", "KeySchema": [{"AttributeName": "a", "KeyType": "PRIMARY"}], "AttributeDefinitions": [{"AttributeName": "a", "AttributeType": "S"}]}`},
		{"bad attribute type", `{"TableName": "T", "KeySchema": [{"AttributeName": "a", "KeyType": "HASH"}], "AttributeDefinitions": [{"AttributeName": "a", "AttributeType": "X"}]}`},
		{"undeclared key", `{"TableName": "T", "KeySchema": [{"AttributeName": "a", "KeyType": "HASH"}], "AttributeDefinitions": [{"AttributeName": "b", "AttributeType": "S"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err), "got %v", err)
		})
	}
}

func TestConfigOfRoundTrip(t *testing.T) {
	schema, err := ParseSchema([]byte(snippetsJSON))
	require.NoError(t, err)

	config := ConfigOf(schema)
	assert.Equal(t, "RANGE", config.KeySchema[1].KeyType)
	assert.Equal(t, "B", config.AttributeDefinitions[2].AttributeType)

	back, err := config.Schema()
	require.NoError(t, err)
	assert.Equal(t, schema, back)
}

func TestSchemaRegistry(t *testing.T) {
	reg := New()

	snippets, err := reg.LoadFile(writeFile(t, "snippets.json", snippetsJSON))
	require.NoError(t, err)
	_, err = reg.LoadFile(writeFile(t, "responses.yaml", responsesYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Responses", "Snippets"}, reg.Names())

	got, err := reg.Get("Snippets")
	require.NoError(t, err)
	assert.Equal(t, snippets, got)

	_, err = reg.Get("Videos")
	assert.True(t, errors.IsNotFound(err))

	err = reg.Register(snippets)
	assert.True(t, errors.IsConfiguration(err), "duplicate registration should fail")

	_, err = reg.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.IsConfiguration(err))
}
