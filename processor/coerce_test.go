/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"integer string", "12", int64(12)},
		{"float string", "12.5", 12.5},
		{"padded string", " 42 ", int64(42)},
		{"exponent string", "1e3", float64(1000)},
		{"int", 7, int64(7)},
		{"uint8", uint8(200), int64(200)},
		{"integral float", 3.0, int64(3)},
		{"fractional float", 2.75, 2.75},
		{"json number", json.Number("99"), int64(99)},
		{"bool", true, int64(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.value, storagemodels.TypeNumber)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceNumberFailures(t *testing.T) {
	for _, value := range []any{"abc", "", "NaN", "Inf", nil, math.NaN(), []int{1}} {
		_, err := Coerce(value, storagemodels.TypeNumber)
		if assert.Error(t, err, "%v", value) {
			assert.True(t, errors.IsCoercion(err))
			assert.Contains(t, err.Error(), "not a number")
		}
	}
}

func TestCoerceBoolean(t *testing.T) {
	expect := assert.New(t)
	truthy := []any{true, "true", "TRUE", "1", "yes", "Yes", 1, -3, 0.5, json.Number("2")}
	falsy := []any{false, "false", "False", "0", "no", "NO", 0, 0.0, uint(0)}
	for _, v := range truthy {
		got, err := Coerce(v, storagemodels.TypeBoolean)
		expect.NoError(err, "%v", v)
		expect.Equal(true, got, "%v", v)
	}
	for _, v := range falsy {
		got, err := Coerce(v, storagemodels.TypeBoolean)
		expect.NoError(err, "%v", v)
		expect.Equal(false, got, "%v", v)
	}
	for _, v := range []any{"maybe", "", " true", nil, map[string]any{}} {
		_, err := Coerce(v, storagemodels.TypeBoolean)
		if expect.Error(err, "%v", v) {
			expect.True(errors.IsCoercion(err))
			expect.Contains(err.Error(), "not a boolean")
		}
	}
}

func TestCoerceString(t *testing.T) {
	expect := assert.New(t)
	ts, err := strfmt.ParseDateTime("2025-02-05T11:35:37Z")
	expect.NoError(err)

	tests := []struct {
		value any
		want  string
	}{
		{"UC123", "UC123"},
		{nil, ""},
		{12, "12"},
		{12.5, "12.5"},
		{1e21, "1000000000000000000000"},
		{true, "true"},
		{[]byte("raw"), "raw"},
		{[]any{"a", 1}, `["a",1]`},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
		{ts, "2025-02-05T11:35:37.000Z"},
	}
	for _, tt := range tests {
		got, err := Coerce(tt.value, storagemodels.TypeString)
		expect.NoError(err)
		expect.Equal(tt.want, got)
	}
}

func TestCoerceUnknownType(t *testing.T) {
	_, err := Coerce("x", storagemodels.AttributeType("binary-set"))
	assert.True(t, errors.IsCoercion(err))
}
