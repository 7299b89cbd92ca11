/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/storagemodels"
)

// Coerce converts value to the declared attribute type. Numbers come back as
// int64 when they are integral and float64 otherwise.
func Coerce(value any, typ storagemodels.AttributeType) (any, error) {
	switch typ {
	case storagemodels.TypeString:
		return ToString(value), nil
	case storagemodels.TypeNumber:
		return ToNumber(value)
	case storagemodels.TypeBoolean:
		return ToBoolean(value)
	}
	return nil, errors.NewCoercionError(value, string(typ), "unknown attribute type")
}

// ToString renders value in its natural string form. It never fails.
func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		if data, err := json.Marshal(value); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(value)
}

// ToNumber parses an integer first and falls back to a float.
func ToNumber(value any) (any, error) {
	notANumber := func() error {
		return errors.NewCoercionError(value, string(storagemodels.TypeNumber), "not a number")
	}

	switch v := value.(type) {
	case nil:
		return nil, notANumber()
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return parseNumber(v, notANumber)
	case json.Number:
		return parseNumber(v.String(), notANumber)
	case float32:
		return normalizeFloat(float64(v), notANumber)
	case float64:
		return normalizeFloat(v, notANumber)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u), nil
		}
		return int64(u), nil
	}
	return nil, notANumber()
}

func parseNumber(s string, fail func() error) (any, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fail()
	}
	return f, nil
}

func normalizeFloat(f float64, fail func() error) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fail()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), nil
	}
	return f, nil
}

// ToBoolean accepts booleans, the strings true/1/yes and false/0/no in any
// case, and numbers (nonzero is true).
func ToBoolean(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, errors.NewCoercionError(value, string(storagemodels.TypeBoolean), "not a boolean")
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f != 0, nil
		}
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}
	return false, errors.NewCoercionError(value, string(storagemodels.TypeBoolean), "not a boolean")
}
