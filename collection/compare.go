/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package collection

import (
	"cmp"
	"fmt"
)

// kind ranks value types so that mixed columns still have a total order.
type kind int

const (
	kindBool kind = iota
	kindNumber
	kindString
	kindOther
)

func kindOf(v any) kind {
	switch v.(type) {
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return kindNumber
	case string:
		return kindString
	}
	return kindOther
}

// Compare orders two attribute values: false before true, numbers
// numerically, strings lexicographically. Values of different kinds order
// by kind. It does not handle missing values.
func Compare(a, b any) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case kindNumber:
		return compareNumbers(a, b)
	case kindString:
		return cmp.Compare(a.(string), b.(string))
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Equal reports whether two attribute values are the same, treating numbers
// of different Go types as equal when their values are.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if kindOf(a) == kindOther || kindOf(b) == kindOther {
		return kindOf(a) == kindOf(b) && fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
	}
	return Compare(a, b) == 0
}

// identity renders v so that values Equal reports as equal render the same.
func identity(v any) string {
	k := kindOf(v)
	switch k {
	case kindNumber:
		if i, ok := asInt(v); ok {
			return fmt.Sprintf("%d|%d", k, i)
		}
		f := asFloat(v)
		if f == float64(int64(f)) {
			return fmt.Sprintf("%d|%d", k, int64(f))
		}
		return fmt.Sprintf("%d|%v", k, f)
	case kindOther:
		return fmt.Sprintf("%d|%#v", k, v)
	}
	return fmt.Sprintf("%d|%v", k, v)
}

func compareNumbers(a, b any) int {
	if x, ok := asInt(a); ok {
		if y, ok := asInt(b); ok {
			return cmp.Compare(x, y)
		}
	}
	return cmp.Compare(asFloat(a), asFloat(b))
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	}
	i, _ := asInt(v)
	return float64(i)
}
