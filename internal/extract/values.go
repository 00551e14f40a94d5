package extract

import (
	"math"
	"strconv"
	"strings"
)

// Object returns the nested object stored under key.
func (n Node) Object(key string) (Node, bool) {
	if n == nil {
		return nil, false
	}
	return AsObject(n[key])
}

// Array returns the array stored under key.
func (n Node) Array(key string) ([]any, bool) {
	if n == nil {
		return nil, false
	}
	arr, ok := n[key].([]any)
	return arr, ok
}

// String returns the trimmed string stored under key; blank strings count as missing.
func (n Node) String(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	return AsString(n[key])
}

// Int returns the integer stored under key.
func (n Node) Int(key string) (int, bool) {
	if n == nil {
		return 0, false
	}
	return AsInt(n[key])
}

// AsObject converts a decoded value into a Node.
func AsObject(v any) (Node, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return Node(obj), true
	case Node:
		return obj, true
	default:
		return nil, false
	}
}

// AsString returns v trimmed when it is a non-blank string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// AsInt accepts integral JSON numbers and numeric strings ("7").
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// AsStrings collects the string elements of an array value. Non-string elements are
// skipped; blank strings are kept as "" so callers can decide how to treat them.
func AsStrings(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		if strs, isStrings := v.([]string); isStrings {
			return append([]string(nil), strs...)
		}
		return nil
	}

	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, isString := item.(string); isString {
			out = append(out, s)
		}
	}
	return out
}
