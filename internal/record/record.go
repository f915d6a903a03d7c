// Package record defines the semi-structured rows returned by toolkit
// upstreams. A Record has no fixed schema; accessors return neutral defaults
// for missing or mistyped fields instead of failing.
package record

import (
	"encoding/json"
	"strings"
)

// Record maps a field name to a scalar value (string, number, bool) or nil.
type Record map[string]any

// Number returns the numeric value of field, or 0 when the field is absent
// or not a number. Numeric strings are not coerced.
func (r Record) Number(field string) float64 {
	v, ok := r[field]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String returns field as a string and whether it was present as one.
func (r Record) String(field string) (string, bool) {
	s, ok := r[field].(string)
	return s, ok
}

// Text is String with the neutral "" default.
func (r Record) Text(field string) string {
	s, _ := r.String(field)
	return s
}

// Lower returns the lower-cased string value of field. Missing or non-string
// fields report false.
func (r Record) Lower(field string) (string, bool) {
	s, ok := r.String(field)
	if !ok {
		return "", false
	}
	return strings.ToLower(s), true
}
