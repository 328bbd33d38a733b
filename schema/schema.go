// Package schema provides the record definitions and JSON Schema validation
// for every collection the server writes to.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Validate checks a document against a JSON Schema (draft-07 subset).
// Returns nil if validation passes or the schema is nil. Otherwise the
// returned error is a *ValidationError listing every violation found.
//
// Supported JSON Schema keywords:
//   - type (string, number, integer, boolean, object, array, null, or a list of these)
//   - properties, required, additionalProperties
//   - items (for arrays)
//   - minimum, maximum, exclusiveMinimum, exclusiveMaximum
//   - minLength, maxLength
//   - minItems, maxItems
//   - enum
//   - format ("date")
func Validate(schema map[string]any, doc map[string]any) error {
	if schema == nil {
		return nil
	}
	v := &validator{}
	v.value(schema, doc, "$")
	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.violations}
}

type validator struct {
	violations []Violation
}

func (v *validator) fail(path, format string, args ...any) {
	v.violations = append(v.violations, Violation{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) value(schema map[string]any, value any, path string) {
	// A value of the wrong type gets no further checks.
	if t, ok := schema["type"]; ok {
		if !v.checkType(t, value, path) {
			return
		}
	}

	if enumRaw, ok := schema["enum"]; ok {
		if enumList, ok := enumRaw.([]any); ok {
			v.checkEnum(enumList, value, path)
		}
	}

	switch val := value.(type) {
	case map[string]any:
		v.object(schema, val, path)
	case []any:
		v.array(schema, val, path)
	case string:
		v.checkString(schema, val, path)
	case float64:
		v.number(schema, val, path)
	case int:
		v.number(schema, float64(val), path)
	case int64:
		v.number(schema, float64(val), path)
	case json.Number:
		f, _ := val.Float64()
		v.number(schema, f, path)
	}
}

func (v *validator) checkType(t any, value any, path string) bool {
	var allowed []string
	switch ts := t.(type) {
	case string:
		allowed = []string{ts}
	case []any:
		for _, x := range ts {
			if s, ok := x.(string); ok {
				allowed = append(allowed, s)
			}
		}
	case []string:
		allowed = ts
	default:
		return true
	}
	for _, expected := range allowed {
		if typeMatches(expected, value) {
			return true
		}
	}
	if len(allowed) == 1 {
		v.fail(path, "expected type %q, got %q", allowed[0], jsonType(value))
	} else {
		v.fail(path, "expected one of types %v, got %q", allowed, jsonType(value))
	}
	return false
}

func typeMatches(expected string, value any) bool {
	actual := jsonType(value)
	switch expected {
	case "integer":
		// Accept float64 values that are whole numbers
		switch n := value.(type) {
		case float64:
			return n == float64(int64(n))
		case json.Number:
			_, err := n.Int64()
			return err == nil
		}
		return actual == "integer"
	case "number":
		return actual == "number" || actual == "integer"
	}
	return actual == expected
}

func jsonType(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case json.Number:
		return "number"
	case int, int64:
		return "integer"
	default:
		return reflect.TypeOf(v).String()
	}
}

func (v *validator) checkEnum(allowed []any, value any, path string) {
	for _, a := range allowed {
		if reflect.DeepEqual(a, value) {
			return
		}
	}
	v.fail(path, "value not in enum %v", allowed)
}

func (v *validator) object(schema map[string]any, obj map[string]any, path string) {
	if req, ok := schema["required"]; ok {
		for _, field := range stringList(req) {
			if _, exists := obj[field]; !exists {
				v.fail(path+"."+field, "missing required field %q", field)
			}
		}
	}

	propsMap, _ := schema["properties"].(map[string]any)

	// Sorted so violations come out in a stable order.
	fields := make([]string, 0, len(propsMap))
	for field := range propsMap {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		val, exists := obj[field]
		if !exists {
			continue
		}
		ps, ok := propsMap[field].(map[string]any)
		if !ok {
			continue
		}
		v.value(ps, val, path+"."+field)
	}

	if ap, ok := schema["additionalProperties"]; ok {
		if apBool, ok := ap.(bool); ok && !apBool {
			var extra []string
			for field := range obj {
				if _, defined := propsMap[field]; !defined {
					extra = append(extra, field)
				}
			}
			if len(extra) > 0 {
				sort.Strings(extra)
				v.fail(path, "additional properties not allowed: %s", strings.Join(extra, ", "))
			}
		}
	}
}

func (v *validator) array(schema map[string]any, arr []any, path string) {
	if n, ok := toFloat(schema["minItems"]); ok && float64(len(arr)) < n {
		v.fail(path, "array length %d is less than minItems %v", len(arr), n)
	}
	if n, ok := toFloat(schema["maxItems"]); ok && float64(len(arr)) > n {
		v.fail(path, "array length %d is greater than maxItems %v", len(arr), n)
	}
	if itemSchema, ok := schema["items"].(map[string]any); ok {
		for i, elem := range arr {
			v.value(itemSchema, elem, fmt.Sprintf("%s[%d]", path, i))
		}
	}
}

func (v *validator) checkString(schema map[string]any, s string, path string) {
	length := len([]rune(s))
	if n, ok := toFloat(schema["minLength"]); ok && float64(length) < n {
		if n == 1 {
			v.fail(path, "must not be empty")
		} else {
			v.fail(path, "string length %d is less than minLength %v", length, n)
		}
	}
	if n, ok := toFloat(schema["maxLength"]); ok && float64(length) > n {
		v.fail(path, "string length %d is greater than maxLength %v", length, n)
	}
	if format, ok := schema["format"].(string); ok && format == "date" {
		if _, err := ParseDate(s); err != nil {
			v.fail(path, "%q is not an ISO-8601 date", s)
		}
	}
}

func (v *validator) number(schema map[string]any, n float64, path string) {
	if lim, ok := toFloat(schema["minimum"]); ok && n < lim {
		v.fail(path, "%v is less than minimum %v", n, lim)
	}
	if lim, ok := toFloat(schema["maximum"]); ok && n > lim {
		v.fail(path, "%v is greater than maximum %v", n, lim)
	}
	if lim, ok := toFloat(schema["exclusiveMinimum"]); ok && n <= lim {
		v.fail(path, "%v is not greater than exclusiveMinimum %v", n, lim)
	}
	if lim, ok := toFloat(schema["exclusiveMaximum"]); ok && n >= lim {
		v.fail(path, "%v is not less than exclusiveMaximum %v", n, lim)
	}
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, x := range l {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp,
// with or without a zone offset.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.Replace(s, "z", "Z", 1)); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", s)
}
