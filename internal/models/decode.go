package models

import "strconv"

// Provider payloads are not contractually well-typed, so field access is
// tolerant: an absent or uncoercible value degrades to a default instead of
// failing the whole record.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func listField(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// floatField returns the numeric value of a field that is expected to always
// exist; absent or uncoercible values become 0.
func floatField(m map[string]any, key string) float64 {
	f, _ := coerceFloat(m[key])
	return f
}

// floatPtrField returns nil for fields that are genuinely optional, keeping
// "not configured" distinguishable from an actual zero.
func floatPtrField(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	f, ok := coerceFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// intField reports ok=false when the field is absent or uncoercible, so
// callers can drop records that lack a required identifier.
func intField(m map[string]any, key string) (int64, bool) {
	f, ok := coerceFloat(m[key])
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func intPtrField(m map[string]any, key string) *int64 {
	n, ok := intField(m, key)
	if !ok {
		return nil
	}
	return &n
}
