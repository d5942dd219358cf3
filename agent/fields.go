package agent

import "fmt"

// stringField reads a string from the input fields with a default.
func stringField(fields map[string]any, key, fallback string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// intField reads an integer from the input fields with a default, tolerating
// float64 values from decoded JSON.
func intField(fields map[string]any, key string, fallback int) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// mapField reads a nested map from the input fields, returning an empty map
// when absent or mistyped.
func mapField(fields map[string]any, key string) map[string]any {
	if v, ok := fields[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}

// stringValue renders any adaptation value for prompt embedding.
func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
