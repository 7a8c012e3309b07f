package registry

import (
	"fmt"
)

// Argument extraction helpers shared by all tool handlers. Missing required
// arguments and wrong types are reported as plain errors so handlers can
// surface them as tool-level error results.

// RequiredString extracts a non-empty string argument.
func RequiredString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("argument %s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s must be a string", key)
	}
	if s == "" {
		return "", fmt.Errorf("argument %s is required", key)
	}
	return s, nil
}

// OptionalString extracts a string argument, or def when absent.
func OptionalString(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

// RequiredInt extracts an integer argument. JSON numbers arrive as float64.
func RequiredInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("argument %s is required", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %s must be a number", key)
	}
	return int(f), nil
}

// OptionalInt extracts an integer argument, or def when absent.
func OptionalInt(args map[string]any, key string, def int) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return def
}

// OptionalBool extracts a boolean argument, or def when absent.
func OptionalBool(args map[string]any, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

// StringSlice extracts a string-array argument. A bare string is accepted
// as a one-element slice; absence yields nil.
func StringSlice(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, nil
		}
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("argument %s must be an array of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return t, nil
	default:
		return nil, fmt.Errorf("argument %s must be an array of strings", key)
	}
}

// RequiredStringSlice extracts a non-empty string-array argument.
func RequiredStringSlice(args map[string]any, key string) ([]string, error) {
	out, err := StringSlice(args, key)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("argument %s is required", key)
	}
	return out, nil
}

// OptionalMap extracts an object argument, or nil when absent.
func OptionalMap(args map[string]any, key string) (map[string]any, error) {
	v, ok := args[key]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %s must be an object", key)
	}
	return m, nil
}
