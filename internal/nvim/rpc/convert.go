package rpc

// Coercion helpers for decoded msgpack values. The decoder produces
// loose types (int64, uint64, float64, string, []byte, []any, maps,
// handle ids); engine API results are picked apart with these.

// AsInt coerces a decoded value to int64.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case BufferID:
		return int64(n), true
	case WindowID:
		return int64(n), true
	case TabpageID:
		return int64(n), true
	default:
		return 0, false
	}
}

// AsString coerces a decoded value to a string.
func AsString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

// AsBool coerces a decoded value to a bool.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsSlice coerces a decoded value to a []any.
func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// AsMap coerces a decoded value to a string-keyed map. Maps with
// non-string keys are converted when every key coerces to a string.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := AsString(k)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// AsStringSlice coerces a decoded array to []string. Non-string
// elements fail the whole conversion.
func AsStringSlice(v any) ([]string, bool) {
	s, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(s))
	for i, el := range s {
		str, ok := AsString(el)
		if !ok {
			return nil, false
		}
		out[i] = str
	}
	return out, true
}
