package domain

import (
	"fmt"
	"strconv"
)

// AsMap converts a decoded mapping to map[string]any.
// Mappings decoded from YAML may carry non-string keys; those are formatted.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// AsItems converts a decoded list of mappings to FieldItems.
// Entries that are not mappings are dropped.
func AsItems(v any) (FieldItems, bool) {
	switch list := v.(type) {
	case FieldItems:
		return list, true
	case []map[string]any:
		return FieldItems(list), true
	case []any:
		items := make(FieldItems, 0, len(list))
		for _, entry := range list {
			if m, ok := AsMap(entry); ok {
				items = append(items, m)
			}
		}
		return items, true
	default:
		return nil, false
	}
}

// AsList converts a decoded sequence to []any.
func AsList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case FieldItems:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = item
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = item
		}
		return out, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// AsString formats a scalar value. Nil becomes the empty string.
func AsString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(s)
	}
}

// IsEmpty reports whether a field value carries no data.
func IsEmpty(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case map[string]any:
		return len(s) == 0
	case []any:
		return len(s) == 0
	case FieldItems:
		return len(s) == 0
	default:
		return false
	}
}

// CopyMap deep-copies a mapping.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CopyValue(v)
	}
	return out
}

// CopyItems deep-copies a field value.
func CopyItems(items FieldItems) FieldItems {
	if items == nil {
		return nil
	}
	out := make(FieldItems, len(items))
	for i, item := range items {
		out[i] = CopyMap(item)
	}
	return out
}

// CopyValue deep-copies a decoded value.
func CopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CopyMap(val)
	case map[any]any:
		m, _ := AsMap(val)
		return CopyMap(m)
	case FieldItems:
		return CopyItems(val)
	case []map[string]any:
		return CopyItems(FieldItems(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CopyValue(e)
		}
		return out
	default:
		return val
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}

// AsInt converts a decoded scalar to an int. Unparseable values become 0.
func AsInt(v any) int {
	return asInt(v)
}
