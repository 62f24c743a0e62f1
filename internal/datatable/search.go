package datatable

import (
	"fmt"
	"strings"
)

// Filter returns the items where any of fields contains query,
// compared case-insensitively. An empty query returns items unchanged.
func Filter[T Record](items []T, fields []string, query string) []T {
	if query == "" {
		return items
	}
	needle := strings.ToLower(query)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, fields, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches[T Record](item T, fields []string, needle string) bool {
	for _, field := range fields {
		text, ok := searchText(item.Field(field))
		if ok && strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

// searchText stringifies a field for matching. Absent values never match.
func searchText(v any) (string, bool) {
	v = deref(v)
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return fmt.Sprint(val), true
	}
}
