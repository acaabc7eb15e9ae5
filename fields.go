package views

import "sort"

// FieldDescriptor names one editable form field and its inferred kind, so a
// rendering surface can pick widgets without probing values itself.
type FieldDescriptor struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
}

// DescribeFields enumerates the fields of a form value in key order.
// Reserved keys report their semantic kind; property keys report the filter
// variant they hold.
func DescribeFields(value FormValue) []FieldDescriptor {
	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]FieldDescriptor, 0, len(keys))
	for _, key := range keys {
		out = append(out, FieldDescriptor{
			Key:  key,
			Kind: fieldKind(key, value[key]),
		})
	}
	return out
}

func fieldKind(key string, value any) string {
	switch key {
	case KeySearch:
		return "search"
	case KeySort:
		return "sort"
	case KeyStep:
		return "step"
	case KeyPage:
		return "page"
	case KeyColumns:
		return "columns"
	case KeyView:
		return "view"
	}
	if _, ok := asRangeValue(value); ok {
		return KindRange.String()
	}
	if _, ok := asAnySlice(value); ok {
		return KindList.String()
	}
	return KindScalar.String()
}
