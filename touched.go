package views

import "strings"

// TransformTouched maps a set of touched field paths to their current
// values. Paths are dot-segmented; a path whose second segment is the range
// sentinel (e.g. "age._range") addresses the internals of a compound field,
// so its entry carries the whole property value while keeping the literal
// path as the report key. Every other path is looked up as-is.
func TransformTouched(touched []string, value FormValue) map[string]any {
	if len(touched) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(touched))
	for _, path := range touched {
		segments := strings.Split(path, ".")
		if len(segments) > 1 && segments[1] == RangeKey {
			out[path] = value[segments[0]]
			continue
		}
		out[path] = value[path]
	}
	return out
}
