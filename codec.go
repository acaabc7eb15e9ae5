package views

import "encoding/json"

// Encode flattens a view into its form-editable representation. The result
// is fully detached from the source view, and _search is always present so
// the form surface can bind a search input without probing.
func Encode(view View) FormValue {
	out := make(FormValue, len(view.Properties)+2)
	for key, filter := range view.Properties {
		out[key] = filter.formValue()
	}
	out[KeySearch] = view.Search
	if view.Sort != nil {
		out[KeySort] = *view.Sort
	}
	if view.Step > 0 {
		out[KeyStep] = view.Step
	}
	if view.Page > 0 {
		out[KeyPage] = view.Page
	}
	if view.Columns != nil {
		out[KeyColumns] = append([]string(nil), view.Columns...)
	}
	if view.Name != "" {
		out[KeyView] = view.Name
	}
	return out
}

// Decode rebuilds a view from a form value. When _view names an entry of the
// collection the result is seeded with a deep copy of that entry; a name
// with no match seeds an empty view rather than failing, so a stale preset
// reference degrades to an unnamed configuration. Remaining non-reserved
// keys become properties, merged over any the seed already carried.
func Decode(value FormValue, collection ViewCollection) View {
	var out View
	if name := value.ViewName(); name != "" {
		if seed, ok := collection.ByName(name); ok {
			out = seed.Clone()
		}
	}
	for key, raw := range value {
		switch key {
		case KeyView:
			if name, ok := raw.(string); ok {
				out.Name = name
			}
		case KeySearch:
			if search, ok := raw.(string); ok {
				out.Search = search
			}
		case KeySort:
			if spec, ok := asSortSpec(raw); ok {
				out.Sort = &spec
			}
		case KeyStep:
			if n, ok := asInt(raw); ok {
				out.Step = n
			}
		case KeyPage:
			if n, ok := asInt(raw); ok {
				out.Page = n
			}
		case KeyColumns:
			if columns, ok := asStringSlice(raw); ok {
				out.Columns = columns
			}
		default:
			if out.Properties == nil {
				out.Properties = make(map[string]PropertyFilter)
			}
			out.Properties[key] = filterFromForm(raw)
		}
	}
	return out
}

func (f PropertyFilter) formValue() any {
	switch f.Kind {
	case KindRange:
		return RangeValue{Min: f.Min, Max: f.Max}
	case KindList:
		list := make([]any, len(f.List))
		for i, v := range f.List {
			list[i] = cloneAny(v)
		}
		return list
	default:
		return cloneAny(f.Scalar)
	}
}

func filterFromForm(value any) PropertyFilter {
	if bounds, ok := asRangeValue(value); ok {
		return RangeFilter(bounds.Min, bounds.Max)
	}
	switch typed := value.(type) {
	case []any:
		return ListFilter(typed...)
	case []string:
		list := make([]any, len(typed))
		for i, v := range typed {
			list[i] = v
		}
		return PropertyFilter{Kind: KindList, List: list}
	default:
		return ScalarFilter(cloneAny(value))
	}
}

// asRangeValue accepts both the typed RangeValue and the raw wire wrapper
// {"_range":[min,max]} that JSON decoding produces.
func asRangeValue(value any) (RangeValue, bool) {
	switch typed := value.(type) {
	case RangeValue:
		return typed, true
	case *RangeValue:
		if typed != nil {
			return *typed, true
		}
	case map[string]any:
		if len(typed) != 1 {
			return RangeValue{}, false
		}
		raw, ok := typed[RangeKey]
		if !ok {
			return RangeValue{}, false
		}
		bounds, ok := raw.([]any)
		if !ok || len(bounds) != 2 {
			return RangeValue{}, false
		}
		min, okMin := asFloat(bounds[0])
		max, okMax := asFloat(bounds[1])
		if !okMin || !okMax {
			return RangeValue{}, false
		}
		return RangeValue{Min: min, Max: max}, true
	}
	return RangeValue{}, false
}

func asSortSpec(value any) (SortSpec, bool) {
	switch typed := value.(type) {
	case SortSpec:
		return typed, true
	case *SortSpec:
		if typed != nil {
			return *typed, true
		}
	case map[string]any:
		field, _ := typed["field"].(string)
		order, _ := typed["order"].(string)
		if field == "" {
			return SortSpec{}, false
		}
		return SortSpec{Field: field, Order: order}, true
	}
	return SortSpec{}, false
}

func asInt(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		return int(typed), true
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		if n, err := typed.Float64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

func asStringSlice(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...), true
	case []any:
		out := make([]string, 0, len(typed))
		for _, v := range typed {
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
