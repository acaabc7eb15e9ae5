package views

// FilterKind identifies the variant carried by a PropertyFilter.
type FilterKind int

const (
	// KindScalar holds a single comparable value (string, number, bool).
	KindScalar FilterKind = iota
	// KindList holds a multi-select sequence of scalar values.
	KindList
	// KindRange holds a numeric min/max bound.
	KindRange
)

func (k FilterKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// PropertyFilter constrains one data property. The Kind tag selects which of
// the variant fields is meaningful; the others stay at their zero value.
type PropertyFilter struct {
	Kind   FilterKind
	Scalar any
	List   []any
	Min    float64
	Max    float64
}

// ScalarFilter builds a single-value constraint.
func ScalarFilter(value any) PropertyFilter {
	return PropertyFilter{Kind: KindScalar, Scalar: value}
}

// ListFilter builds a multi-select constraint. The values are copied so the
// filter stays detached from the caller's slice.
func ListFilter(values ...any) PropertyFilter {
	list := make([]any, len(values))
	copy(list, values)
	return PropertyFilter{Kind: KindList, List: list}
}

// RangeFilter builds a numeric min/max constraint.
func RangeFilter(min, max float64) PropertyFilter {
	return PropertyFilter{Kind: KindRange, Min: min, Max: max}
}

func (f PropertyFilter) clone() PropertyFilter {
	out := f
	if f.List != nil {
		out.List = make([]any, len(f.List))
		for i, v := range f.List {
			out.List[i] = cloneAny(v)
		}
	}
	if f.Kind == KindScalar {
		out.Scalar = cloneAny(f.Scalar)
	}
	return out
}

// SortSpec orders a dataset by one field.
type SortSpec struct {
	Field string `json:"field"`
	Order string `json:"order"` // ASC or DESC
}

// View describes a dataset's current search, filter, sort, pagination and
// column configuration. A View with a Name is a preset selectable by
// reference from a FormValue's _view key.
type View struct {
	Name       string
	Properties map[string]PropertyFilter
	Search     string
	Sort       *SortSpec
	Step       int
	Page       int
	Columns    []string

	// Rule is an optional predicate evaluated by a Matcher to decide
	// whether this preset applies to a given context.
	Rule string
}

// Clone returns a deep, independent copy of the view. Mutating the clone
// never affects the original.
func (v View) Clone() View {
	out := v
	if v.Properties != nil {
		out.Properties = make(map[string]PropertyFilter, len(v.Properties))
		for key, filter := range v.Properties {
			out.Properties[key] = filter.clone()
		}
	}
	if v.Sort != nil {
		sort := *v.Sort
		out.Sort = &sort
	}
	if v.Columns != nil {
		out.Columns = append([]string(nil), v.Columns...)
	}
	return out
}

// ViewCollection is an ordered sequence of views. Names are unique among
// entries that carry one; unnamed entries are permitted.
type ViewCollection []View

// ByName looks up the first view with the given name. The boolean reports
// whether a match was found; a missing name is not an error.
func (c ViewCollection) ByName(name string) (View, bool) {
	if name == "" {
		return View{}, false
	}
	for _, view := range c {
		if view.Name == name {
			return view, true
		}
	}
	return View{}, false
}

// Names returns the names of all named views in collection order.
func (c ViewCollection) Names() []string {
	names := make([]string, 0, len(c))
	for _, view := range c {
		if view.Name != "" {
			names = append(names, view.Name)
		}
	}
	return names
}
