package views

// Reserved form keys. The underscore prefix keeps them from colliding with
// property names, which may not start with an underscore.
const (
	KeySearch  = "_search"
	KeySort    = "_sort"
	KeyStep    = "_step"
	KeyPage    = "_page"
	KeyColumns = "_columns"
	KeyView    = "_view"

	// RangeKey is the path sentinel under which a range property's bounds
	// are addressed by the form surface (e.g. "age._range").
	RangeKey = "_range"
)

// RangeValue is the flattened representation of a range filter inside a
// FormValue. Its JSON form is the wrapper object {"_range":[min,max]}.
type RangeValue struct {
	Min float64
	Max float64
}

// FormValue is the flat, form-editable representation of a View. Reserved
// keys carry the view-level fields; every other key is a property name whose
// value is a scalar, a []any multi-select, or a RangeValue.
type FormValue map[string]any

// Clone returns a deep copy of the form value. Held form state must never
// alias values supplied by callers or emitted to collaborators.
func (f FormValue) Clone() FormValue {
	if f == nil {
		return nil
	}
	out := make(FormValue, len(f))
	for key, value := range f {
		out[key] = cloneAny(value)
	}
	return out
}

// ViewName returns the value of the _view key, or "" when unset.
func (f FormValue) ViewName() string {
	name, _ := f[KeyView].(string)
	return name
}

// Search returns the value of the _search key, or "" when unset.
func (f FormValue) Search() string {
	search, _ := f[KeySearch].(string)
	return search
}

// Page returns the _page key coerced to an int, or 0 when unset.
func (f FormValue) Page() int {
	page, _ := asInt(f[KeyPage])
	return page
}

func isReservedKey(key string) bool {
	switch key {
	case KeySearch, KeySort, KeyStep, KeyPage, KeyColumns, KeyView:
		return true
	}
	return false
}
