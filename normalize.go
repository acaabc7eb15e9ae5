package views

import (
	"reflect"
	"sort"
)

// PruneEmpty returns a copy of value without keys whose value is a sequence
// with zero elements. An emptied multi-select means "unset", not "set to
// nothing", so it must not survive into the committed form state.
func PruneEmpty(value FormValue) FormValue {
	out := make(FormValue, len(value))
	for key, v := range value {
		if isEmptySequence(v) {
			continue
		}
		out[key] = v
	}
	return out
}

// ResetPage applies the pagination invalidation rule: whenever the previous
// form state was past page 1, the next state starts back at page 1. The rule
// fires on every edit regardless of which field changed; callers that want
// page-only changes exempted must skip the call themselves. The input is
// never mutated.
func ResetPage(next, prev FormValue) FormValue {
	if prev.Page() <= 1 {
		return next
	}
	out := next.Clone()
	out[KeyPage] = 1
	return out
}

// Reconcile resolves an edited form value against the previously committed
// one.
//
// Switching to a different named view discards every other edit made in the
// same event and yields that view's canonical encoding. Otherwise empty
// sequences are pruned and, when a named view is still selected, the edit is
// compared key-by-key against the view's canonical encoding: any key holding
// a non-falsy value on both sides with different content means the user has
// diverged from the preset, and the _view key is dropped. A field cleared
// back toward its default (falsy or absent on either side) does not count as
// divergence; that asymmetry is intentional.
//
// A _view naming no entry of the collection is handled like an absent
// collection: the name is kept and no divergence check runs.
func Reconcile(next, prev FormValue, collection ViewCollection) FormValue {
	reconciled, _ := reconcile(next, prev, collection)
	return reconciled
}

func reconcile(next, prev FormValue, collection ViewCollection) (FormValue, []Divergence) {
	nextName := next.ViewName()
	if nextName != "" && nextName != prev.ViewName() {
		if view, ok := collection.ByName(nextName); ok {
			return Encode(view), nil
		}
	}

	pruned := PruneEmpty(next)
	name := pruned.ViewName()
	if name == "" {
		return pruned, nil
	}
	view, ok := collection.ByName(name)
	if !ok {
		return pruned, nil
	}

	canonical := PruneEmpty(Encode(view))
	diverged := divergences(pruned, canonical)
	if len(diverged) > 0 {
		delete(pruned, KeyView)
	}
	return pruned, diverged
}

func divergences(edited, canonical FormValue) []Divergence {
	keys := make([]string, 0, len(canonical))
	for key := range canonical {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []Divergence
	for _, key := range keys {
		if key == KeyView {
			continue
		}
		want := canonical[key]
		if isFalsy(want) {
			continue
		}
		got, ok := edited[key]
		if !ok || isFalsy(got) {
			continue
		}
		if equalFormValue(got, want) {
			continue
		}
		out = append(out, Divergence{Key: key, Edited: got, Canonical: want})
	}
	return out
}

func isEmptySequence(value any) bool {
	switch typed := value.(type) {
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	}
	return false
}

// isFalsy mirrors the truthiness rules form surfaces apply to cleared
// inputs: nil, empty string, false and numeric zero. Sequences and maps are
// never falsy here; empty ones are removed by PruneEmpty instead.
func isFalsy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case bool:
		return !typed
	default:
		if n, ok := asFloat(value); ok {
			return n == 0
		}
	}
	return false
}

// equalFormValue compares two form values structurally, tolerating the
// representation drift JSON decoding introduces: numbers widen to float64
// and range wrappers arrive as raw maps.
func equalFormValue(a, b any) bool {
	if ra, ok := asRangeValue(a); ok {
		if rb, ok := asRangeValue(b); ok {
			return ra == rb
		}
		return false
	}
	if na, ok := asFloat(a); ok {
		if nb, ok := asFloat(b); ok {
			return na == nb
		}
		return false
	}
	if sa, ok := asSortSpec(a); ok {
		if sb, ok := asSortSpec(b); ok {
			return sa == sb
		}
		return false
	}
	if la, ok := asAnySlice(a); ok {
		if lb, ok := asAnySlice(b); ok {
			if len(la) != len(lb) {
				return false
			}
			for i := range la {
				if !equalFormValue(la[i], lb[i]) {
					return false
				}
			}
			return true
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asAnySlice(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, true
	}
	return nil, false
}
