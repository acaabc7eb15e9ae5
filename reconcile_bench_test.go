package views

import (
	"fmt"
	"testing"
)

func BenchmarkReconcileWithTrace(b *testing.B) {
	properties := make(map[string]PropertyFilter, 10)
	for i := 0; i < 10; i++ {
		properties[fmt.Sprintf("field_%d", i)] = ScalarFilter(fmt.Sprintf("value_%d", i))
	}
	collection := ViewCollection{{
		Name:       "bench",
		Properties: properties,
		Search:     "query",
		Page:       2,
	}}
	prev := Encode(collection[0])
	next := prev.Clone()
	next["field_3"] = "edited"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, report := ReconcileWithTrace(next, prev, collection); !report.Diverged() {
			b.Fatalf("expected divergence")
		}
	}
}

func BenchmarkEncodeDecode(b *testing.B) {
	view := View{
		Name: "bench",
		Properties: map[string]PropertyFilter{
			"status": ScalarFilter("open"),
			"tags":   ListFilter("a", "b", "c"),
			"amount": RangeFilter(10, 250),
		},
		Search:  "query",
		Sort:    &SortSpec{Field: "created_at", Order: "DESC"},
		Page:    3,
		Columns: []string{"id", "status"},
	}
	collection := ViewCollection{view}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		form := Encode(view)
		if got := Decode(form, collection); got.Name != "bench" {
			b.Fatalf("unexpected decode: %#v", got)
		}
	}
}
