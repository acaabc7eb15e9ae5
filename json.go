package views

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-views/internal/hydrate"
)

// MarshalJSON emits the wire wrapper {"_range":[min,max]}.
func (r RangeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][2]float64{
		RangeKey: {r.Min, r.Max},
	})
}

// UnmarshalJSON accepts the wire wrapper {"_range":[min,max]}.
func (r *RangeValue) UnmarshalJSON(payload []byte) error {
	var wrapper map[string][2]float64
	if err := json.Unmarshal(payload, &wrapper); err != nil {
		return err
	}
	bounds, ok := wrapper[RangeKey]
	if !ok {
		return fmt.Errorf("views: range value missing %q key", RangeKey)
	}
	r.Min = bounds[0]
	r.Max = bounds[1]
	return nil
}

// UnmarshalJSON decodes a form payload, rehydrating range wrappers into
// RangeValue so decoded payloads compare structurally equal to encoded
// views.
func (f *FormValue) UnmarshalJSON(payload []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return err
	}
	out := make(FormValue, len(raw))
	for key, value := range raw {
		if bounds, ok := asRangeValue(value); ok {
			out[key] = bounds
			continue
		}
		out[key] = value
	}
	*f = out
	return nil
}

// viewPayload is the plain wire shape data sources deliver views in.
type viewPayload struct {
	Name       string         `json:"name,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Search     string         `json:"search,omitempty"`
	Sort       *SortSpec      `json:"sort,omitempty"`
	Step       int            `json:"step,omitempty"`
	Page       int            `json:"page,omitempty"`
	Columns    []string       `json:"columns,omitempty"`
	Rule       string         `json:"rule,omitempty"`
}

// ParseView hydrates a View from a data-source payload. Property values keep
// the form wire conventions: a {"_range":[min,max]} object becomes a range
// filter, a JSON array a multi-select, anything else a scalar.
func ParseView(name string, payload map[string]any) (View, error) {
	decoder := hydrate.NewDecoder[viewPayload]()
	doc, err := decoder.Decode(hydrate.Context{Name: name}, payload)
	if err != nil {
		return View{}, err
	}
	out := View{
		Name:    doc.Name,
		Search:  doc.Search,
		Sort:    doc.Sort,
		Step:    doc.Step,
		Page:    doc.Page,
		Columns: doc.Columns,
		Rule:    doc.Rule,
	}
	if out.Name == "" {
		out.Name = name
	}
	if len(doc.Properties) > 0 {
		out.Properties = make(map[string]PropertyFilter, len(doc.Properties))
		for key, value := range doc.Properties {
			out.Properties[key] = filterFromForm(value)
		}
	}
	return out, nil
}

// ParseCollection hydrates an ordered view collection from named payloads.
func ParseCollection(payloads []map[string]any) (ViewCollection, error) {
	out := make(ViewCollection, 0, len(payloads))
	for i, payload := range payloads {
		name, _ := payload["name"].(string)
		view, err := ParseView(name, payload)
		if err != nil {
			return nil, fmt.Errorf("views: collection entry %d: %w", i, err)
		}
		out = append(out, view)
	}
	return out, nil
}
