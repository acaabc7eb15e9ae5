package views

import (
	"encoding/json"
)

// Divergence records one key whose edited value no longer matches the named
// view's canonical encoding.
type Divergence struct {
	Key       string `json:"key"`
	Edited    any    `json:"edited,omitempty"`
	Canonical any    `json:"canonical,omitempty"`
}

// DivergenceReport captures why a reconciliation dropped (or kept) a preset
// reference, for logging or transport helpers.
type DivergenceReport struct {
	View string       `json:"view"`
	Keys []Divergence `json:"keys,omitempty"`
}

// Diverged reports whether any key differed from the canonical encoding.
func (r DivergenceReport) Diverged() bool {
	return len(r.Keys) > 0
}

// ToJSON serialises the report for logging or transport helpers.
func (r DivergenceReport) ToJSON() ([]byte, error) {
	type alias DivergenceReport
	return json.Marshal(alias(r))
}

// DivergenceReportFromJSON deserialises a payload previously generated via
// ToJSON.
func DivergenceReportFromJSON(payload []byte) (DivergenceReport, error) {
	type alias DivergenceReport
	var report alias
	if err := json.Unmarshal(payload, &report); err != nil {
		return DivergenceReport{}, err
	}
	return DivergenceReport(report), nil
}

// ReconcileWithTrace behaves like Reconcile and additionally reports the
// per-key comparison outcome against the preset that was selected going into
// the edit. The report's View field carries the name the edit arrived with,
// even when divergence caused the reconciled value to drop it.
func ReconcileWithTrace(next, prev FormValue, collection ViewCollection) (FormValue, DivergenceReport) {
	reconciled, diverged := reconcile(next, prev, collection)
	return reconciled, DivergenceReport{
		View: next.ViewName(),
		Keys: diverged,
	}
}
