package views

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-views/pkg/activity"
)

func testCollection() ViewCollection {
	return ViewCollection{
		{
			Name:       "open",
			Properties: map[string]PropertyFilter{"status": ScalarFilter("open")},
		},
		{
			Name:       "closed",
			Properties: map[string]PropertyFilter{"status": ScalarFilter("closed")},
			Search:     "archive",
		},
	}
}

func newTestController(t *testing.T, opts ...ControllerOption) (*Controller, *[]View) {
	t.Helper()
	emitted := &[]View{}
	collection := testCollection()
	source := Source{
		CurrentView: collection[0],
		Views:       collection,
		OnViewChange: func(view View) {
			*emitted = append(*emitted, view)
		},
	}
	c, err := NewController(source, opts...)
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
	return c, emitted
}

func TestNewControllerMountsCurrentView(t *testing.T) {
	c, _ := newTestController(t)
	if c.Dirty() {
		t.Fatalf("expected clean controller after mount")
	}
	want := Encode(testCollection()[0])
	if !reflect.DeepEqual(c.Value(), want) {
		t.Fatalf("mount mismatch:\nwant: %#v\n got: %#v", want, c.Value())
	}
	if c.UpdateOn() != UpdateOnChange {
		t.Fatalf("expected change policy default, got %q", c.UpdateOn())
	}
	if c.CommitID() == "" {
		t.Fatalf("expected commit id assigned at mount")
	}
}

func TestNewControllerRejectsBadPolicy(t *testing.T) {
	_, err := NewController(Source{}, WithUpdateOn("later"))
	if err == nil {
		t.Fatalf("expected policy error")
	}
	if !errors.Is(err, ErrInvalidUpdateOn) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChangeCommitsAndPropagates(t *testing.T) {
	var touchedReport map[string]any
	c, emitted := newTestController(t, WithTouchedSink(func(report map[string]any) {
		touchedReport = report
	}))

	value := c.Value()
	value["status"] = "open"
	value["region"] = "eu"
	c.Change(Event{Value: value, Touched: []string{"region"}})

	if !c.Dirty() {
		t.Fatalf("expected dirty after change")
	}
	if len(*emitted) != 1 {
		t.Fatalf("expected one emitted view, got %d", len(*emitted))
	}
	got := (*emitted)[0]
	if got.Properties["region"].Scalar != "eu" {
		t.Fatalf("expected emitted view to carry the edit, got %#v", got.Properties)
	}
	if got.Name != "open" {
		t.Fatalf("expected preset kept for non-conflicting addition, got %q", got.Name)
	}
	if !reflect.DeepEqual(touchedReport, map[string]any{"region": "eu"}) {
		t.Fatalf("unexpected touched report: %#v", touchedReport)
	}
}

func TestChangeUnderSubmitPolicyDoesNotPropagate(t *testing.T) {
	c, emitted := newTestController(t, WithUpdateOn(UpdateOnSubmit))

	value := c.Value()
	value["region"] = "eu"
	c.Change(Event{Value: value})

	if len(*emitted) != 0 {
		t.Fatalf("expected no emission under submit policy, got %d", len(*emitted))
	}
	if !c.Dirty() {
		t.Fatalf("expected commit to still happen")
	}
	if c.Value()["region"] != "eu" {
		t.Fatalf("expected committed edit, got %#v", c.Value())
	}
}

func TestSubmitAlwaysPropagatesAndSignalsCompletion(t *testing.T) {
	completed := 0
	c, emitted := newTestController(t,
		WithUpdateOn(UpdateOnSubmit),
		WithCompletionSignal(func() { completed++ }),
	)

	value := c.Value()
	value["region"] = "eu"
	c.Submit(Event{Value: value, Touched: []string{"region"}})

	if c.Dirty() {
		t.Fatalf("expected clean after submit")
	}
	if len(*emitted) != 1 {
		t.Fatalf("expected emission on submit, got %d", len(*emitted))
	}
	if completed != 1 {
		t.Fatalf("expected one completion signal, got %d", completed)
	}
}

func TestResetDiscardsEditsWithoutEmission(t *testing.T) {
	c, emitted := newTestController(t)
	value := c.Value()
	value["region"] = "eu"
	c.Change(Event{Value: value})
	before := len(*emitted)

	c.Reset()
	if c.Dirty() {
		t.Fatalf("expected clean after reset")
	}
	if len(*emitted) != before {
		t.Fatalf("expected no emission on reset")
	}
	want := Encode(testCollection()[0])
	if !reflect.DeepEqual(c.Value(), want) {
		t.Fatalf("expected external view restored:\nwant: %#v\n got: %#v", want, c.Value())
	}
}

func TestReplaceWinsOverUnsavedEdits(t *testing.T) {
	c, emitted := newTestController(t)
	value := c.Value()
	value["region"] = "eu"
	c.Change(Event{Value: value})
	before := len(*emitted)

	replacement := testCollection()[1]
	c.Replace(replacement)

	if c.Dirty() {
		t.Fatalf("expected clean after external replacement")
	}
	if len(*emitted) != before {
		t.Fatalf("expected no emission on replacement")
	}
	if !reflect.DeepEqual(c.Value(), Encode(replacement)) {
		t.Fatalf("expected replacement encoded, got %#v", c.Value())
	}
}

func TestEmissionReflectsCommittedState(t *testing.T) {
	var observed FormValue
	collection := testCollection()
	var c *Controller
	source := Source{
		CurrentView: collection[0],
		Views:       collection,
		OnViewChange: func(View) {
			observed = c.Value()
		},
	}
	var err error
	c, err = NewController(source)
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}

	value := c.Value()
	value["region"] = "eu"
	c.Change(Event{Value: value})

	if observed["region"] != "eu" {
		t.Fatalf("observer saw uncommitted state: %#v", observed)
	}
}

func TestEmissionFeedbackLoopIsStable(t *testing.T) {
	// The owner may push the emitted view straight back in. Re-encoding it
	// must not change the committed state again.
	collection := testCollection()
	var c *Controller
	source := Source{
		CurrentView: collection[0],
		Views:       collection,
	}
	source.OnViewChange = func(view View) {
		c.Replace(view)
	}
	var err error
	c, err = NewController(source)
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}

	value := c.Value()
	value["region"] = "eu"
	c.Change(Event{Value: value})
	settled := c.Value()

	c.Change(Event{Value: settled})
	if !reflect.DeepEqual(c.Value(), settled) {
		t.Fatalf("feedback loop drifted:\nwant: %#v\n got: %#v", settled, c.Value())
	}
}

func TestControllerTransitionLogging(t *testing.T) {
	var events []TransitionEvent
	c, _ := newTestController(t, WithControllerLogger(ControllerLoggerFunc(func(event TransitionEvent) {
		events = append(events, event)
	})))

	value := c.Value()
	value["region"] = "eu"
	c.Change(Event{Value: value})
	c.Reset()

	if len(events) != 2 {
		t.Fatalf("expected two transitions, got %d", len(events))
	}
	if events[0].Trigger != "change" || events[0].From != StateClean || events[0].To != StateDirty {
		t.Fatalf("unexpected change transition: %#v", events[0])
	}
	if events[1].Trigger != "reset" || events[1].To != StateClean {
		t.Fatalf("unexpected reset transition: %#v", events[1])
	}
}

func TestControllerEmitsActivityEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})
	c, _ := newTestController(t,
		WithActivityEmitter(emitter),
		WithActivityActor("d8a681f6-94ea-4571-b1b7-6a0f0c4e26b3"),
	)

	value := c.Value()
	value["status"] = "escalated"
	c.Change(Event{Value: value})

	verbs := make([]string, 0, len(capture.Events))
	for _, event := range capture.Events {
		verbs = append(verbs, event.Verb)
	}
	want := []string{"view.diverged", "view.changed"}
	if !reflect.DeepEqual(verbs, want) {
		t.Fatalf("unexpected verbs: %v", verbs)
	}
	for _, event := range capture.Events {
		if event.ObjectType != "view" {
			t.Fatalf("unexpected object type: %q", event.ObjectType)
		}
		if event.Channel != "views" {
			t.Fatalf("expected default channel, got %q", event.Channel)
		}
		if event.Metadata["commit_id"] == "" {
			t.Fatalf("expected commit id metadata, got %#v", event.Metadata)
		}
	}
}

func TestValueReturnsDetachedCopy(t *testing.T) {
	c, _ := newTestController(t)
	value := c.Value()
	value["status"] = "mutated"
	if c.Value()["status"] == "mutated" {
		t.Fatalf("Value must not expose internal state")
	}
}
