package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-views/pkg/activity"
	"github.com/google/uuid"
)

// UpdateOn selects when edits propagate outward: on every change event, or
// only on explicit submission.
type UpdateOn string

const (
	UpdateOnChange UpdateOn = "change"
	UpdateOnSubmit UpdateOn = "submit"
)

// State names the controller's dirty-tracking state.
type State string

const (
	StateClean State = "clean"
	StateDirty State = "dirty"
)

// ErrInvalidUpdateOn indicates an unrecognised propagation policy.
var ErrInvalidUpdateOn = errors.New("views: updateOn must be \"change\" or \"submit\"")

// Source bundles what the data-source collaborator supplies: the view to
// mount, the collection of named presets, the default propagation policy and
// the callback receiving every decoded view the controller emits.
type Source struct {
	CurrentView     View
	Views           ViewCollection
	DefaultUpdateOn UpdateOn
	OnViewChange    func(View)
}

// Event is what the form-rendering surface delivers on change and submit:
// the full edited form value plus the set of touched field paths.
type Event struct {
	Value   FormValue
	Touched []string
}

// ControllerOption configures a Controller at construction time.
type ControllerOption func(*Controller)

// WithUpdateOn overrides the source's default propagation policy.
func WithUpdateOn(policy UpdateOn) ControllerOption {
	return func(c *Controller) {
		c.updateOn = policy
	}
}

// WithTouchedSink registers a callback receiving the touched-field report on
// every propagating event.
func WithTouchedSink(sink func(map[string]any)) ControllerOption {
	return func(c *Controller) {
		c.touchedSink = sink
	}
}

// WithCompletionSignal registers a callback invoked once after each
// successful submit, e.g. to close a transient editor.
func WithCompletionSignal(fn func()) ControllerOption {
	return func(c *Controller) {
		c.onComplete = fn
	}
}

// WithControllerLogger attaches a transition logger.
func WithControllerLogger(logger ControllerLogger) ControllerOption {
	return func(c *Controller) {
		if logger == nil {
			c.logger = noopControllerLogger{}
			return
		}
		c.logger = logger
	}
}

// WithActivityEmitter attaches an activity emitter that receives normalized
// view lifecycle events.
func WithActivityEmitter(emitter *activity.Emitter) ControllerOption {
	return func(c *Controller) {
		c.emitter = emitter
	}
}

// WithActivityActor stamps emitted activity events with the acting user.
func WithActivityActor(actorID string) ControllerOption {
	return func(c *Controller) {
		c.actorID = actorID
	}
}

// Controller synchronizes one view with its form-editable representation.
// It holds the single live FormValue, reconciles edits through the
// normalizer, and emits decoded views to the data-source collaborator.
//
// Handlers are synchronous and single-threaded: each runs to completion
// before the next is processed, and the emitted view always reflects state
// that has already been committed.
type Controller struct {
	views        ViewCollection
	updateOn     UpdateOn
	onViewChange func(View)

	external View
	form     FormValue
	dirty    bool
	commitID string

	touchedSink func(map[string]any)
	onComplete  func()
	logger      ControllerLogger
	emitter     *activity.Emitter
	actorID     string
}

// NewController mounts the source's current view and returns a clean
// controller. The propagation policy resolves from the WithUpdateOn option,
// then the source default, then "change".
func NewController(source Source, opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		views:        source.Views,
		updateOn:     source.DefaultUpdateOn,
		onViewChange: source.OnViewChange,
		logger:       noopControllerLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.updateOn == "" {
		c.updateOn = UpdateOnChange
	}
	if c.updateOn != UpdateOnChange && c.updateOn != UpdateOnSubmit {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidUpdateOn, c.updateOn)
	}

	c.external = source.CurrentView.Clone()
	c.form = Encode(c.external)
	c.commitID = uuid.NewString()
	return c, nil
}

// Replace handles an external view arrival. The external source of truth
// always wins: the form value is re-encoded unconditionally and any unsaved
// edit is discarded.
func (c *Controller) Replace(view View) {
	from := c.state()
	c.external = view.Clone()
	c.commit(Encode(c.external), false)
	c.logTransition(from, "replace", DivergenceReport{})
	c.emitActivity(activity.BuildViewReplacedEvent, DivergenceReport{})
}

// Change handles an edit event from the form surface. The edited value is
// reconciled against the committed state, the pagination rule is applied,
// and the result committed as dirty. The decoded view propagates outward
// only under the "change" policy.
func (c *Controller) Change(event Event) {
	from := c.state()
	next, report := c.reconcile(event.Value)
	c.commit(next, true)
	c.logTransition(from, "change", report)
	if report.Diverged() {
		c.emitActivity(activity.BuildViewDivergedEvent, report)
	}
	c.emitActivity(activity.BuildViewChangedEvent, report)
	if c.updateOn == UpdateOnChange {
		c.propagate(event.Touched)
	}
}

// Submit handles an explicit submission. Reconciliation and commit match
// Change, but the controller returns to clean, the touched report and view
// emission fire regardless of policy, and the completion signal follows.
func (c *Controller) Submit(event Event) {
	from := c.state()
	next, report := c.reconcile(event.Value)
	c.commit(next, false)
	c.logTransition(from, "submit", report)
	if report.Diverged() {
		c.emitActivity(activity.BuildViewDivergedEvent, report)
	}
	c.emitActivity(activity.BuildViewSubmittedEvent, report)
	c.propagate(event.Touched)
	if c.onComplete != nil {
		c.onComplete()
	}
}

// Reset discards unsaved edits by re-encoding the last external view.
// Nothing is emitted.
func (c *Controller) Reset() {
	from := c.state()
	c.commit(Encode(c.external), false)
	c.logTransition(from, "reset", DivergenceReport{})
	c.emitActivity(activity.BuildViewResetEvent, DivergenceReport{})
}

// Value returns a copy of the live form value.
func (c *Controller) Value() FormValue {
	return c.form.Clone()
}

// Dirty reports whether unsaved edits exist relative to the last committed
// external or submitted state.
func (c *Controller) Dirty() bool {
	return c.dirty
}

// UpdateOn returns the resolved propagation policy.
func (c *Controller) UpdateOn() UpdateOn {
	return c.updateOn
}

// CommitID identifies the current form value generation.
func (c *Controller) CommitID() string {
	return c.commitID
}

func (c *Controller) reconcile(value FormValue) (FormValue, DivergenceReport) {
	next, report := ReconcileWithTrace(value, c.form, c.views)
	next = ResetPage(next, c.form)
	return next, report
}

// commit installs the next form value before anything observes it. Emission
// ordering depends on this: observers must never see a value that has not
// been committed.
func (c *Controller) commit(next FormValue, dirty bool) {
	c.form = next.Clone()
	c.dirty = dirty
	c.commitID = uuid.NewString()
}

func (c *Controller) propagate(touched []string) {
	if c.touchedSink != nil {
		c.touchedSink(TransformTouched(touched, c.form))
	}
	if c.onViewChange != nil {
		c.onViewChange(Decode(c.form, c.views))
	}
}

func (c *Controller) state() State {
	if c.dirty {
		return StateDirty
	}
	return StateClean
}

func (c *Controller) logTransition(from State, trigger string, report DivergenceReport) {
	c.logger.LogTransition(TransitionEvent{
		From:     from,
		To:       c.state(),
		Trigger:  trigger,
		CommitID: c.commitID,
		View:     c.form.ViewName(),
		Diverged: report.Diverged(),
	})
}

func (c *Controller) emitActivity(build func(activity.ViewEventInput) activity.Event, report DivergenceReport) {
	if !c.emitter.Enabled() {
		return
	}
	metadata := map[string]any{
		"commit_id": c.commitID,
		"dirty":     c.dirty,
	}
	if report.Diverged() {
		keys := make([]string, 0, len(report.Keys))
		for _, d := range report.Keys {
			keys = append(keys, d.Key)
		}
		metadata["diverged_keys"] = keys
	}
	objectID := c.form.ViewName()
	if objectID == "" {
		objectID = c.commitID
	}
	_ = c.emitter.Emit(context.Background(), build(activity.ViewEventInput{
		ActorID:  c.actorID,
		ObjectID: objectID,
		ViewName: c.form.ViewName(),
		Metadata: metadata,
	}))
}
