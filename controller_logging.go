package views

// TransitionEvent describes one controller state transition for logging.
type TransitionEvent struct {
	From     State
	To       State
	Trigger  string
	CommitID string
	View     string
	Diverged bool
}

// ControllerLogger records controller transitions.
type ControllerLogger interface {
	LogTransition(TransitionEvent)
}

// ControllerLoggerFunc adapts a function to ControllerLogger.
type ControllerLoggerFunc func(TransitionEvent)

// LogTransition implements ControllerLogger.
func (f ControllerLoggerFunc) LogTransition(event TransitionEvent) {
	if f != nil {
		f(event)
	}
}

type noopControllerLogger struct{}

func (noopControllerLogger) LogTransition(TransitionEvent) {}
