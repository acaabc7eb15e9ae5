package activity

import (
	"strings"
	"time"
)

// ViewEventInput describes the common fields for view lifecycle events.
type ViewEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ObjectID   string
	Channel    string
	Recipients []string
	Metadata   map[string]any
	ViewName   string
	OccurredAt time.Time
}

// BuildViewChangedEvent constructs a normalized event for an edit commit.
func BuildViewChangedEvent(input ViewEventInput) Event {
	return buildViewEvent("view.changed", input)
}

// BuildViewSubmittedEvent constructs a normalized event for a submission.
func BuildViewSubmittedEvent(input ViewEventInput) Event {
	return buildViewEvent("view.submitted", input)
}

// BuildViewResetEvent constructs a normalized event for a reset.
func BuildViewResetEvent(input ViewEventInput) Event {
	return buildViewEvent("view.reset", input)
}

// BuildViewReplacedEvent constructs a normalized event for an external view
// arrival.
func BuildViewReplacedEvent(input ViewEventInput) Event {
	return buildViewEvent("view.replaced", input)
}

// BuildViewDivergedEvent constructs a normalized event for an edit that
// dropped a preset reference.
func BuildViewDivergedEvent(input ViewEventInput) Event {
	return buildViewEvent("view.diverged", input)
}

func buildViewEvent(verb string, input ViewEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.ViewName != "" {
		metadata = ensureMetadata(metadata)
		metadata["view_name"] = input.ViewName
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.ViewName)
	}
	if objectID == "" {
		objectID = "view"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: "view",
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Recipients: recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
