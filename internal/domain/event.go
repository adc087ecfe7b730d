package domain

import "time"

// EventType names a session lifecycle transition published to the event stream.
type EventType string

const (
	EventSessionCreated     EventType = "session_created"
	EventSubmissionAdded    EventType = "submission_added"
	EventSynthesisGenerated EventType = "synthesis_generated"
	EventSynthesisRevised   EventType = "synthesis_revised"
	EventReviewAdded        EventType = "review_added"
	EventSessionFinalized   EventType = "session_finalized"
)

// Event is a lifecycle notification. Consumers must treat delivery as best effort.
type Event struct {
	Type        EventType
	SessionID   string
	SessionType string
	Actor       string  // collaborator or MC name that caused the transition
	Version     int     // synthesis version after the transition, 0 when not applicable
	TraceID     *string // tracing identifier propagated from ingress
	OccurredAt  time.Time
}
