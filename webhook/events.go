package webhook

// EventKind discriminates the closed set of normalized event variants.
type EventKind string

const (
	// EventMessage is an inbound user message with its resolved contact.
	EventMessage EventKind = "message"
	// EventStatus is a delivery-state transition for an outbound message.
	EventStatus EventKind = "status"
	// EventErrors is a value-level vendor error report.
	EventErrors EventKind = "errors"
)

// Event is one normalized webhook notification. Exactly one of Message,
// Status and Errors is populated, selected by Kind; Metadata is always
// copied from the enclosing value block. Events are value objects: created
// per Parse call, never mutated afterwards.
type Event struct {
	Kind     EventKind
	Metadata Metadata

	Message *MessageEvent
	Status  *Status
	Errors  []ErrorDetail
}

// MessageEvent pairs an inbound message with the contact it resolved to.
type MessageEvent struct {
	Message Message
	Contact Contact
}

// ID returns the natural identifier of the event: the message or status id,
// or "" for error events.
func (e Event) ID() string {
	switch e.Kind {
	case EventMessage:
		if e.Message != nil {
			return e.Message.Message.ID
		}
	case EventStatus:
		if e.Status != nil {
			return e.Status.ID
		}
	}
	return ""
}
