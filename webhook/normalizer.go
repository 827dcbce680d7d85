package webhook

import "encoding/json"

// Parse walks a raw delivery body and emits the flat, document-ordered
// sequence of normalized events: for each value block, its messages, then
// its statuses, then one errors event when value-level errors are present.
// It never fails: a body that is not the expected envelope (not an object,
// wrong object discriminator, missing entry list) yields an empty slice.
func Parse(body []byte) []Event {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	if payload.Object != payloadObject {
		return nil
	}

	var events []Event
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			value := change.Value

			for _, msg := range value.Messages {
				events = append(events, Event{
					Kind:     EventMessage,
					Metadata: value.Metadata,
					Message: &MessageEvent{
						Message: msg,
						Contact: resolveContact(msg, value.Contacts),
					},
				})
			}

			for i := range value.Statuses {
				events = append(events, Event{
					Kind:     EventStatus,
					Metadata: value.Metadata,
					Status:   &value.Statuses[i],
				})
			}

			if len(value.Errors) > 0 {
				events = append(events, Event{
					Kind:     EventErrors,
					Metadata: value.Metadata,
					Errors:   value.Errors,
				})
			}
		}
	}
	return events
}

// resolveContact matches the message sender against the value-level contact
// list by wa_id. When nothing matches but contacts exist, the first listed
// contact is used — observed vendor-facing behaviour, kept as-is even though
// it can mis-attribute the sender when several contacts ride along. An empty
// list synthesizes a contact from the sender id with no display name.
func resolveContact(msg Message, contacts []Contact) Contact {
	for _, contact := range contacts {
		if contact.WaID == msg.From {
			return contact
		}
	}
	if len(contacts) > 0 {
		return contacts[0]
	}
	return Contact{WaID: msg.From}
}
