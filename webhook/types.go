// Package webhook verifies and normalizes WhatsApp Cloud API webhook
// deliveries. Authenticity checks fail loudly; format anomalies degrade to an
// empty event list, because the vendor may batch several independent change
// kinds into one delivery and cannot renegotiate a rejected one.
package webhook

import "encoding/json"

// payloadObject is the discriminator the vendor sets on every delivery.
const payloadObject = "whatsapp_business_account"

// Payload is the top-level webhook delivery body.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one business-account section of a delivery.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification.
type Change struct {
	Value Value  `json:"value"`
	Field string `json:"field"`
}

// Value carries the actual notification contents: metadata about the
// receiving number plus optional sibling lists of messages, statuses and
// errors.
type Value struct {
	MessagingProduct string        `json:"messaging_product"`
	Metadata         Metadata      `json:"metadata"`
	Contacts         []Contact     `json:"contacts"`
	Messages         []Message     `json:"messages"`
	Statuses         []Status      `json:"statuses"`
	Errors           []ErrorDetail `json:"errors"`
}

// Metadata identifies the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the WhatsApp user a message originates from.
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

// ContactProfile holds the display name.
type ContactProfile struct {
	Name string `json:"name"`
}

// messageTypes enumerates the inbound content kinds this package decodes
// into typed fields. Anything else lands on the unknown arm with its raw
// JSON preserved.
var messageTypes = map[string]struct{}{
	"text":        {},
	"image":       {},
	"audio":       {},
	"video":       {},
	"document":    {},
	"sticker":     {},
	"location":    {},
	"contacts":    {},
	"interactive": {},
	"reaction":    {},
	"button":      {},
	"order":       {},
	"system":      {},
	"referral":    {},
}

// Message is one inbound message. Exactly one of the typed content fields is
// populated according to Type; unrecognized types keep the full message JSON
// in Raw so new vendor kinds degrade gracefully instead of failing to parse.
type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`

	Context     *MessageContext `json:"context,omitempty"`
	Text        *Text           `json:"text,omitempty"`
	Image       *Media          `json:"image,omitempty"`
	Audio       *Media          `json:"audio,omitempty"`
	Video       *Media          `json:"video,omitempty"`
	Document    *Media          `json:"document,omitempty"`
	Sticker     *Media          `json:"sticker,omitempty"`
	Location    *Location       `json:"location,omitempty"`
	Contacts    []ContactCard   `json:"contacts,omitempty"`
	Interactive *Interactive    `json:"interactive,omitempty"`
	Reaction    *Reaction       `json:"reaction,omitempty"`
	Button      *Button         `json:"button,omitempty"`
	Order       *Order          `json:"order,omitempty"`
	System      *System         `json:"system,omitempty"`
	Referral    *Referral       `json:"referral,omitempty"`
	Errors      []ErrorDetail   `json:"errors,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the message and retains the raw document when the
// type discriminator is not one this package models.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Message(a)
	if _, known := messageTypes[m.Type]; !known {
		m.Raw = append(json.RawMessage(nil), data...)
	}
	return nil
}

// Known reports whether the message type maps to a typed content field.
func (m *Message) Known() bool {
	_, ok := messageTypes[m.Type]
	return ok
}

// MessageContext links a message to the one it replies to or forwards.
type MessageContext struct {
	From      string `json:"from,omitempty"`
	ID        string `json:"id,omitempty"`
	Forwarded bool   `json:"forwarded,omitempty"`
}

// Text is an inbound text body.
type Text struct {
	Body string `json:"body"`
}

// Media is the shared shape of inbound image/audio/video/document/sticker
// attachments.
type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Sha256   string `json:"sha256"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	Voice    bool   `json:"voice,omitempty"`
	Animated bool   `json:"animated,omitempty"`
}

// Location is an inbound shared location.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// ContactCard is one entry of an inbound contacts message.
type ContactCard struct {
	Name struct {
		FormattedName string `json:"formatted_name"`
		FirstName     string `json:"first_name,omitempty"`
		LastName      string `json:"last_name,omitempty"`
	} `json:"name"`
	Phones []struct {
		Phone string `json:"phone"`
		Type  string `json:"type,omitempty"`
		WaID  string `json:"wa_id,omitempty"`
	} `json:"phones,omitempty"`
}

// Interactive is a button or list reply.
type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"button_reply,omitempty"`
	ListReply *struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	} `json:"list_reply,omitempty"`
}

// Reaction is an emoji reaction to an earlier message.
type Reaction struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// Button is a template quick-reply button press.
type Button struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

// Order is an inbound catalog order.
type Order struct {
	CatalogID    string `json:"catalog_id"`
	Text         string `json:"text,omitempty"`
	ProductItems []struct {
		ProductRetailerID string  `json:"product_retailer_id"`
		Quantity          int     `json:"quantity"`
		ItemPrice         float64 `json:"item_price"`
		Currency          string  `json:"currency"`
	} `json:"product_items"`
}

// System announces platform-side changes such as a user number change.
type System struct {
	Body     string `json:"body"`
	Type     string `json:"type"`
	Identity string `json:"identity,omitempty"`
	WaID     string `json:"wa_id,omitempty"`
}

// Referral describes the ad or post that led the user to message.
type Referral struct {
	SourceURL  string `json:"source_url"`
	SourceID   string `json:"source_id,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	Headline   string `json:"headline,omitempty"`
	Body       string `json:"body,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
}

// Status is one delivery-state transition for an outbound message.
type Status struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Timestamp    string        `json:"timestamp"`
	RecipientID  string        `json:"recipient_id"`
	Conversation *Conversation `json:"conversation,omitempty"`
	Pricing      *Pricing      `json:"pricing,omitempty"`
	Errors       []ErrorDetail `json:"errors,omitempty"`
}

// Delivery states reported in Status.Status.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
)

// Conversation identifies the billing conversation a status belongs to.
type Conversation struct {
	ID     string `json:"id"`
	Origin *struct {
		Type string `json:"type"`
	} `json:"origin,omitempty"`
	ExpirationTimestamp string `json:"expiration_timestamp,omitempty"`
}

// Pricing is the billing detail attached to some statuses.
type Pricing struct {
	Billable     bool   `json:"billable"`
	PricingModel string `json:"pricing_model"`
	Category     string `json:"category"`
}

// ErrorDetail is one vendor-reported error, at value or status level.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}
