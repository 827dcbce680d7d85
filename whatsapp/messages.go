package whatsapp

import (
	"context"
	"fmt"
)

const messagingProduct = "whatsapp"

// Text is the body of a text message.
type Text struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

// MediaRef points at previously uploaded media by id, or at a hosted asset by
// link. Caption and Filename apply where the content kind supports them.
type MediaRef struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Location is a geographic point with optional naming.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// Reaction attaches an emoji to an existing message. An empty emoji removes
// a previous reaction.
type Reaction struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// Template references an approved message template.
type Template struct {
	Name       string              `json:"name"`
	Language   TemplateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

// TemplateLanguage selects the template translation.
type TemplateLanguage struct {
	Code string `json:"code"`
}

// TemplateComponent fills one slot of a template (header, body, button).
type TemplateComponent struct {
	Type       string              `json:"type"`
	SubType    string              `json:"sub_type,omitempty"`
	Index      string              `json:"index,omitempty"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

// TemplateParameter is a single template placeholder value.
type TemplateParameter struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Currency any       `json:"currency,omitempty"`
	DateTime any       `json:"date_time,omitempty"`
	Image    *MediaRef `json:"image,omitempty"`
	Document *MediaRef `json:"document,omitempty"`
	Video    *MediaRef `json:"video,omitempty"`
	Payload  string    `json:"payload,omitempty"`
}

// Interactive is a button or list prompt.
type Interactive struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   *InteractiveBody   `json:"body,omitempty"`
	Footer *InteractiveBody   `json:"footer,omitempty"`
	Action *InteractiveAction `json:"action,omitempty"`
}

// InteractiveHeader heads an interactive prompt.
type InteractiveHeader struct {
	Type  string    `json:"type"`
	Text  string    `json:"text,omitempty"`
	Image *MediaRef `json:"image,omitempty"`
	Video *MediaRef `json:"video,omitempty"`
}

// InteractiveBody is the text block of an interactive prompt or footer.
type InteractiveBody struct {
	Text string `json:"text"`
}

// InteractiveAction lists the buttons or sections of an interactive prompt.
type InteractiveAction struct {
	Button   string              `json:"button,omitempty"`
	Buttons  []InteractiveButton `json:"buttons,omitempty"`
	Sections []any               `json:"sections,omitempty"`
}

// InteractiveButton is one reply button.
type InteractiveButton struct {
	Type  string           `json:"type"`
	Reply InteractiveReply `json:"reply"`
}

// InteractiveReply carries the id/title pair echoed back on selection.
type InteractiveReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MessageContext marks a message as a reply to an earlier one.
type MessageContext struct {
	MessageID string `json:"message_id"`
}

type sendMessageRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type,omitempty"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Context          *MessageContext `json:"context,omitempty"`
	Text             *Text           `json:"text,omitempty"`
	Image            *MediaRef       `json:"image,omitempty"`
	Audio            *MediaRef       `json:"audio,omitempty"`
	Video            *MediaRef       `json:"video,omitempty"`
	Document         *MediaRef       `json:"document,omitempty"`
	Sticker          *MediaRef       `json:"sticker,omitempty"`
	Location         *Location       `json:"location,omitempty"`
	Reaction         *Reaction       `json:"reaction,omitempty"`
	Template         *Template       `json:"template,omitempty"`
	Interactive      *Interactive    `json:"interactive,omitempty"`
}

// SendMessageResponse is the Graph API acknowledgement for a send.
type SendMessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID returns the platform id of the accepted message, or "".
func (r *SendMessageResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

func (c *Client) send(ctx context.Context, req *sendMessageRequest) (*SendMessageResponse, error) {
	req.MessagingProduct = messagingProduct
	if req.RecipientType == "" {
		req.RecipientType = "individual"
	}

	var out SendMessageResponse
	err := c.callJSON(ctx, apiRequest{
		path: c.cfg.PhoneNumberID + "/messages",
		body: req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to string, text Text) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "text", Text: &text})
}

// SendImage sends an image by media id or link.
func (c *Client) SendImage(ctx context.Context, to string, image MediaRef) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "image", Image: &image})
}

// SendAudio sends an audio clip by media id or link.
func (c *Client) SendAudio(ctx context.Context, to string, audio MediaRef) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "audio", Audio: &audio})
}

// SendVideo sends a video by media id or link.
func (c *Client) SendVideo(ctx context.Context, to string, video MediaRef) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "video", Video: &video})
}

// SendDocument sends a document by media id or link.
func (c *Client) SendDocument(ctx context.Context, to string, doc MediaRef) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "document", Document: &doc})
}

// SendSticker sends a sticker by media id or link.
func (c *Client) SendSticker(ctx context.Context, to string, sticker MediaRef) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "sticker", Sticker: &sticker})
}

// SendLocation sends a geographic location.
func (c *Client) SendLocation(ctx context.Context, to string, loc Location) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "location", Location: &loc})
}

// SendReaction reacts to an existing message.
func (c *Client) SendReaction(ctx context.Context, to string, reaction Reaction) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "reaction", Reaction: &reaction})
}

// SendTemplate sends an approved template message.
func (c *Client) SendTemplate(ctx context.Context, to string, tmpl Template) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "template", Template: &tmpl})
}

// SendInteractive sends a button or list prompt.
func (c *Client) SendInteractive(ctx context.Context, to string, interactive Interactive) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{To: to, Type: "interactive", Interactive: &interactive})
}

// Reply sends a text message as a reply to an earlier message id.
func (c *Client) Reply(ctx context.Context, to, replyToID string, text Text) (*SendMessageResponse, error) {
	return c.send(ctx, &sendMessageRequest{
		To:      to,
		Type:    "text",
		Text:    &text,
		Context: &MessageContext{MessageID: replyToID},
	})
}

// MarkRead flags an inbound message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("whatsapp client: mark read: message id is required")
	}
	body := map[string]string{
		"messaging_product": messagingProduct,
		"status":            "read",
		"message_id":        messageID,
	}
	return c.callJSON(ctx, apiRequest{
		path: c.cfg.PhoneNumberID + "/messages",
		body: body,
	}, nil)
}
