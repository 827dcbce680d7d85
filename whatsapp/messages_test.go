package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

const sendAck = `{"messaging_product":"whatsapp","contacts":[{"input":"15550001111","wa_id":"15550001111"}],"messages":[{"id":"wamid.HBgL"}]}`

func TestSendTextBuildsPayload(t *testing.T) {
	fake := &fakeHTTPClient{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, sendAck), nil
	}}
	client := newTestClient(t, fake)

	resp, err := client.SendText(context.Background(), "15550001111", Text{Body: "hello", PreviewURL: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.MessageID() != "wamid.HBgL" {
		t.Fatalf("unexpected message id: %q", resp.MessageID())
	}

	var sent map[string]any
	if err := json.Unmarshal(fake.last(t).body, &sent); err != nil {
		t.Fatalf("request body is not json: %v", err)
	}
	if sent["messaging_product"] != "whatsapp" {
		t.Fatalf("expected messaging_product whatsapp, got %v", sent["messaging_product"])
	}
	if sent["recipient_type"] != "individual" {
		t.Fatalf("expected recipient_type individual, got %v", sent["recipient_type"])
	}
	if sent["type"] != "text" {
		t.Fatalf("expected type text, got %v", sent["type"])
	}
	text, ok := sent["text"].(map[string]any)
	if !ok || text["body"] != "hello" || text["preview_url"] != true {
		t.Fatalf("unexpected text payload: %v", sent["text"])
	}
}

func TestSendImageByID(t *testing.T) {
	fake := &fakeHTTPClient{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, sendAck), nil
	}}
	client := newTestClient(t, fake)

	if _, err := client.SendImage(context.Background(), "15550001111", MediaRef{ID: "media-1", Caption: "pic"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sent map[string]any
	if err := json.Unmarshal(fake.last(t).body, &sent); err != nil {
		t.Fatalf("request body is not json: %v", err)
	}
	image, ok := sent["image"].(map[string]any)
	if !ok || image["id"] != "media-1" || image["caption"] != "pic" {
		t.Fatalf("unexpected image payload: %v", sent["image"])
	}
	if _, present := image["link"]; present {
		t.Fatalf("empty link must be omitted: %v", image)
	}
}

func TestReplySetsContext(t *testing.T) {
	fake := &fakeHTTPClient{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, sendAck), nil
	}}
	client := newTestClient(t, fake)

	if _, err := client.Reply(context.Background(), "15550001111", "wamid.PREV", Text{Body: "re"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sent map[string]any
	if err := json.Unmarshal(fake.last(t).body, &sent); err != nil {
		t.Fatalf("request body is not json: %v", err)
	}
	msgCtx, ok := sent["context"].(map[string]any)
	if !ok || msgCtx["message_id"] != "wamid.PREV" {
		t.Fatalf("unexpected context payload: %v", sent["context"])
	}
}

func TestSendTemplatePayload(t *testing.T) {
	fake := &fakeHTTPClient{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, sendAck), nil
	}}
	client := newTestClient(t, fake)

	tmpl := Template{
		Name:     "order_update",
		Language: TemplateLanguage{Code: "en_US"},
		Components: []TemplateComponent{{
			Type:       "body",
			Parameters: []TemplateParameter{{Type: "text", Text: "12345"}},
		}},
	}
	if _, err := client.SendTemplate(context.Background(), "15550001111", tmpl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sent map[string]any
	if err := json.Unmarshal(fake.last(t).body, &sent); err != nil {
		t.Fatalf("request body is not json: %v", err)
	}
	sentTmpl, ok := sent["template"].(map[string]any)
	if !ok || sentTmpl["name"] != "order_update" {
		t.Fatalf("unexpected template payload: %v", sent["template"])
	}
}

func TestMarkRead(t *testing.T) {
	fake := &fakeHTTPClient{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"success":true}`), nil
	}}
	client := newTestClient(t, fake)

	if err := client.MarkRead(context.Background(), "wamid.IN"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sent map[string]any
	if err := json.Unmarshal(fake.last(t).body, &sent); err != nil {
		t.Fatalf("request body is not json: %v", err)
	}
	if sent["status"] != "read" || sent["message_id"] != "wamid.IN" {
		t.Fatalf("unexpected mark read payload: %v", sent)
	}

	if err := client.MarkRead(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty message id")
	}
}
