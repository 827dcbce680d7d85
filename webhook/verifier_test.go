package webhook

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func handshakeQuery(mode, token, challenge string) url.Values {
	q := url.Values{}
	if mode != "" {
		q.Set("hub.mode", mode)
	}
	if token != "" {
		q.Set("hub.verify_token", token)
	}
	if challenge != "" {
		q.Set("hub.challenge", challenge)
	}
	return q
}

func TestVerifySubscription(t *testing.T) {
	challenge, err := VerifySubscription(handshakeQuery("subscribe", "T", "C"), "T")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if challenge != "C" {
		t.Fatalf("expected challenge C, got %q", challenge)
	}
}

func TestVerifySubscriptionRejects(t *testing.T) {
	cases := []struct {
		name  string
		query url.Values
		token string
	}{
		{name: "wrong expected token", query: handshakeQuery("subscribe", "T", "C"), token: "X"},
		{name: "wrong mode", query: handshakeQuery("unsubscribe", "T", "C"), token: "T"},
		{name: "missing mode", query: handshakeQuery("", "T", "C"), token: "T"},
		{name: "missing challenge", query: handshakeQuery("subscribe", "T", ""), token: "T"},
		{name: "empty query", query: url.Values{}, token: "T"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifySubscription(tc.query, tc.token); !errors.Is(err, ErrVerificationFailed) {
				t.Fatalf("expected ErrVerificationFailed, got %v", err)
			}
		})
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account","entry":[]}`)
	secret := "app-secret"

	header := Signature(body, secret)
	if !strings.HasPrefix(header, "sha256=") {
		t.Fatalf("expected sha256= prefix, got %q", header)
	}
	if !ValidSignature(body, header, secret) {
		t.Fatal("sign-then-verify must round trip")
	}
}

func TestValidSignatureRejectsTampering(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	secret := "app-secret"
	header := Signature(body, secret)

	flipped := append([]byte(nil), body...)
	flipped[0] ^= 0x01
	if ValidSignature(flipped, header, secret) {
		t.Fatal("flipped body byte must invalidate the signature")
	}
	if ValidSignature(body, header, "other-secret") {
		t.Fatal("wrong secret must invalidate the signature")
	}
}

func TestValidSignatureRequiresPrefix(t *testing.T) {
	body := []byte(`{}`)
	secret := "s"
	header := Signature(body, secret)

	bare := strings.TrimPrefix(header, "sha256=")
	if ValidSignature(body, bare, secret) {
		t.Fatal("a correct digest without the sha256= prefix must be rejected")
	}
}

func TestParseVerified(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"metadata":{"display_phone_number":"1555","phone_number_id":"42"},"statuses":[{"id":"wamid.X","status":"delivered","timestamp":"1","recipient_id":"2"}]}}]}]}`)
	secret := "app-secret"

	events, err := ParseVerified(body, Signature(body, secret), secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventStatus {
		t.Fatalf("expected one status event, got %+v", events)
	}

	if _, err := ParseVerified(body, "sha256=deadbeef", secret); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
