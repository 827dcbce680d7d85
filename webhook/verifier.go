package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
)

const signaturePrefix = "sha256="

// ErrVerificationFailed is returned when the subscription handshake
// parameters are malformed or mismatched.
var ErrVerificationFailed = errors.New("webhook verification failed")

// ErrInvalidSignature is returned when a delivery fails the signature check.
// It is distinct from a valid payload producing zero events.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifySubscription performs the one-time GET handshake. It returns the
// challenge to echo back only when hub.mode is "subscribe", hub.verify_token
// matches verifyToken and a challenge is present. There is no partial
// credit: anything else fails.
func VerifySubscription(query url.Values, verifyToken string) (string, error) {
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode != "subscribe" || token != verifyToken || challenge == "" {
		return "", ErrVerificationFailed
	}
	return challenge, nil
}

// Signature computes the expected X-Hub-Signature-256 header value for a raw
// delivery body under the shared app secret.
func Signature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature checks the supplied header against the HMAC-SHA256 of the
// exact raw body. The body must not be re-serialized before checking: the
// MAC is sensitive to whitespace and key order. A header without the
// "sha256=" prefix never matches.
func ValidSignature(body []byte, header, secret string) bool {
	return hmac.Equal([]byte(header), []byte(Signature(body, secret)))
}

// ParseVerified checks the delivery signature and, only when it holds,
// normalizes the body. A failed check yields ErrInvalidSignature rather than
// an empty slice so callers can tell "rejected" from "no events".
func ParseVerified(body []byte, header, secret string) ([]Event, error) {
	if !ValidSignature(body, header, secret) {
		return nil, ErrInvalidSignature
	}
	return Parse(body), nil
}
