package whatsapp

import (
	"errors"
	"strings"
)

const (
	defaultBaseURL    = "https://graph.facebook.com"
	defaultAPIVersion = "v21.0"
)

// Config carries the immutable identity of a Cloud API client. It is copied
// into the client at construction time and never mutated afterwards, so a
// single client is safe to share across concurrent calls.
type Config struct {
	// AccessToken is the bearer token used on every outbound request.
	AccessToken string
	// PhoneNumberID identifies the sending phone number on the platform.
	PhoneNumberID string
	// BusinessAccountID scopes template, flow and analytics management.
	// Optional; calls that need it fail with ErrNoBusinessAccountID.
	BusinessAccountID string
	// APIVersion selects the Graph API version, e.g. "v21.0".
	APIVersion string
}

func (c Config) validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return errors.New("whatsapp client: access token is required")
	}
	if strings.TrimSpace(c.PhoneNumberID) == "" {
		return errors.New("whatsapp client: phone number id is required")
	}
	return nil
}

func (c Config) withDefaults() Config {
	c.AccessToken = strings.TrimSpace(c.AccessToken)
	c.PhoneNumberID = strings.TrimSpace(c.PhoneNumberID)
	c.BusinessAccountID = strings.TrimSpace(c.BusinessAccountID)
	if strings.TrimSpace(c.APIVersion) == "" {
		c.APIVersion = defaultAPIVersion
	}
	return c
}
