package whatsapp

import (
	"context"
	"net/http"
	"strings"
)

// BusinessProfile is the public profile attached to the phone number.
type BusinessProfile struct {
	About             string   `json:"about,omitempty"`
	Address           string   `json:"address,omitempty"`
	Description       string   `json:"description,omitempty"`
	Email             string   `json:"email,omitempty"`
	ProfilePictureURL string   `json:"profile_picture_url,omitempty"`
	Vertical          string   `json:"vertical,omitempty"`
	Websites          []string `json:"websites,omitempty"`
}

type businessProfileList struct {
	Data []BusinessProfile `json:"data"`
}

// GetBusinessProfile reads the business profile. fields narrows the returned
// attributes; empty means the platform default set.
func (c *Client) GetBusinessProfile(ctx context.Context, fields ...string) (*BusinessProfile, error) {
	path := c.cfg.PhoneNumberID + "/whatsapp_business_profile"
	if len(fields) > 0 {
		path += "?fields=" + strings.Join(fields, ",")
	}

	var out businessProfileList
	err := c.callJSON(ctx, apiRequest{
		method: http.MethodGet,
		path:   path,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return &BusinessProfile{}, nil
	}
	return &out.Data[0], nil
}

// UpdateBusinessProfile overwrites the supplied business profile fields.
func (c *Client) UpdateBusinessProfile(ctx context.Context, profile BusinessProfile) error {
	body := struct {
		MessagingProduct string `json:"messaging_product"`
		BusinessProfile
	}{
		MessagingProduct: messagingProduct,
		BusinessProfile:  profile,
	}
	return c.callJSON(ctx, apiRequest{
		path: c.cfg.PhoneNumberID + "/whatsapp_business_profile",
		body: body,
	}, nil)
}
