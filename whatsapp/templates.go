package whatsapp

import (
	"context"
	"net/http"
	"net/url"
)

// MessageTemplate is one managed template definition as stored on the
// business account.
type MessageTemplate struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Language   string `json:"language"`
	Category   string `json:"category"`
	Status     string `json:"status,omitempty"`
	Components []any  `json:"components,omitempty"`
}

// TemplateList is a page of managed templates.
type TemplateList struct {
	Data   []MessageTemplate `json:"data"`
	Paging struct {
		Cursors struct {
			Before string `json:"before"`
			After  string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next,omitempty"`
	} `json:"paging"`
}

// TemplateCreateResponse acknowledges template creation.
type TemplateCreateResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

// ListTemplates returns the templates registered on the business account.
// Requires a configured business account id.
func (c *Client) ListTemplates(ctx context.Context) (*TemplateList, error) {
	if err := c.requireBusinessAccount("list templates"); err != nil {
		return nil, err
	}
	var out TemplateList
	err := c.callJSON(ctx, apiRequest{
		method: http.MethodGet,
		path:   c.cfg.BusinessAccountID + "/message_templates",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTemplate registers a new template on the business account. Requires
// a configured business account id.
func (c *Client) CreateTemplate(ctx context.Context, tmpl MessageTemplate) (*TemplateCreateResponse, error) {
	if err := c.requireBusinessAccount("create template"); err != nil {
		return nil, err
	}
	var out TemplateCreateResponse
	err := c.callJSON(ctx, apiRequest{
		path: c.cfg.BusinessAccountID + "/message_templates",
		body: tmpl,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTemplate removes a template by name. Requires a configured business
// account id.
func (c *Client) DeleteTemplate(ctx context.Context, name string) error {
	if err := c.requireBusinessAccount("delete template"); err != nil {
		return err
	}
	return c.callJSON(ctx, apiRequest{
		method: http.MethodDelete,
		path:   c.cfg.BusinessAccountID + "/message_templates?name=" + url.QueryEscape(name),
	}, nil)
}
