package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultMaxErrorBodyBytes = 16 * 1024

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises client behaviour.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used to reach the Graph API.
func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL sets the Graph API base URL. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// Client talks to the WhatsApp Cloud API. All endpoint methods funnel through
// the same request pipeline: bearer auth, JSON-or-multipart body encoding and
// normalized error classification.
type Client struct {
	cfg        Config
	logger     zerolog.Logger
	httpClient HTTPClient
	baseURL    string
}

// NewClient constructs a Cloud API client from the supplied configuration.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	c := &Client{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// apiRequest describes one Graph API call. Either body (serialized as JSON)
// or form (a pre-encoded multipart payload with its boundary content type)
// may be set, never both.
type apiRequest struct {
	method      string
	path        string
	body        any
	form        io.Reader
	contentType string
	headers     map[string]string
}

// execute performs exactly one outbound call and classifies the response.
// Any status outside [200,300) is drained and converted into an *APIError;
// a successful response is returned with its body open for the caller.
func (c *Client) execute(ctx context.Context, r apiRequest) (*http.Response, error) {
	method := r.method
	if method == "" {
		method = http.MethodPost
	}

	url := r.path
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = fmt.Sprintf("%s/%s/%s", c.baseURL, c.cfg.APIVersion, strings.TrimLeft(r.path, "/"))
	}

	var reqBody io.Reader
	contentType := ""
	switch {
	case r.form != nil:
		reqBody = r.form
		contentType = r.contentType
	case r.body != nil:
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("whatsapp client: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("whatsapp client: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, value := range r.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp client: http do: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, defaultMaxErrorBodyBytes))
		resp.Body.Close()
		if readErr != nil {
			body = nil
		}
		apiErr := newAPIError(body, resp.StatusCode)
		c.logger.Warn().
			Str("method", method).
			Str("path", r.path).
			Int("status", resp.StatusCode).
			Str("error_title", apiErr.Title).
			Msg("whatsapp client: request failed")
		return nil, apiErr
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Msg("whatsapp client: request succeeded")
	return resp, nil
}

// callJSON executes the request and decodes a JSON success body into out.
// Endpoints returning binary content use execute directly instead.
func (c *Client) callJSON(ctx context.Context, r apiRequest, out any) error {
	resp, err := c.execute(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "" && mediaType != "application/json" {
		return fmt.Errorf("whatsapp client: unexpected content type %q", mediaType)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("whatsapp client: decode response: %w", err)
	}
	return nil
}

// requireBusinessAccount guards WABA-scoped operations.
func (c *Client) requireBusinessAccount(op string) error {
	if c.cfg.BusinessAccountID == "" {
		return fmt.Errorf("whatsapp client: %s: %w", op, ErrNoBusinessAccountID)
	}
	return nil
}

// IsAPIError reports whether err wraps an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
