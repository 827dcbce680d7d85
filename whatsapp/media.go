package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// MediaInfo describes uploaded media as reported by the Graph API. URL is a
// short-lived lookaside link suitable for DownloadMedia.
type MediaInfo struct {
	ID               string `json:"id"`
	URL              string `json:"url"`
	MimeType         string `json:"mime_type"`
	Sha256           string `json:"sha256"`
	FileSize         int64  `json:"file_size"`
	MessagingProduct string `json:"messaging_product"`
}

// MediaUploadResponse acknowledges a media upload.
type MediaUploadResponse struct {
	ID string `json:"id"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadMedia pushes a media asset to the platform and returns its id. This
// is the multipart branch of the request pipeline: the form's boundary
// content type rides along instead of the JSON header.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data io.Reader) (*MediaUploadResponse, error) {
	if data == nil {
		return nil, errors.New("whatsapp client: upload media: data reader is required")
	}
	if strings.TrimSpace(contentType) == "" {
		return nil, errors.New("whatsapp client: upload media: content type is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("messaging_product", messagingProduct); err != nil {
		return nil, fmt.Errorf("whatsapp client: upload media: %w", err)
	}
	if err := writer.WriteField("type", contentType); err != nil {
		return nil, fmt.Errorf("whatsapp client: upload media: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("whatsapp client: upload media: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("whatsapp client: upload media: copy payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("whatsapp client: upload media: %w", err)
	}

	var out MediaUploadResponse
	err = c.callJSON(ctx, apiRequest{
		path:        c.cfg.PhoneNumberID + "/media",
		form:        &buf,
		contentType: writer.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMedia fetches the metadata (including the download URL) for a media id.
func (c *Client) GetMedia(ctx context.Context, mediaID string) (*MediaInfo, error) {
	if mediaID == "" {
		return nil, errors.New("whatsapp client: get media: media id is required")
	}
	var out MediaInfo
	err := c.callJSON(ctx, apiRequest{
		method: http.MethodGet,
		path:   mediaID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadMedia streams the binary content behind a lookaside URL obtained
// from GetMedia. The caller owns the returned body and must close it. The
// reported content type accompanies the reader since the response is not
// JSON-decoded.
func (c *Client) DownloadMedia(ctx context.Context, url string) (io.ReadCloser, string, error) {
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return nil, "", errors.New("whatsapp client: download media: absolute media url is required")
	}
	resp, err := c.execute(ctx, apiRequest{
		method: http.MethodGet,
		path:   url,
	})
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// DeleteMedia removes an uploaded asset.
func (c *Client) DeleteMedia(ctx context.Context, mediaID string) error {
	if mediaID == "" {
		return errors.New("whatsapp client: delete media: media id is required")
	}
	return c.callJSON(ctx, apiRequest{
		method: http.MethodDelete,
		path:   mediaID,
	}, nil)
}
