// Package removal talks to the remote background-removal service.
package removal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// FormField is the multipart field the service reads the photo from.
const FormField = "image_file"

// Remover returns the foreground of a photo as PNG bytes with a transparent background.
type Remover interface {
	Remove(ctx context.Context, filename string, data []byte) ([]byte, error)
}

// RemoteClient posts photos to an HTTP removal endpoint.
type RemoteClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRemoteClient creates a client for endpoint. An empty apiKey sends no key header.
func NewRemoteClient(endpoint, apiKey string, timeout time.Duration) *RemoteClient {
	return &RemoteClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *RemoteClient) Remove(ctx context.Context, filename string, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(FormField, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "image/png")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("removal request failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read removal response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("removal service returned %d: %s", resp.StatusCode, snippet(out))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("removal service returned an empty body")
	}
	return out, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
