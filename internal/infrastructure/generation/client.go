// Package generation obtains background images from a remote generation service.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
)

// Generator turns a text prompt into encoded image bytes.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// RemoteClient posts prompts to an HTTP generation endpoint.
type RemoteClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// generateResponse covers the shapes seen from generation backends:
// {"image": "..."} and {"imageUrl": {"image": "..."}}.
type generateResponse struct {
	Image    string `json:"image"`
	ImageURL *struct {
		Image string `json:"image"`
	} `json:"imageUrl"`
	Error string `json:"error"`
}

// NewRemoteClient creates a client for endpoint. An empty apiKey sends no
// Authorization header.
func NewRemoteClient(endpoint, apiKey string, timeout time.Duration) *RemoteClient {
	return &RemoteClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *RemoteClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	payload, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generation service returned %d: %s", resp.StatusCode, snippet(body))
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		if len(body) == 0 {
			return nil, fmt.Errorf("generation service returned an empty image")
		}
		return body, nil
	}
	return extractImage(body)
}

func extractImage(body []byte) ([]byte, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("generation failed: %s", parsed.Error)
	}

	encoded := parsed.Image
	if encoded == "" && parsed.ImageURL != nil {
		encoded = parsed.ImageURL.Image
	}
	if encoded == "" {
		return nil, fmt.Errorf("generation response carried no image")
	}

	data, err := media.DecodeBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}
	return data, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
