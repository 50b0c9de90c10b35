package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AssemblyAI/assemblyai-go-sdk"
)

func TestRemoteClientResponseShapes(t *testing.T) {
	want := []byte("\x89PNG fake")
	b64 := base64.StdEncoding.EncodeToString(want)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"flat image", "application/json", `{"image":"` + b64 + `"}`},
		{"nested imageUrl", "application/json", `{"imageUrl":{"image":"` + b64 + `"}}`},
		{"data url", "application/json", `{"image":"data:image/png;base64,` + b64 + `"}`},
		{"raw bytes", "image/png", string(want)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req generateRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt != "a beach" {
					t.Errorf("request prompt = %q, %v", req.Prompt, err)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer k" {
					t.Errorf("authorization = %q", got)
				}
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewRemoteClient(srv.URL, "k", time.Second).Generate(context.Background(), "a beach")
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if string(got) != string(want) {
				t.Fatalf("image = %q, want %q", got, want)
			}
		})
	}
}

func TestRemoteClientFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		msg    string
	}{
		{"http error", http.StatusInternalServerError, "boom", "500"},
		{"error field", http.StatusOK, `{"error":"nsfw prompt"}`, "nsfw prompt"},
		{"no image", http.StatusOK, `{}`, "no image"},
		{"not json", http.StatusOK, `<html>`, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewRemoteClient(srv.URL, "", time.Second).Generate(context.Background(), "x")
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("err = %v, want mention of %q", err, tt.msg)
			}
		})
	}
}

type stubGenerator struct{ prompts []string }

func (s *stubGenerator) Generate(_ context.Context, prompt string) ([]byte, error) {
	s.prompts = append(s.prompts, prompt)
	return []byte("img"), nil
}

func TestPromptEnhancer(t *testing.T) {
	var seen assemblyai.LeMURTaskParams
	reply := `"a sunlit beach at golden hour"`
	e := &PromptEnhancer{
		model:     "anthropic/claude-3-5-sonnet",
		maxTokens: 300,
		task: func(_ context.Context, p assemblyai.LeMURTaskParams) (*string, error) {
			seen = p
			return &reply, nil
		},
	}

	if got := e.Enhance(context.Background(), "beach"); got != "a sunlit beach at golden hour" {
		t.Fatalf("Enhance = %q", got)
	}
	if seen.InputText == nil || *seen.InputText != "beach" {
		t.Fatalf("input text not forwarded")
	}

	failing := &PromptEnhancer{task: func(context.Context, assemblyai.LeMURTaskParams) (*string, error) {
		return nil, errors.New("rate limited")
	}}
	if got := failing.Enhance(context.Background(), "beach"); got != "beach" {
		t.Fatalf("failed enhancement should keep raw prompt, got %q", got)
	}

	var nilEnhancer *PromptEnhancer
	if got := nilEnhancer.Enhance(context.Background(), "beach"); got != "beach" {
		t.Fatalf("nil enhancer changed prompt: %q", got)
	}
	if NewPromptEnhancer("", "m", nil) != nil {
		t.Fatalf("enhancer built without api key")
	}

	stub := &stubGenerator{}
	g := EnhancedGenerator{Generator: stub, Enhancer: e}
	if _, err := g.Generate(context.Background(), "beach"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(stub.prompts) != 1 || stub.prompts[0] != "a sunlit beach at golden hour" {
		t.Fatalf("generator saw %v", stub.prompts)
	}
}
