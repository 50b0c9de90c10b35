package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestProfileMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ProfileMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetProfileID(c))
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid", "01HZX3-abc_d", http.StatusOK, "01HZX3-abc_d"},
		{"invalid", "../etc", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(ProfileHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != tt.body {
				t.Fatalf("profile = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://app.example.com"}
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://[::1]:3000", true},
		{"https://app.example.com", true},
		{"https://evil.example.com", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		if got := OriginAllowed(tt.origin, allowed); got != tt.want {
			t.Errorf("OriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
	if !OriginAllowed("https://anything.test", []string{"*"}) {
		t.Errorf("wildcard should allow every origin")
	}
}

func TestCORSMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}), RequestLogger(logging.NewDiscardLogger()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin status = %d, want 403", w.Code)
	}
}
