package removal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRemoteClientPostsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("api key = %q", got)
		}
		file, header, err := r.FormFile(FormField)
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "photo.jpg" || string(data) != "jpeg-bytes" {
			t.Errorf("upload = %s %q", header.Filename, data)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, "secret", time.Second)
	out, err := c.Remove(context.Background(), "photo.jpg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if string(out) != "png-bytes" {
		t.Fatalf("body = %q", out)
	}
}

func TestRemoteClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "credits exhausted", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, "", time.Second)
	_, err := c.Remove(context.Background(), "a.png", []byte("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "402") || !strings.Contains(err.Error(), "credits exhausted") {
		t.Fatalf("error lacks status or body: %v", err)
	}
}

func TestRemoteClientEmptyInput(t *testing.T) {
	c := NewRemoteClient("http://127.0.0.1:1", "", time.Second)
	if _, err := c.Remove(context.Background(), "a.png", nil); err == nil {
		t.Fatalf("expected error for empty image")
	}
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	if got := snippet([]byte(long)); len(got) != 203 {
		t.Fatalf("snippet length = %d", len(got))
	}
}
