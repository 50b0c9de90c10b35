package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chai2010/webp"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	src := testImage(30, 20)

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, src, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	var wp bytes.Buffer
	if err := webp.Encode(&wp, src, &webp.Options{Lossless: true}); err != nil {
		t.Fatalf("webp encode: %v", err)
	}

	tests := []struct {
		name   string
		data   []byte
		format Format
	}{
		{"png", pngBytes(t, src), FormatPNG},
		{"jpeg", jpg.Bytes(), FormatJPEG},
		{"webp", wp.Bytes(), FormatWebP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if img.Format != tt.format {
				t.Fatalf("format = %s, want %s", img.Format, tt.format)
			}
			if img.Width() != 30 || img.Height() != 20 {
				t.Fatalf("size = %dx%d, want 30x20", img.Width(), img.Height())
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("not an image at all"),
	} {
		if _, err := Decode(data); !errors.Is(err, ErrUndecodable) {
			t.Errorf("%s: err = %v, want ErrUndecodable", name, err)
		}
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name string
		file string
		size int64
		want error
	}{
		{"png", "photo.png", 1024, nil},
		{"upper jpeg", "PHOTO.JPEG", 1024, nil},
		{"jpg", "a.jpg", 5 << 20, nil},
		{"webp", "a.webp", 10, nil},
		{"gif", "a.gif", 10, ErrUnsupportedFormat},
		{"no extension", "photo", 10, ErrUnsupportedFormat},
		{"too large", "a.png", 5<<20 + 1, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.file, tt.size, 5<<20)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoaderDataURLAndBase64(t *testing.T) {
	raw := pngBytes(t, testImage(4, 3))
	b64 := base64.StdEncoding.EncodeToString(raw)
	l := NewLoader(time.Second, 0)

	for name, ref := range map[string]string{
		"data url": "data:image/png;base64," + b64,
		"bare":     b64,
	} {
		img, err := l.Load(context.Background(), ref)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if img.Width() != 4 || img.Height() != 3 {
			t.Fatalf("%s: size %dx%d", name, img.Width(), img.Height())
		}
	}

	if _, err := l.Load(context.Background(), "data:image/png;base64,!!!"); !errors.Is(err, ErrUndecodable) {
		t.Fatalf("bad base64: err = %v, want ErrUndecodable", err)
	}
}

func TestLoaderHTTP(t *testing.T) {
	raw := pngBytes(t, testImage(8, 8))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(raw)
		case "/text":
			w.Write([]byte("hello"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(time.Second, 1<<20)

	result := <-l.LoadAsync(context.Background(), srv.URL+"/ok.png")
	if result.Err != nil {
		t.Fatalf("LoadAsync: %v", result.Err)
	}
	if result.Image.Width() != 8 {
		t.Fatalf("width = %d", result.Image.Width())
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing"); !errors.Is(err, ErrUnreachableSource) {
		t.Fatalf("404: err = %v, want ErrUnreachableSource", err)
	}
	if _, err := l.Load(context.Background(), srv.URL+"/text"); !errors.Is(err, ErrUndecodable) {
		t.Fatalf("text body: err = %v, want ErrUndecodable", err)
	}

	small := NewLoader(time.Second, 10)
	if _, err := small.Load(context.Background(), srv.URL+"/ok.png"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("oversized: err = %v, want ErrTooLarge", err)
	}
}
