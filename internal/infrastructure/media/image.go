// Package media provides image decode, load and storage utilities
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var (
	ErrUndecodable        = errors.New("image data could not be decoded")
	ErrUnsupportedFormat  = errors.New("unsupported image format")
	ErrTooLarge           = errors.New("image exceeds upload limit")
	ErrUnreachableSource  = errors.New("image source unreachable")
	dataURLPattern        = regexp.MustCompile(`^data:image/[\w.+-]+;base64,`)
	supportedUploadSuffix = map[string]Format{
		".jpg":  FormatJPEG,
		".jpeg": FormatJPEG,
		".png":  FormatPNG,
		".webp": FormatWebP,
	}
)

// Format is the encoded format an image arrived in.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// Image is a decoded image with its natural size.
type Image struct {
	image.Image
	Format Format
}

// Width is the natural pixel width.
func (i *Image) Width() int { return i.Bounds().Dx() }

// Height is the natural pixel height.
func (i *Image) Height() int { return i.Bounds().Dy() }

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// Decode sniffs and decodes PNG, JPEG or WebP bytes. JPEG EXIF orientation
// is applied so natural dimensions match what the user sees.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUndecodable)
	}

	if isWebP(data) {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		return &Image{Image: img, Format: FormatWebP}, nil
	}

	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	var format Format
	switch name {
	case "png":
		format = FormatPNG
	case "jpeg":
		format = FormatJPEG
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return &Image{Image: img, Format: format}, nil
}

// EncodePNG encodes any image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBase64 accepts either a data URL or bare base64 image bytes.
func DecodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, fmt.Errorf("empty base64 data")
	}
	b64 := dataURLPattern.ReplaceAllString(data, "")
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return decoded, nil
}

// ValidateUpload checks an upload's extension and size before it is read.
func ValidateUpload(filename string, size, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := supportedUploadSuffix[ext]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, size, maxBytes)
	}
	return nil
}

// Loader resolves a source reference to a decoded image. References may be
// data URLs, http(s) URLs or bare base64.
type Loader struct {
	client   *http.Client
	maxBytes int64
}

// NewLoader creates a loader whose remote fetches time out after timeout.
func NewLoader(timeout time.Duration, maxBytes int64) *Loader {
	return &Loader{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Load fetches and decodes the referenced image.
func (l *Loader) Load(ctx context.Context, ref string) (*Image, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err := l.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		return Decode(data)
	default:
		data, err := DecodeBase64(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		return Decode(data)
	}
}

// LoadAsync runs Load on its own goroutine. The channel yields exactly one result.
func (l *Loader) LoadAsync(ctx context.Context, ref string) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		img, err := l.Load(ctx, ref)
		out <- LoadResult{Image: img, Err: err}
	}()
	return out
}

// LoadResult is the outcome of an asynchronous load.
type LoadResult struct {
	Image *Image
	Err   error
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachableSource, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if l.maxBytes > 0 {
		body = io.LimitReader(resp.Body, l.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: remote image over %d bytes", ErrTooLarge, l.maxBytes)
	}
	return data, nil
}
