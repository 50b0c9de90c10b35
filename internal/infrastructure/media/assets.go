package media

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"slices"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Kind names one of the images a session holds.
type Kind string

const (
	KindOriginal   Kind = "original"
	KindCutout     Kind = "cutout"
	KindBackground Kind = "background"
)

var (
	ErrUnknownKind      = errors.New("unknown asset kind")
	ErrUnsupportedWidth = errors.New("unsupported preview width")
	ErrAssetNotFound    = errors.New("asset not found")
)

// ParseKind validates an asset kind from a request path.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindOriginal, KindCutout, KindBackground:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// AssetStore persists session images as PNG with WebP preview thumbnails.
// Layout: <basePath>/<sessionID>/<kind>.png and <kind>_<width>px.webp.
type AssetStore struct {
	basePath string
	widths   []int
	quality  float32
}

// NewAssetStore creates an asset store rooted at basePath.
func NewAssetStore(basePath string, widths []int, quality float32) *AssetStore {
	return &AssetStore{
		basePath: basePath,
		widths:   append([]int(nil), widths...),
		quality:  quality,
	}
}

// Widths returns the preview widths generated for every asset.
func (s *AssetStore) Widths() []int { return append([]int(nil), s.widths...) }

func (s *AssetStore) sessionDir(sessionID string) (string, error) {
	clean := filepath.Base(sessionID)
	if clean != sessionID || clean == "." || clean == "" {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Path returns the PNG path of an asset.
func (s *AssetStore) Path(sessionID string, kind Kind) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, string(kind)+".png"), nil
}

// ThumbnailPath returns the WebP preview path of an asset at width.
func (s *AssetStore) ThumbnailPath(sessionID string, kind Kind, width int) (string, error) {
	if !slices.Contains(s.widths, width) {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
	}
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%dpx.webp", kind, width)), nil
}

// Save writes img as the session's kind asset and regenerates its previews.
// On thumbnail failure the PNG and any written thumbnails are removed.
func (s *AssetStore) Save(sessionID string, kind Kind, img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image for %s", kind)
	}
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dir, string(kind)+".png")
	if err := writePNG(fullPath, img); err != nil {
		return "", err
	}

	if _, err := s.generateWebPThumbnails(img, sessionID, kind); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to generate thumbnails: %w", err)
	}
	return fullPath, nil
}

// Open returns the stored PNG bytes of an asset.
func (s *AssetStore) Open(sessionID string, kind Kind) ([]byte, error) {
	path, err := s.Path(sessionID, kind)
	if err != nil {
		return nil, err
	}
	return readAsset(path)
}

// OpenThumbnail returns the stored WebP preview of an asset.
func (s *AssetStore) OpenThumbnail(sessionID string, kind Kind, width int) ([]byte, error) {
	path, err := s.ThumbnailPath(sessionID, kind, width)
	if err != nil {
		return nil, err
	}
	return readAsset(path)
}

// Delete removes one asset and its previews. Missing files are ignored.
func (s *AssetStore) Delete(sessionID string, kind Kind) error {
	path, err := s.Path(sessionID, kind)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", kind, err)
	}
	for _, w := range s.widths {
		thumb, _ := s.ThumbnailPath(sessionID, kind, w)
		os.Remove(thumb)
	}
	return nil
}

// RemoveSession deletes every asset a session owns.
func (s *AssetStore) RemoveSession(sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove session assets: %w", err)
	}
	return nil
}

// generateWebPThumbnails writes one WebP preview per configured width.
// Images narrower than a width are stored at their natural size.
func (s *AssetStore) generateWebPThumbnails(img image.Image, sessionID string, kind Kind) ([]string, error) {
	paths := make([]string, 0, len(s.widths))
	for _, width := range s.widths {
		thumbPath, err := s.ThumbnailPath(sessionID, kind, width)
		if err != nil {
			return nil, err
		}

		resized := img
		if img.Bounds().Dx() > width {
			resized = imaging.Resize(img, width, 0, imaging.Lanczos)
		}

		if err := webp.Save(thumbPath, resized, &webp.Options{Quality: s.quality}); err != nil {
			for _, p := range paths {
				os.Remove(p)
			}
			return nil, fmt.Errorf("failed to save WebP thumbnail %s: %w", filepath.Base(thumbPath), err)
		}
		paths = append(paths, thumbPath)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readAsset(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	return data, nil
}
