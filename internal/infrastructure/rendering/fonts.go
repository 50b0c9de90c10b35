package rendering

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AtRiskMedia/cutout-go/internal/domain/compositing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// boldWeight is the lowest CSS font-weight rendered with a bold face.
const boldWeight = 600

// FontBook resolves a family and weight to a parsed font. Families are looked
// up as <dir>/<Family>.ttf and <dir>/<Family>-Bold.ttf (or .otf); anything not
// found falls back to the embedded Go fonts.
//
// Parsed fonts are shared; faces are not safe for concurrent use, so every
// Surface builds its own.
type FontBook struct {
	dir    string
	mu     sync.Mutex
	parsed map[string]*opentype.Font
}

// NewFontBook creates a font book reading from dir. An empty dir disables
// file lookup.
func NewFontBook(dir string) *FontBook {
	return &FontBook{
		dir:    dir,
		parsed: make(map[string]*opentype.Font),
	}
}

// Font returns the parsed font for a family/weight pair.
func (b *FontBook) Font(family string, weight int) (*opentype.Font, error) {
	bold := weight >= boldWeight
	key := fmt.Sprintf("%s|%t", strings.ToLower(family), bold)

	b.mu.Lock()
	defer b.mu.Unlock()

	if f, ok := b.parsed[key]; ok {
		return f, nil
	}

	data := b.lookup(family, bold)
	if data == nil {
		data = goregular.TTF
		if bold {
			data = gobold.TTF
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", family, err)
	}
	b.parsed[key] = f
	return f, nil
}

func (b *FontBook) lookup(family string, bold bool) []byte {
	if b.dir == "" {
		return nil
	}
	name := filepath.Base(strings.TrimSpace(family))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil
	}

	var candidates []string
	for _, ext := range []string{".ttf", ".otf"} {
		if bold {
			candidates = append(candidates, name+"-Bold"+ext)
		}
		candidates = append(candidates, name+ext)
	}
	for _, c := range candidates {
		if data, err := os.ReadFile(filepath.Join(b.dir, c)); err == nil {
			return data
		}
	}
	return nil
}

// Face builds a face for the requested font at its pixel size.
func (b *FontBook) Face(f compositing.Font) (font.Face, error) {
	parsed, err := b.Font(f.Family, f.Weight)
	if err != nil {
		return nil, err
	}
	size := f.Size
	if size <= 0 {
		size = 16
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face for %q: %w", f.Family, err)
	}
	return face, nil
}
