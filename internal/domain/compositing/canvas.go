// Package compositing flattens a background, a foreground cutout and text
// layers into a single exported raster.
package compositing

import (
	"errors"
	"image"
	"io"

	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
)

// ErrNotReady means an export was requested before its inputs existed.
// Callers treat it as a no-op rather than a failure.
var ErrNotReady = errors.New("export inputs not ready")

// Download filenames per export kind.
const (
	CutoutFilename     = "removed-background.png"
	PlacementFilename  = "image-with-background.png"
	TextBehindFilename = "text-behind-image.png"
)

// TextAlign is the horizontal anchor for FillText.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// TextBaseline is the vertical anchor for FillText.
type TextBaseline int

const (
	BaselineAlphabetic TextBaseline = iota
	BaselineMiddle
	BaselineTop
)

// Font selects a face for FillText. Size is in raster pixels.
type Font struct {
	Family string
	Weight int
	Size   float64
}

// Canvas is a 2D raster drawing target with save/restore state semantics.
// Save captures the transform and every drawing style; Restore reinstates
// the most recent capture.
type Canvas interface {
	Size() geometry.RasterSize

	DrawImage(img image.Image, dst geometry.RasterRect)

	Save()
	Restore()
	Translate(x, y float64)
	Rotate(radians float64)

	SetFont(f Font)
	SetFillColor(css string)
	SetGlobalAlpha(alpha float64)
	SetShadow(css string, blur float64)
	SetTextAlign(a TextAlign)
	SetTextBaseline(b TextBaseline)
	FillText(text string, x, y float64)

	EncodePNG(w io.Writer) error
}

// Factory allocates an output canvas of the given pixel size.
type Factory func(width, height int) Canvas

// NaturalSize returns an image's stored pixel dimensions.
func NaturalSize(img image.Image) geometry.RasterSize {
	if img == nil {
		return geometry.RasterSize{}
	}
	b := img.Bounds()
	return geometry.RasterSize{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func fill(c Canvas) geometry.RasterRect {
	sz := c.Size()
	return geometry.RasterRect{Width: sz.Width, Height: sz.Height}
}
