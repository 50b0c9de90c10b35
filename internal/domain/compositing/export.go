package compositing

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/AtRiskMedia/cutout-go/internal/domain/textlayer"
)

// DefaultFontScale compensates for the export raster being larger than the
// preview the font sizes were chosen against.
const DefaultFontScale = 3

// PlacementScene is everything the placement export reads.
type PlacementScene struct {
	Background image.Image
	Foreground image.Image
	// Overlay is the foreground placement in screen space.
	Overlay geometry.ScreenRect
	// Container must be measured at export time; a stale value misplaces the overlay.
	Container geometry.Container
}

// ExportPlacement draws the background at its natural size and the
// foreground at the overlay rectangle mapped into raster space.
func ExportPlacement(newCanvas Factory, scene PlacementScene) (Canvas, error) {
	if scene.Background == nil || scene.Foreground == nil {
		return nil, fmt.Errorf("%w: background or foreground missing", ErrNotReady)
	}

	natural := NaturalSize(scene.Background)
	scale, ok := geometry.ScaleBetween(natural, scene.Container)
	if !ok {
		return nil, fmt.Errorf("%w: container not measured", ErrNotReady)
	}

	c := newCanvas(int(natural.Width), int(natural.Height))
	c.DrawImage(scene.Background, fill(c))
	c.DrawImage(scene.Foreground, scale.Rect(scene.Overlay))
	return c, nil
}

// TextScene is everything the text-behind export reads.
type TextScene struct {
	Original image.Image
	Cutout   image.Image
	Layers   []textlayer.Layer
	// Ready is set once background removal for Original has completed.
	Ready     bool
	FontScale float64
}

// ExportTextBehind draws the original image, then every text layer in
// insertion order, then the cutout on top so the subject occludes the text.
func ExportTextBehind(newCanvas Factory, scene TextScene) (Canvas, error) {
	if !scene.Ready || scene.Original == nil || scene.Cutout == nil {
		return nil, fmt.Errorf("%w: image setup incomplete", ErrNotReady)
	}

	fontScale := scene.FontScale
	if fontScale <= 0 {
		fontScale = DefaultFontScale
	}

	natural := NaturalSize(scene.Original)
	c := newCanvas(int(natural.Width), int(natural.Height))
	c.DrawImage(scene.Original, fill(c))

	for _, l := range scene.Layers {
		drawLayer(c, l, fontScale)
	}

	c.DrawImage(scene.Cutout, fill(c))
	return c, nil
}

// drawLayer leaves the canvas state exactly as it found it. The text shadow
// belongs to the preview only and is not drawn here.
func drawLayer(c Canvas, l textlayer.Layer, fontScale float64) {
	c.Save()
	defer c.Restore()

	c.SetFont(Font{Family: l.FontFamily, Weight: l.FontWeight, Size: l.FontSize * fontScale})
	c.SetFillColor(l.Color)
	c.SetGlobalAlpha(l.Opacity)
	c.SetTextAlign(AlignCenter)
	c.SetTextBaseline(BaselineMiddle)

	at := l.Offset().Resolve(c.Size())
	c.Translate(at.X, at.Y)
	c.Rotate(l.Rotation * math.Pi / 180)
	c.FillText(l.Text, 0, 0)
}

// Encode renders the canvas as PNG bytes.
func Encode(c Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
