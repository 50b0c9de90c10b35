// Package rendering implements the compositing canvas on top of fogleman/gg.
package rendering

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"

	"github.com/AtRiskMedia/cutout-go/internal/domain/compositing"
	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/mazznoer/csscolorparser"
	"golang.org/x/image/font"
)

type transformOp func(dc *gg.Context)

// drawState is everything Save captures besides gg's own matrix.
type drawState struct {
	ops        []transformOp
	fill       color.NRGBA
	alpha      float64
	font       compositing.Font
	shadow     color.NRGBA
	shadowBlur float64
	align      compositing.TextAlign
	baseline   compositing.TextBaseline
}

func (s drawState) clone() drawState {
	s.ops = append([]transformOp(nil), s.ops...)
	return s
}

// Surface is a compositing.Canvas backed by an RGBA raster.
type Surface struct {
	dc     *gg.Context
	fonts  *FontBook
	faces  map[compositing.Font]font.Face
	state  drawState
	stack  []drawState
	logger *slog.Logger
}

// NewSurface allocates a transparent surface of the given size.
func NewSurface(width, height int, fonts *FontBook, logger *slog.Logger) *Surface {
	if fonts == nil {
		fonts = NewFontBook("")
	}
	return &Surface{
		dc:     gg.NewContext(width, height),
		fonts:  fonts,
		faces:  make(map[compositing.Font]font.Face),
		state:  drawState{fill: color.NRGBA{A: 255}, alpha: 1},
		logger: logger,
	}
}

// NewFactory returns a compositing.Factory producing Surfaces.
func NewFactory(fonts *FontBook, logger *slog.Logger) compositing.Factory {
	return func(width, height int) compositing.Canvas {
		return NewSurface(width, height, fonts, logger)
	}
}

// Image exposes the backing raster.
func (s *Surface) Image() image.Image { return s.dc.Image() }

func (s *Surface) Size() geometry.RasterSize {
	return geometry.RasterSize{Width: float64(s.dc.Width()), Height: float64(s.dc.Height())}
}

// DrawImage scales img into dst under the current transform.
func (s *Surface) DrawImage(img image.Image, dst geometry.RasterRect) {
	if img == nil || dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	s.dc.Push()
	defer s.dc.Pop()
	s.dc.Translate(dst.X, dst.Y)
	s.dc.Scale(dst.Width/float64(b.Dx()), dst.Height/float64(b.Dy()))
	s.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
}

func (s *Surface) Save() {
	s.stack = append(s.stack, s.state.clone())
	s.dc.Push()
}

func (s *Surface) Restore() {
	n := len(s.stack)
	if n == 0 {
		return
	}
	s.state = s.stack[n-1]
	s.stack = s.stack[:n-1]
	s.dc.Pop()
}

func (s *Surface) Translate(x, y float64) {
	op := func(dc *gg.Context) { dc.Translate(x, y) }
	op(s.dc)
	s.state.ops = append(s.state.ops, op)
}

func (s *Surface) Rotate(radians float64) {
	op := func(dc *gg.Context) { dc.Rotate(radians) }
	op(s.dc)
	s.state.ops = append(s.state.ops, op)
}

func (s *Surface) SetFont(f compositing.Font) { s.state.font = f }

// SetFillColor ignores values that do not parse, like a browser canvas does.
func (s *Surface) SetFillColor(css string) {
	if c, ok := s.parseColor(css); ok {
		s.state.fill = c
	}
}

func (s *Surface) SetGlobalAlpha(alpha float64) {
	if alpha < 0 || alpha > 1 {
		return
	}
	s.state.alpha = alpha
}

func (s *Surface) SetShadow(css string, blur float64) {
	if c, ok := s.parseColor(css); ok {
		s.state.shadow = c
		s.state.shadowBlur = blur
	}
}

func (s *Surface) SetTextAlign(a compositing.TextAlign)       { s.state.align = a }
func (s *Surface) SetTextBaseline(b compositing.TextBaseline) { s.state.baseline = b }

// FillText draws text anchored at (x, y) in the current transform.
func (s *Surface) FillText(text string, x, y float64) {
	if text == "" {
		return
	}
	face, err := s.face()
	if err != nil {
		s.debug("font unavailable, text skipped", "family", s.state.font.Family, "error", err.Error())
		return
	}

	ax := s.alignAnchor()
	y += s.baselineShift(face)

	if s.state.shadowBlur > 0 && s.state.shadow.A > 0 {
		s.drawShadow(face, text, x, y, ax)
	}

	s.dc.SetFontFace(face)
	s.dc.SetColor(withAlpha(s.state.fill, s.state.alpha))
	s.dc.DrawStringAnchored(text, x, y, ax, 0)
}

// drawShadow renders the text on a scratch raster with the same transform,
// blurs it and composites it beneath the upcoming glyphs. The shadow is as
// opaque as the glyphs casting it.
func (s *Surface) drawShadow(face font.Face, text string, x, y, ax float64) {
	alpha := s.state.alpha * float64(s.state.fill.A) / 255
	if alpha <= 0 {
		return
	}
	scratch := gg.NewContext(s.dc.Width(), s.dc.Height())
	for _, op := range s.state.ops {
		op(scratch)
	}
	scratch.SetFontFace(face)
	scratch.SetColor(withAlpha(s.state.shadow, alpha))
	scratch.DrawStringAnchored(text, x, y, ax, 0)

	blurred := imaging.Blur(scratch.Image(), s.state.shadowBlur/2)

	s.dc.Push()
	s.dc.Identity()
	s.dc.DrawImage(blurred, 0, 0)
	s.dc.Pop()
}

func (s *Surface) alignAnchor() float64 {
	switch s.state.align {
	case compositing.AlignCenter:
		return 0.5
	case compositing.AlignRight:
		return 1
	}
	return 0
}

// baselineShift moves an anchor y onto the alphabetic baseline. Middle and
// top refer to the em box spanned by the face's ascent and descent.
func (s *Surface) baselineShift(face font.Face) float64 {
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64
	switch s.state.baseline {
	case compositing.BaselineMiddle:
		return (ascent - descent) / 2
	case compositing.BaselineTop:
		return ascent
	}
	return 0
}

func (s *Surface) face() (font.Face, error) {
	key := s.state.font
	if f, ok := s.faces[key]; ok {
		return f, nil
	}
	f, err := s.fonts.Face(key)
	if err != nil {
		return nil, err
	}
	s.faces[key] = f
	return f, nil
}

// EncodePNG writes the raster as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode surface: %w", err)
	}
	return nil
}

func (s *Surface) parseColor(css string) (color.NRGBA, bool) {
	c, err := csscolorparser.Parse(css)
	if err != nil {
		s.debug("ignoring unparseable colour", "value", css, "error", err.Error())
		return color.NRGBA{}, false
	}
	return color.NRGBA{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: channel(c.A),
	}, true
}

func (s *Surface) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(float64(c.A)*alpha + 0.5)
	return c
}
