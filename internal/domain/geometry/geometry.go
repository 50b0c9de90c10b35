// Package geometry holds the two coordinate spaces of the editor.
//
// Screen space is CSS pixels reported by pointer events, relative to the
// top-left corner of the preview container. Raster space is the natural pixel
// grid of a loaded image. The only bridge between them is Scale, which must be
// computed from the container measurement that is current at the time of use.
package geometry

import "fmt"

// ScreenPoint is a position in CSS pixels relative to the container origin.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p ScreenPoint) Sub(q ScreenPoint) ScreenPoint {
	return ScreenPoint{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p ScreenPoint) Add(q ScreenPoint) ScreenPoint {
	return ScreenPoint{X: p.X + q.X, Y: p.Y + q.Y}
}

// ScreenSize is a width/height pair in CSS pixels.
type ScreenSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenRect is an overlay placement in screen space.
type ScreenRect struct {
	Position ScreenPoint `json:"position"`
	Size     ScreenSize  `json:"size"`
}

// BottomRight is the corner opposite Position.
func (r ScreenRect) BottomRight() ScreenPoint {
	return ScreenPoint{X: r.Position.X + r.Size.Width, Y: r.Position.Y + r.Size.Height}
}

// RasterPoint is a position in natural image pixels.
type RasterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RasterSize is the natural pixel size of an image or output canvas.
type RasterSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether either dimension is non-positive.
func (s RasterSize) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// AspectRatio is width / height. Zero for an empty size.
func (s RasterSize) AspectRatio() float64 {
	if s.Empty() {
		return 0
	}
	return s.Width / s.Height
}

// RasterRect is a draw destination in raster space.
type RasterRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r RasterRect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Container is a measurement of the preview container's bounding rectangle.
type Container struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measured reports whether the container has a usable, non-degenerate size.
func (c Container) Measured() bool {
	return c.Width > 0 && c.Height > 0
}

// Scale converts screen space to raster space, independently per axis.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScaleBetween returns natural/container for each axis. ok is false when the
// container has not been measured, since no meaningful mapping exists.
func ScaleBetween(natural RasterSize, c Container) (Scale, bool) {
	if !c.Measured() || natural.Empty() {
		return Scale{}, false
	}
	return Scale{X: natural.Width / c.Width, Y: natural.Height / c.Height}, true
}

// Point maps a screen point into raster space.
func (s Scale) Point(p ScreenPoint) RasterPoint {
	return RasterPoint{X: p.X * s.X, Y: p.Y * s.Y}
}

// Size maps a screen size into raster space.
func (s Scale) Size(sz ScreenSize) RasterSize {
	return RasterSize{Width: sz.Width * s.X, Height: sz.Height * s.Y}
}

// Rect maps a screen rectangle into raster space.
func (s Scale) Rect(r ScreenRect) RasterRect {
	p := s.Point(r.Position)
	sz := s.Size(r.Size)
	return RasterRect{X: p.X, Y: p.Y, Width: sz.Width, Height: sz.Height}
}

// CenterOffset positions a text layer in percent from the container centre.
// Left grows rightwards; Top grows upwards, the opposite of screen Y.
// Both span [-50, 50] for points inside the container.
type CenterOffset struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Resolve maps the offset onto a raster of the given size.
func (o CenterOffset) Resolve(size RasterSize) RasterPoint {
	return RasterPoint{
		X: size.Width * (o.Left + 50) / 100,
		Y: size.Height * (50 - o.Top) / 100,
	}
}

// LeftPercent is the CSS left percentage used by the screen preview.
func (o CenterOffset) LeftPercent() float64 { return o.Left + 50 }

// TopPercent is the CSS top percentage used by the screen preview.
func (o CenterOffset) TopPercent() float64 { return 50 - o.Top }
