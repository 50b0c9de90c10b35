package geometry

import (
	"math"
	"testing"
)

func TestScaleBetweenMapsOverlayIntoRaster(t *testing.T) {
	scale, ok := ScaleBetween(RasterSize{Width: 800, Height: 600}, Container{Width: 400, Height: 300})
	if !ok {
		t.Fatalf("expected a usable scale")
	}

	got := scale.Rect(ScreenRect{
		Position: ScreenPoint{X: 50, Y: 50},
		Size:     ScreenSize{Width: 100, Height: 100},
	})
	want := RasterRect{X: 100, Y: 100, Width: 200, Height: 200}
	if got != want {
		t.Fatalf("Rect = %v, want %v", got, want)
	}
}

func TestScaleBetweenAxesAreIndependent(t *testing.T) {
	scale, ok := ScaleBetween(RasterSize{Width: 1000, Height: 500}, Container{Width: 500, Height: 500})
	if !ok {
		t.Fatalf("expected a usable scale")
	}
	if scale.X != 2 || scale.Y != 1 {
		t.Fatalf("scale = %+v, want {2 1}", scale)
	}
}

func TestScaleBetweenRejectsUnmeasuredContainer(t *testing.T) {
	cases := []Container{
		{},
		{Width: 400},
		{Height: 300},
		{Width: -1, Height: 300},
	}
	for _, c := range cases {
		if _, ok := ScaleBetween(RasterSize{Width: 800, Height: 600}, c); ok {
			t.Errorf("ScaleBetween(%+v) ok = true, want false", c)
		}
	}
}

func TestCenterOffsetResolve(t *testing.T) {
	size := RasterSize{Width: 1000, Height: 1000}
	tests := []struct {
		name   string
		offset CenterOffset
		want   RasterPoint
	}{
		{"centre", CenterOffset{Left: 0, Top: 0}, RasterPoint{X: 500, Y: 500}},
		{"top-left corner", CenterOffset{Left: -50, Top: 50}, RasterPoint{X: 0, Y: 0}},
		{"bottom-right corner", CenterOffset{Left: 50, Top: -50}, RasterPoint{X: 1000, Y: 1000}},
		{"upwards is positive top", CenterOffset{Left: 10, Top: 20}, RasterPoint{X: 600, Y: 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.offset.Resolve(size)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Fatalf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCenterOffsetPreviewPercentages(t *testing.T) {
	o := CenterOffset{Left: -20, Top: 15}
	if o.LeftPercent() != 30 {
		t.Fatalf("LeftPercent = %v, want 30", o.LeftPercent())
	}
	if o.TopPercent() != 35 {
		t.Fatalf("TopPercent = %v, want 35", o.TopPercent())
	}
}
