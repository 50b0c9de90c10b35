package placement

import (
	"math"
	"testing"

	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
)

const tolerance = 1e-9

func newTestOverlay(t *testing.T, w, h float64) *Overlay {
	t.Helper()
	o, err := NewOverlay(geometry.RasterSize{Width: w, Height: h}, 800, 100)
	if err != nil {
		t.Fatalf("NewOverlay: %v", err)
	}
	return o
}

func pt(x, y float64) geometry.ScreenPoint { return geometry.ScreenPoint{X: x, Y: y} }

func TestNewOverlayCapsInitialWidth(t *testing.T) {
	o := newTestOverlay(t, 1600, 1200)
	if o.Size.Width != 800 || math.Abs(o.Size.Height-600) > tolerance {
		t.Fatalf("size = %+v, want 800x600", o.Size)
	}
	if math.Abs(o.AspectRatio-4.0/3.0) > tolerance {
		t.Fatalf("aspect = %v", o.AspectRatio)
	}
	if _, ok := o.Interaction().(Idle); !ok {
		t.Fatalf("new overlay should be idle")
	}
}

func TestNewOverlayFloorsTinyImages(t *testing.T) {
	o := newTestOverlay(t, 40, 20)
	if o.Size.Width != 100 || o.Size.Height != 50 {
		t.Fatalf("size = %+v, want 100x50", o.Size)
	}
}

func TestNewOverlayRejectsEmptyImage(t *testing.T) {
	if _, err := NewOverlay(geometry.RasterSize{Width: 0, Height: 10}, 800, 100); err == nil {
		t.Fatalf("expected error for empty foreground")
	}
}

func TestDragFollowsPointerUnclamped(t *testing.T) {
	o := newTestOverlay(t, 400, 400)
	o.Position = pt(10, 20)

	o.PointerDown(pt(30, 50))
	if !o.Selected {
		t.Fatalf("pointer down should select the overlay")
	}
	o.PointerMove(pt(-500, -700))
	if o.Position != pt(-520, -730) {
		t.Fatalf("position = %+v, want (-520,-730)", o.Position)
	}

	o.PointerUp()
	o.PointerMove(pt(0, 0))
	if o.Position != pt(-520, -730) {
		t.Fatalf("move after pointer up changed position to %+v", o.Position)
	}
}

func TestPointerLeaveEndsGesture(t *testing.T) {
	o := newTestOverlay(t, 400, 400)
	o.PointerDown(pt(5, 5))
	o.PointerLeave()
	if _, ok := o.Interaction().(Idle); !ok {
		t.Fatalf("interaction = %T, want Idle", o.Interaction())
	}
}

func TestBottomRightResizeGrowsWidthAndKeepsPosition(t *testing.T) {
	tests := []struct {
		dx, dy    float64
		wantWidth float64
	}{
		{dx: 50, dy: 10, wantWidth: 450},
		{dx: 1, dy: -100, wantWidth: 401},
		{dx: -350, dy: 0, wantWidth: 100},
	}
	for _, tt := range tests {
		o := newTestOverlay(t, 400, 200)
		o.Position = pt(20, 30)
		o.Select()
		if !o.HandleDown(HandleBottomRight, pt(420, 230)) {
			t.Fatalf("HandleDown refused on selected overlay")
		}
		o.PointerMove(pt(420+tt.dx, 230+tt.dy))

		if math.Abs(o.Size.Width-tt.wantWidth) > tolerance {
			t.Errorf("dx=%v: width = %v, want %v", tt.dx, o.Size.Width, tt.wantWidth)
		}
		if math.Abs(o.Size.Height-tt.wantWidth/2) > tolerance {
			t.Errorf("dx=%v: height = %v, want %v", tt.dx, o.Size.Height, tt.wantWidth/2)
		}
		if o.Position != pt(20, 30) {
			t.Errorf("dx=%v: position moved to %+v", tt.dx, o.Position)
		}
	}
}

func TestTopLeftResizeAnchorsBottomRightInRaster(t *testing.T) {
	o := newTestOverlay(t, 300, 200)
	o.Position = pt(100, 80)
	o.Select()

	container := geometry.Container{Width: 600, Height: 400}
	natural := geometry.RasterSize{Width: 1800, Height: 1000}
	scale, ok := geometry.ScaleBetween(natural, container)
	if !ok {
		t.Fatalf("scale not available")
	}
	before := scale.Rect(o.Rect())

	o.HandleDown(HandleTopLeft, pt(100, 80))
	for _, p := range []geometry.ScreenPoint{pt(60, 70), pt(140, 90), pt(-30, 10), pt(350, 300)} {
		o.PointerMove(p)
		after := scale.Rect(o.Rect())
		if math.Abs((before.X+before.Width)-(after.X+after.Width)) > 1e-6 ||
			math.Abs((before.Y+before.Height)-(after.Y+after.Height)) > 1e-6 {
			t.Fatalf("bottom-right moved: before %v after %v (pointer %+v)", before, after, p)
		}
	}
}

func TestResizeKeepsAspectRatioAcrossGestures(t *testing.T) {
	o := newTestOverlay(t, 640, 480)
	want := o.AspectRatio
	o.Select()

	gestures := []struct {
		h     Handle
		start geometry.ScreenPoint
		moves []geometry.ScreenPoint
	}{
		{HandleBottomRight, pt(640, 480), []geometry.ScreenPoint{pt(700, 400), pt(333, 999)}},
		{HandleTopLeft, pt(0, 0), []geometry.ScreenPoint{pt(-77, 12), pt(150, 150)}},
		{HandleTopRight, pt(300, 0), []geometry.ScreenPoint{pt(1000, -3)}},
		{HandleBottomLeft, pt(0, 300), []geometry.ScreenPoint{pt(999, 0), pt(-12.5, 7)}},
	}
	for _, g := range gestures {
		o.HandleDown(g.h, g.start)
		for _, m := range g.moves {
			o.PointerMove(m)
			if got := o.Size.Width / o.Size.Height; math.Abs(got-want) > 1e-9 {
				t.Fatalf("aspect drifted to %v after %s move %+v, want %v", got, g.h, m, want)
			}
			if o.Size.Width < 100 {
				t.Fatalf("width %v under minimum", o.Size.Width)
			}
		}
		o.PointerUp()
	}
}

func TestHandleDownIgnoredWhenNotSelected(t *testing.T) {
	o := newTestOverlay(t, 400, 400)
	if o.HandleDown(HandleTopRight, pt(400, 0)) {
		t.Fatalf("HandleDown on unselected overlay should be ignored")
	}
	if _, ok := o.Interaction().(Idle); !ok {
		t.Fatalf("interaction = %T, want Idle", o.Interaction())
	}
}

func TestClickOutsideCancelsResizeAndSelection(t *testing.T) {
	o := newTestOverlay(t, 400, 400)
	o.Select()
	o.HandleDown(HandleTopRight, pt(400, 0))

	o.ClickOutside()
	if o.Selected {
		t.Fatalf("selection should be cleared")
	}
	if _, ok := o.Interaction().(Idle); !ok {
		t.Fatalf("resize should be cancelled, got %T", o.Interaction())
	}

	size := o.Size
	o.PointerMove(pt(900, 900))
	if o.Size != size {
		t.Fatalf("move after cancel resized overlay to %+v", o.Size)
	}
}

func TestDragReplacesResize(t *testing.T) {
	o := newTestOverlay(t, 400, 400)
	o.Select()
	o.HandleDown(HandleBottomLeft, pt(0, 400))
	o.PointerDown(pt(10, 10))

	if _, ok := o.Interaction().(Dragging); !ok {
		t.Fatalf("interaction = %T, want Dragging", o.Interaction())
	}
}

func TestSnapshotReportsMode(t *testing.T) {
	o := newTestOverlay(t, 400, 400)
	o.Select()
	o.HandleDown(HandleTopLeft, pt(0, 0))

	st := o.Snapshot()
	if st.Mode != "resizing" || st.Handle != HandleTopLeft || !st.Selected {
		t.Fatalf("snapshot = %+v", st)
	}
}

func TestParseHandle(t *testing.T) {
	if _, err := ParseHandle("bottom-right"); err != nil {
		t.Fatalf("ParseHandle(bottom-right): %v", err)
	}
	if _, err := ParseHandle("middle"); err == nil {
		t.Fatalf("expected error for unknown handle")
	}
}
