package services

import (
	"errors"
	"image/color"
	"testing"

	"github.com/AtRiskMedia/cutout-go/internal/domain/geometry"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
)

func TestBeginRemovalSuccess(t *testing.T) {
	h := newHarness(t)
	sess := h.ready(t, "")

	snap := sess.Snapshot()
	if !snap.SetupDone || snap.RemovingBackground || snap.Overlay == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
	// initial overlay width is the cutout's natural width (200 < 800)
	if snap.Overlay.Size != (geometry.ScreenSize{Width: 200, Height: 100}) {
		t.Fatalf("overlay size = %+v", snap.Overlay.Size)
	}
	if _, err := h.assets.Open(sess.ID, media.KindCutout); err != nil {
		t.Fatalf("cutout asset not stored: %v", err)
	}
	if _, err := h.assets.Open(sess.ID, media.KindOriginal); err != nil {
		t.Fatalf("original asset not stored: %v", err)
	}
}

func TestBeginRemovalFailureLeavesNoCutout(t *testing.T) {
	h := newHarness(t)
	sess, _ := h.sessions.Create("")
	h.remover.err = errors.New("service unavailable")

	err := h.cutouts.BeginRemoval(sess.ID, Upload{Filename: "a.png", Data: pngOf(t, 10, 10, color.White)})
	if err != nil {
		t.Fatalf("BeginRemoval should accept the upload: %v", err)
	}
	snap := sess.Snapshot()
	if snap.RemovingBackground || snap.SetupDone || snap.Cutout != nil {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.LastError != "service unavailable" {
		t.Fatalf("last error = %q", snap.LastError)
	}
}

func TestBeginRemovalUndecodableResult(t *testing.T) {
	h := newHarness(t)
	sess, _ := h.sessions.Create("")
	h.remover.out = []byte("not a png")

	h.cutouts.BeginRemoval(sess.ID, Upload{Filename: "a.png", Data: pngOf(t, 10, 10, color.White)})
	if snap := sess.Snapshot(); snap.SetupDone || snap.LastError == "" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestBeginRemovalValidation(t *testing.T) {
	h := newHarness(t)
	sess, _ := h.sessions.Create("")
	valid := pngOf(t, 4, 4, color.White)

	tests := []struct {
		name string
		id   string
		up   Upload
		want error
	}{
		{"unknown session", "nope", Upload{Filename: "a.png", Data: valid}, ErrSessionNotFound},
		{"bad extension", sess.ID, Upload{Filename: "a.gif", Data: valid}, media.ErrUnsupportedFormat},
		{"too large", sess.ID, Upload{Filename: "a.png", Data: make([]byte, maxUpload+1)}, media.ErrTooLarge},
		{"garbage", sess.ID, Upload{Filename: "a.png", Data: []byte("junk")}, media.ErrUndecodable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.cutouts.BeginRemoval(tt.id, tt.up); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if h.remover.calls != 0 {
		t.Fatalf("remover called for rejected uploads")
	}
}

func TestQuotaLimitsRemovals(t *testing.T) {
	h := newHarness(t)
	h.ready(t, "p1")
	h.ready(t, "p1")

	p, _ := h.profiles.FindByID("p1")
	if p.ImagesGenerated != 2 {
		t.Fatalf("images generated = %d, want 2", p.ImagesGenerated)
	}

	sess, _ := h.sessions.Create("p1")
	err := h.cutouts.BeginRemoval(sess.ID, Upload{Filename: "a.png", Data: pngOf(t, 4, 4, color.White)})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("third removal: err = %v, want ErrQuotaExceeded", err)
	}

	h.profiles.SetPaid("p1", true)
	if err := h.cutouts.BeginRemoval(sess.ID, Upload{Filename: "a.png", Data: pngOf(t, 4, 4, color.White)}); err != nil {
		t.Fatalf("paid removal refused: %v", err)
	}

	// anonymous sessions are never metered
	for i := 0; i < 3; i++ {
		h.ready(t, "")
	}
}

func TestFailedRemovalDoesNotCountAgainstQuota(t *testing.T) {
	h := newHarness(t)
	sess, _ := h.sessions.Create("p1")
	h.remover.err = errors.New("down")
	h.cutouts.BeginRemoval(sess.ID, Upload{Filename: "a.png", Data: pngOf(t, 4, 4, color.White)})

	if p, _ := h.profiles.FindByID("p1"); p.ImagesGenerated != 0 {
		t.Fatalf("failed removal counted: %d", p.ImagesGenerated)
	}
}

func TestBeginRemovalWhileBusy(t *testing.T) {
	h := newHarness(t)
	h.cutouts.run = func(func()) {} // never completes
	sess, _ := h.sessions.Create("")
	up := Upload{Filename: "a.png", Data: pngOf(t, 4, 4, color.White)}

	if err := h.cutouts.BeginRemoval(sess.ID, up); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := h.cutouts.BeginRemoval(sess.ID, up); !errors.Is(err, ErrBusy) {
		t.Fatalf("second: err = %v, want ErrBusy", err)
	}
}
