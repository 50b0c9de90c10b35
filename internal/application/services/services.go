// Package services provides application-level services that orchestrate the
// editing workflow between sessions, remote capabilities and storage.
package services

import (
	"errors"

	"github.com/AtRiskMedia/cutout-go/internal/domain/entities/session"
)

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrQuotaExceeded         = errors.New("free image limit reached")
	ErrLayerNotFound         = errors.New("layer not found")
	ErrInvalidEvent          = errors.New("invalid pointer event")
	ErrGenerationUnavailable = errors.New("background generation is not configured")
	ErrBusy                  = session.ErrBusy
	ErrNoOverlay             = session.ErrNoOverlay
)

// Upload is an image file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// Runner executes fire-and-forget work. Production code runs it on a new
// goroutine; tests run it inline.
type Runner func(func())

// Async runs work on its own goroutine.
func Async(work func()) { go work() }

// Inline runs work on the caller's goroutine.
func Inline(work func()) { work() }
