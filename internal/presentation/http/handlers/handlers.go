// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/removal"
	"github.com/gin-gonic/gin"
)

var (
	errMissingUpload = errors.New("missing " + removal.FormField + " form field")
	errBadRequest    = errors.New("invalid request body")
)

// errorStatus maps service and media errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrLayerNotFound),
		errors.Is(err, media.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrQuotaExceeded):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrBusy),
		errors.Is(err, services.ErrNoOverlay):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidEvent),
		errors.Is(err, errMissingUpload),
		errors.Is(err, errBadRequest),
		errors.Is(err, media.ErrUnknownKind),
		errors.Is(err, media.ErrUnsupportedWidth):
		return http.StatusBadRequest
	case errors.Is(err, media.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, media.ErrUndecodable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Server errors are logged and
// their detail withheld from the client.
func respondError(c *gin.Context, logger *logging.ChanneledLogger, marker *performance.Marker, err error) {
	marker.SetError(err)
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.LogError(logging.ChannelHTTP, marker.Operation, err, c.Param("id"))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// finish records the marker and flags slow requests on the perf channel.
func finish(perf *performance.Tracker, logger *logging.ChanneledLogger, marker *performance.Marker) {
	if perf.CompleteOperation(marker) {
		logger.Perf().Warn("Slow request", "operation", marker.Operation, "duration", marker.Duration, "success", marker.Success)
	}
}

// readUpload reads the multipart image file, refusing oversized parts
// before buffering them.
func readUpload(c *gin.Context, maxBytes int64) (services.Upload, error) {
	fh, err := c.FormFile(removal.FormField)
	if err != nil {
		return services.Upload{}, errMissingUpload
	}
	if err := media.ValidateUpload(fh.Filename, fh.Size, maxBytes); err != nil {
		return services.Upload{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return services.Upload{Filename: fh.Filename, Data: data}, nil
}
