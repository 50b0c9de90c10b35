// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AtRiskMedia/cutout-go/internal/application/container"
	"github.com/AtRiskMedia/cutout-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/cutout-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/cutout-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(container.Logger))
	r.Use(middleware.CORSMiddleware(config.CORSOrigins))
	r.MaxMultipartMemory = config.MaxUploadBytes

	// Initialize handlers
	healthHandlers := handlers.NewHealthHandlers(container.SessionStore, container.PerfTracker)
	sessionHandlers := handlers.NewSessionHandlers(container.SessionService, container.Hub, container.Logger, container.PerfTracker)
	imageHandlers := handlers.NewImageHandlers(container.SessionService, container.CutoutService, container.BackgroundService,
		config.MaxUploadBytes, container.Logger, container.PerfTracker)
	overlayHandlers := handlers.NewOverlayHandlers(container.PlacementService, container.Hub, config.CORSOrigins,
		config.WebSocketPingInterval, container.Logger, container.PerfTracker)
	layerHandlers := handlers.NewLayerHandlers(container.LayerService, container.Logger, container.PerfTracker)
	exportHandlers := handlers.NewExportHandlers(container.ExportService, container.Logger, container.PerfTracker)
	profileHandlers := handlers.NewProfileHandlers(container.QuotaService, container.Logger, container.PerfTracker)

	api := r.Group("/api/v1")
	api.Use(middleware.ProfileMiddleware())
	{
		api.GET("/health", healthHandlers.GetHealth)
		api.GET("/health/stats", healthHandlers.GetStats)

		api.GET("/profiles/:id", profileHandlers.GetProfile)

		api.POST("/sessions", sessionHandlers.PostSession)
		sess := api.Group("/sessions/:id")
		{
			sess.GET("", sessionHandlers.GetSession)
			sess.DELETE("", sessionHandlers.DeleteSession)

			sess.POST("/image", imageHandlers.PostImage)
			sess.POST("/background", imageHandlers.PostBackground)
			sess.POST("/background/generate", imageHandlers.PostGenerateBackground)
			sess.GET("/assets/:kind", imageHandlers.GetAsset)

			sess.POST("/overlay/pointer", overlayHandlers.PostPointer)
			sess.POST("/overlay/select", overlayHandlers.PostSelect)
			sess.POST("/overlay/click-outside", overlayHandlers.PostClickOutside)
			sess.GET("/overlay/ws", overlayHandlers.GetStream)

			sess.GET("/layers", layerHandlers.GetLayers)
			sess.POST("/layers", layerHandlers.PostLayer)
			sess.GET("/layers/preview", layerHandlers.GetLayerPreviews)
			sess.PATCH("/layers/:layerId", layerHandlers.PatchLayer)
			sess.DELETE("/layers/:layerId", layerHandlers.DeleteLayer)
			sess.POST("/layers/:layerId/duplicate", layerHandlers.PostDuplicateLayer)

			sess.GET("/export/cutout", exportHandlers.GetCutout)
			sess.POST("/export/placement", exportHandlers.PostPlacement)
			sess.POST("/export/text-behind", exportHandlers.PostTextBehind)
		}
	}

	return r
}
