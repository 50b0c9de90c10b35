// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AtRiskMedia/cutout-go/internal/application/services"
	"github.com/AtRiskMedia/cutout-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/cutout-go/internal/domain/profile"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/caching/sessions"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/generation"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/media"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/persistence/database"
	persistence "github.com/AtRiskMedia/cutout-go/internal/infrastructure/persistence/profile"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/removal"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/rendering"
	"github.com/AtRiskMedia/cutout-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Editing Services
	SessionService    *services.SessionService
	QuotaService      *services.QuotaService
	CutoutService     *services.CutoutService
	BackgroundService *services.BackgroundService
	PlacementService  *services.PlacementService
	LayerService      *services.LayerService
	ExportService     *services.ExportService

	// Infrastructure Dependencies
	SessionStore *sessions.Store
	Assets       *media.AssetStore
	Hub          *messaging.Hub
	DB           *database.DB
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
}

// NewContainer creates and wires all singleton services from pkg/config.
// A nil db leaves profile quotas unmetered.
func NewContainer(logger *logging.ChanneledLogger, db *database.DB) *Container {
	var profiles profile.Repository
	if db != nil {
		profiles = persistence.NewSQLProfileRepository(db, logger)
	}

	var generator generation.Generator
	if config.GenerationEndpoint != "" {
		generator = generation.NewRemoteClient(config.GenerationEndpoint, config.GenerationAPIKey, config.CapabilityTimeout)
		if enhancer := generation.NewPromptEnhancer(config.AAIAPIKey, config.AAIModel, logger.Generation()); enhancer != nil {
			generator = generation.EnhancedGenerator{Generator: generator, Enhancer: enhancer}
		}
	} else {
		logger.Startup().Warn("GENERATION_ENDPOINT not set, background generation disabled")
	}
	if config.RemovalAPIKey == "" {
		logger.Startup().Warn("REMOVAL_API_KEY not set, removal requests will likely be refused")
	}
	remover := removal.NewRemoteClient(config.RemovalEndpoint, config.RemovalAPIKey, config.CapabilityTimeout)

	store := sessions.NewStore(config.MaxSessions, logger)
	assets := media.NewAssetStore(config.MediaDir, config.ThumbnailWidths, config.WebPQuality)
	factory := rendering.NewFactory(rendering.NewFontBook(config.FontDir), logger.Compositing())
	limits := session.OverlayLimits{MaxInitial: config.MaxInitialOverlaySize, MinWidth: config.MinOverlaySize}

	quota := services.NewQuotaService(profiles, config.FreeGenerationLimit, logger)
	sessionService := services.NewSessionService(store, assets, quota, logger)

	return &Container{
		SessionService:    sessionService,
		QuotaService:      quota,
		CutoutService:     services.NewCutoutService(sessionService, remover, quota, limits, config.MaxUploadBytes, logger, services.Async),
		BackgroundService: services.NewBackgroundService(sessionService, generator, config.MaxUploadBytes, logger, services.Async),
		PlacementService:  services.NewPlacementService(sessionService),
		LayerService:      services.NewLayerService(sessionService),
		ExportService:     services.NewExportService(sessionService, factory, config.TextExportFontScale, logger),

		SessionStore: store,
		Assets:       assets,
		Hub:          messaging.NewHub(logger),
		DB:           db,
		Logger:       logger,
		PerfTracker:  performance.NewTracker(config.SlowOpTime),
	}
}

// SessionEvicted releases everything held for a session the cleanup worker dropped.
func (c *Container) SessionEvicted(id string) {
	c.Hub.CloseSession(id)
	c.SessionService.Evicted(id)
}

// Close releases the database connection.
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
