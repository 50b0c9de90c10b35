// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/application/container"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/caching/sessions"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/cutout-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/cutout-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence and blocks until shutdown.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
   ___ _   _| |_ ___  _   _| |_
  / __| | | | __/ _ \| | | | __|
 | (__| |_| | || (_) | |_| | |_
  \___|\__,_|\__\___/ \__,_|\__|
` + "\033[97m" + `
  made by At Risk Media
` + "\033[0m")

	// Step 1: Channeled logging
	log.Println("Initializing logging...")
	logCfg := logging.DefaultLoggerConfig()
	logCfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
	logCfg.OutputToFile = config.LogToFile
	logCfg.LogDirectory = config.LogDir
	logCfg.JSONFormat = config.LogJSON
	logger, err := logging.NewChanneledLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Switching to channeled logging", "level", config.LogLevel, "toFile", config.LogToFile)

	// Step 2: Profile database
	phaseStart := time.Now()
	db, err := database.Open(database.Options{
		Driver:          config.DBDriver,
		Path:            config.DBPath,
		URL:             config.TursoDatabaseURL,
		AuthToken:       config.TursoAuthToken,
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
	}, logger)
	if err != nil {
		logger.LogStartupPhase("database", time.Since(phaseStart), false, map[string]any{"driver": config.DBDriver})
		return fmt.Errorf("failed to open profile database: %w", err)
	}
	logger.LogStartupPhase("database", time.Since(phaseStart), true, map[string]any{"driver": config.DBDriver})

	// Step 3: Dependency injection container
	phaseStart = time.Now()
	appContainer := container.NewContainer(logger, db)
	logger.LogStartupPhase("container", time.Since(phaseStart), true, nil)

	// Step 4: Session cleanup worker
	cleanupWorker := sessions.NewWorker(appContainer.SessionStore, sessions.Config{
		TTL:             config.SessionTTL,
		CleanupInterval: config.SessionCleanupInterval,
	}, appContainer.SessionEvicted, logger)
	go cleanupWorker.Start(ctx)

	// Step 5: HTTP server
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+config.Port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port,
		"mediaDir", config.MediaDir)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing profile database...")
	if err := appContainer.Close(); err != nil {
		logger.Shutdown().Error("Error closing profile database", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart),
		"liveSessions", appContainer.SessionStore.Len())

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
