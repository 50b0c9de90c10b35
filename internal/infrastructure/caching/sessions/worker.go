package sessions

import (
	"context"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

// Config controls idle session eviction.
type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Worker periodically evicts idle sessions and hands their ids to onEvict.
type Worker struct {
	store   *Store
	config  Config
	onEvict func(id string)
	logger  *logging.ChanneledLogger
	now     func() time.Time
}

// NewWorker creates a cleanup worker. onEvict may be nil.
func NewWorker(store *Store, config Config, onEvict func(id string), logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		store:   store,
		config:  config,
		onEvict: onEvict,
		logger:  logger,
		now:     time.Now,
	}
}

// Start runs the cleanup loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Session cleanup worker started", "interval", w.config.CleanupInterval, "ttl", w.config.TTL)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Session cleanup worker stopping")
			return
		case <-ticker.C:
			w.PerformCleanup()
		}
	}
}

// PerformCleanup runs one eviction pass and returns how many sessions went.
func (w *Worker) PerformCleanup() int {
	start := time.Now()
	evicted := w.store.EvictIdle(w.now(), w.config.TTL)

	for _, id := range evicted {
		if w.onEvict != nil {
			w.onEvict(id)
		}
	}

	if len(evicted) > 0 {
		w.logger.Cache().Info("Session cleanup finished",
			"evicted", len(evicted), "remaining", w.store.Len(), "duration", time.Since(start))
	} else {
		w.logger.Cache().Debug("Session cleanup found nothing idle", "remaining", w.store.Len())
	}
	return len(evicted)
}
