package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/cutout-go/pkg/config"
)

// VerifyConnection runs a trivial query against db.
func VerifyConnection(db *sql.DB) error {
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("connection test query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("unexpected query result: %d", result)
	}
	return nil
}

// CheckAndLogSlowQuery logs query on the slow query channel when duration
// exceeds the configured threshold
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration, scope string) {
	if duration > config.SlowQueryThreshold {
		logger.LogSlowQuery(query, duration, scope)
	}
}
