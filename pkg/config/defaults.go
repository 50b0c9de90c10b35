// Package config provides centralized default values for cutout-go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		// existing environment variables win over .env entries
		if err := godotenv.Load(); err != nil {
			return
		}
		log.Println("Loaded configuration overrides from .env file")
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, redact(key, val), defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	log.Printf("Config override: %s=%v", key, out)
	return out
}

// redact keeps secrets out of the override log line.
func redact(key, val string) string {
	upper := strings.ToUpper(key)
	if strings.Contains(upper, "KEY") || strings.Contains(upper, "TOKEN") || strings.Contains(upper, "SECRET") {
		return "****"
	}
	return val
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	CORSOrigins        []string

	// Logging
	LogLevel   string
	LogDir     string
	LogToFile  bool
	LogJSON    bool
	SlowOpTime time.Duration

	// Database
	DBDriver                 string
	DBPath                   string
	TursoDatabaseURL         string
	TursoAuthToken           string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	SlowQueryThreshold       time.Duration

	// Media
	MediaDir        string
	MaxUploadBytes  int64
	ThumbnailWidths []int
	WebPQuality     float32
	FontDir         string

	// Compositing
	MinOverlaySize        float64
	MaxInitialOverlaySize float64
	TextExportFontScale   float64

	// Remote capabilities
	RemovalEndpoint    string
	RemovalAPIKey      string
	GenerationEndpoint string
	GenerationAPIKey   string
	CapabilityTimeout  time.Duration
	AAIAPIKey          string
	AAIModel           string

	// Quota
	FreeGenerationLimit int

	// Sessions
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	MaxSessions            int
	WebSocketPingInterval  time.Duration
)

func init() {
	Load()
}

// Load (re)reads every configuration variable from the environment.
func Load() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	CORSOrigins = getEnvList("CORS_ORIGINS", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://[::1]:3000", // IPv6 localhost
	})

	// Logging
	LogLevel = getEnvString("LOG_LEVEL", "info")
	LogDir = getEnvString("LOG_DIR", "logs")
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogJSON = getEnvBool("LOG_JSON", true)
	SlowOpTime = getEnvDuration("SLOW_OPERATION_THRESHOLD", 2*time.Second)

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "db/cutout.db")
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)

	// Media
	MediaDir = getEnvString("MEDIA_DIR", "media")
	MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", 5242880)) // 5MB
	ThumbnailWidths = []int{1200, 600, 300}
	WebPQuality = float32(getEnvFloat("WEBP_QUALITY", 85))
	FontDir = getEnvString("FONT_DIR", "fonts")

	// Compositing
	MinOverlaySize = getEnvFloat("MIN_OVERLAY_SIZE", 100)
	MaxInitialOverlaySize = getEnvFloat("MAX_INITIAL_OVERLAY_SIZE", 800)
	TextExportFontScale = getEnvFloat("TEXT_EXPORT_FONT_SCALE", 3)

	// Remote capabilities
	RemovalEndpoint = getEnvString("REMOVAL_ENDPOINT", "https://api.remove.bg/v1.0/removebg")
	RemovalAPIKey = getEnvString("REMOVAL_API_KEY", "")
	GenerationEndpoint = getEnvString("GENERATION_ENDPOINT", "")
	GenerationAPIKey = getEnvString("GENERATION_API_KEY", "")
	CapabilityTimeout = getEnvDuration("CAPABILITY_TIMEOUT", 90*time.Second)
	AAIAPIKey = getEnvString("AAI_API_KEY", "")
	AAIModel = getEnvString("AAI_MODEL", "anthropic/claude-3-5-sonnet")

	// Quota
	FreeGenerationLimit = getEnvInt("FREE_GENERATION_LIMIT", 2)

	// Sessions
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)) * time.Minute
	SessionCleanupInterval = time.Duration(getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute
	MaxSessions = getEnvInt("MAX_SESSIONS", 1000)
	WebSocketPingInterval = getEnvDuration("WEBSOCKET_PING_INTERVAL", 30*time.Second)
}
