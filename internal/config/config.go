package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	CatalogPath    string
	MediaDir       string
	AdminPassword  string
	ReportLimit    int
	SessionTTL     time.Duration
	ImportVotesCSV string
	LogLevel       string
	LogFile        string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory. Variables already set take precedence.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "data/brandswipe.db"),
		CatalogPath:    getEnv("CATALOG_PATH", "images.csv"),
		MediaDir:       getEnv("MEDIA_DIR", "images"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		ReportLimit:    getEnvInt("REPORT_LIMIT", 10),
		SessionTTL:     getEnvDuration("SESSION_TTL", 12*time.Hour),
		ImportVotesCSV: getEnv("IMPORT_VOTES_CSV", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return d
}
