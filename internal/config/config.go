package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/courtline/recordlink/internal/platform/logging"
)

// Config stores runtime configuration for the linker.
type Config struct {
	AppEnv            string
	ServiceName       string
	ServiceVersion    string
	DBURL             string
	MatchThreshold    float64
	MaxBatchSize      int
	MatchWorkers      int
	ProgressEvery     int
	CommitMaxAttempts int
	CommitBackoff     time.Duration
	UptraceEnabled    bool
	UptraceDSN        string
	LogLevel          logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}

	matchThreshold, err := getEnvAsFloat("LINK_MATCH_THRESHOLD", 0.85)
	if err != nil {
		return Config{}, fmt.Errorf("parse LINK_MATCH_THRESHOLD: %w", err)
	}
	if matchThreshold <= 0 || matchThreshold > 1 {
		return Config{}, fmt.Errorf("LINK_MATCH_THRESHOLD must be in (0, 1]")
	}

	maxBatchSize, err := getEnvAsInt("LINK_MAX_BATCH_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse LINK_MAX_BATCH_SIZE: %w", err)
	}
	if maxBatchSize < 1 || maxBatchSize > 500 {
		return Config{}, fmt.Errorf("LINK_MAX_BATCH_SIZE must be between 1 and 500")
	}

	matchWorkers, err := getEnvAsInt("LINK_MATCH_WORKERS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse LINK_MATCH_WORKERS: %w", err)
	}
	if matchWorkers < 1 {
		return Config{}, fmt.Errorf("LINK_MATCH_WORKERS must be >= 1")
	}

	progressEvery, err := getEnvAsInt("LINK_PROGRESS_EVERY", 1000)
	if err != nil {
		return Config{}, fmt.Errorf("parse LINK_PROGRESS_EVERY: %w", err)
	}
	if progressEvery < 1 {
		return Config{}, fmt.Errorf("LINK_PROGRESS_EVERY must be >= 1")
	}

	commitMaxAttempts, err := getEnvAsInt("LINK_COMMIT_MAX_ATTEMPTS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse LINK_COMMIT_MAX_ATTEMPTS: %w", err)
	}
	if commitMaxAttempts < 1 {
		return Config{}, fmt.Errorf("LINK_COMMIT_MAX_ATTEMPTS must be >= 1")
	}

	commitBackoff, err := time.ParseDuration(getEnv("LINK_COMMIT_RETRY_BACKOFF", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LINK_COMMIT_RETRY_BACKOFF: %w", err)
	}
	if commitBackoff <= 0 {
		return Config{}, fmt.Errorf("LINK_COMMIT_RETRY_BACKOFF must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	return Config{
		AppEnv:            appEnv,
		ServiceName:       getEnv("APP_SERVICE_NAME", "recordlink"),
		ServiceVersion:    getEnv("APP_SERVICE_VERSION", "dev"),
		DBURL:             dbURL,
		MatchThreshold:    matchThreshold,
		MaxBatchSize:      maxBatchSize,
		MatchWorkers:      matchWorkers,
		ProgressEvery:     progressEvery,
		CommitMaxAttempts: commitMaxAttempts,
		CommitBackoff:     commitBackoff,
		UptraceEnabled:    uptraceEnabled,
		UptraceDSN:        uptraceDSN,
		LogLevel:          parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
