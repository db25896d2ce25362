// Package config centralizes the process-wide knobs this service reads from
// its environment. DSP constants baked into the fingerprint hash live here as
// named constants rather than runtime-tunable fields: changing any of them
// invalidates every posting already stored, so they are not exposed as flags.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DSP constants baked into the fingerprint hash. Changing any of these
// requires reindexing the entire catalog.
const (
	TargetSampleRate = 11025
	WindowSize       = 2048
	HopSize          = 512
	NeighborhoodBins = 25
	NeighborhoodTime = 25
	Sensitivity      = 2.0
	PeaksPerFrame    = 8
	Fanout           = 8
	MinFrameDelta    = 0
	MaxFrameDeltaMs  = 1500
	BinSizeMs        = 3

	DefaultTopN         = 5
	DefaultChunkTimeMs  = 1000
	DefaultStrideMs     = 300
	DefaultSessionLimit = 20000 // ms
)

// Config holds the environment-derived settings for the server and indexer
// binaries. Populated by Load, with sensible development-mode fallbacks the
// same way the reference backend's main() reads os.Getenv with defaults.
type Config struct {
	LogLevel string
	LogFile  string

	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	ServerPort     string
	MetricsPort    string
	SessionTimeout int // milliseconds

	IndexerWorkers int
}

// Load populates a Config from the process environment, applying defaults
// for anything unset. It never fails — missing values fall back to
// development-friendly defaults, matching how the reference backend treats
// optional environment variables.
func Load() *Config {
	c := &Config{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", "echoprint.log"),
		DatabaseHost:     getEnv("DB_HOST", "localhost"),
		DatabasePort:     getEnv("DB_PORT", "5432"),
		DatabaseUser:     getEnv("DB_USER", "echoprint"),
		DatabasePassword: getEnv("DB_PASSWORD", ""),
		DatabaseName:     getEnv("DB_NAME", "echoprint"),
		DatabaseSSLMode:  getEnv("DB_SSLMODE", "disable"),
		ServerPort:       getEnv("PORT", "8788"),
		MetricsPort:      getEnv("METRICS_PORT", "9090"),
		SessionTimeout:   getEnvInt("SESSION_TIMEOUT_MS", DefaultSessionLimit),
		IndexerWorkers:   getEnvInt("INDEXER_WORKERS", 4),
	}
	return c
}

// DSN builds a Postgres connection string for gorm.io/driver/postgres.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUser, c.DatabasePassword, c.DatabaseName, c.DatabaseSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
