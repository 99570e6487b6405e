// Package config reads process settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds everything the binaries need to start.
type Config struct {
	Store        string   // TRIPSYNC_STORE: memory or postgres
	DatabaseURL  string   // DATABASE_URL, required for postgres
	KafkaBrokers []string // KAFKA_BROKERS, comma separated; empty disables publishing
	KafkaTopic   string   // KAFKA_TOPIC
	HTTPAddr     string   // HTTP_ADDR
	Currency     string   // CURRENCY, ISO 4217 code used to display amounts
	LogLevel     string   // LOG_LEVEL
	LogFormat    string   // LOG_FORMAT: text or json
	TripDefaults string   // TRIP_DEFAULTS, optional YAML file replacing the built-in defaults
}

// Load reads envFile (when it exists) into the environment without overriding
// variables already set, then builds a Config.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Store:        strings.ToLower(getenv("TRIPSYNC_STORE", StoreMemory)),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "tripsync.path_changed"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		Currency:     strings.ToUpper(getenv("CURRENCY", "EUR")),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFormat:    getenv("LOG_FORMAT", "text"),
		TripDefaults: os.Getenv("TRIP_DEFAULTS"),
	}
	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when TRIPSYNC_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown TRIPSYNC_STORE %q", c.Store)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
