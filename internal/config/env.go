package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvDebug          = "SENTEMBED_DEBUG"
	EnvHost           = "SENTEMBED_HOST"
	EnvPort           = "SENTEMBED_PORT"
	EnvRequestTimeout = "SENTEMBED_REQUEST_TIMEOUT"
	EnvBackend        = "SENTEMBED_BACKEND"
	EnvModelDir       = "SENTEMBED_MODEL_DIR"
	EnvONNXLibrary    = "SENTEMBED_ONNX_LIBRARY"
	EnvBatchSize      = "SENTEMBED_BATCH_SIZE"
)

// LoadDotEnv loads variables from the given .env files (default ".env") into the process
// environment without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overlays SENTEMBED_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		cfg.Debug = b
	}
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRequestTimeout, err)
		}
		cfg.Server.RequestTimeout = d
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Embedding.Backend = v
	}
	if v := os.Getenv(EnvModelDir); v != "" {
		cfg.Embedding.ModelDir = v
	}
	if v := os.Getenv(EnvONNXLibrary); v != "" {
		cfg.Embedding.ONNXLibraryPath = v
	}
	if v := os.Getenv(EnvBatchSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBatchSize, err)
		}
		cfg.Embedding.BatchSize = n
	}
	return nil
}
