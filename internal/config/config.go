// Package config provides configuration loading and structs for the sentembed server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EmbeddingConfig holds model and backend settings.
type EmbeddingConfig struct {
	Backend         string `yaml:"backend"`
	ModelID         string `yaml:"model_id"`
	ModelDir        string `yaml:"model_dir"`
	ModelFile       string `yaml:"model_file"`
	TokenizerFile   string `yaml:"tokenizer_file"`
	ONNXLibraryPath string `yaml:"onnx_library_path"`
	Dimensions      int    `yaml:"dimensions"`
	MaxTokens       int    `yaml:"max_tokens"`
	BatchSize       int    `yaml:"batch_size"`
	IntraOpThreads  int    `yaml:"intra_op_threads"`
	TokenTypeIDs    bool   `yaml:"token_type_ids"`
	Normalize       *bool  `yaml:"normalize"`
	WarmUp          *bool  `yaml:"warm_up"`
}

// ModelPath returns the ONNX graph location.
func (e *EmbeddingConfig) ModelPath() string {
	return filepath.Join(e.ModelDir, e.ModelFile)
}

// TokenizerPath returns the tokenizer.json location.
func (e *EmbeddingConfig) TokenizerPath() string {
	return filepath.Join(e.ModelDir, e.TokenizerFile)
}

// NormalizeOrDefault returns whether outputs are L2-normalized; defaults to true when unset.
func (e *EmbeddingConfig) NormalizeOrDefault() bool {
	if e.Normalize != nil {
		return *e.Normalize
	}
	return true
}

// WarmUpOrDefault returns whether the server loads the model before serving; defaults to true when unset.
func (e *EmbeddingConfig) WarmUpOrDefault() bool {
	if e.WarmUp != nil {
		return *e.WarmUp
	}
	return true
}

// SimilarityConfig holds ranking defaults and limits.
type SimilarityConfig struct {
	DefaultTopK          int      `yaml:"default_top_k"`
	MaxTopK              int      `yaml:"max_top_k"`
	DefaultMinSimilarity *float64 `yaml:"default_min_similarity"`
}

// MinSimilarityOrDefault returns the configured threshold, or 0.5 when unset.
func (s *SimilarityConfig) MinSimilarityOrDefault() float64 {
	if s.DefaultMinSimilarity != nil {
		return *s.DefaultMinSimilarity
	}
	return 0.5
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// EnabledOrDefault returns whether /metrics is served; defaults to true when unset.
func (m *MetricsConfig) EnabledOrDefault() bool {
	if m.Enabled != nil {
		return *m.Enabled
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Embedding.ModelDir = expandPath(cfg.Embedding.ModelDir, configDir)
	if cfg.Embedding.ONNXLibraryPath != "" {
		cfg.Embedding.ONNXLibraryPath = expandPath(cfg.Embedding.ONNXLibraryPath, configDir)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg = &Config{}
		ApplyDefaults(cfg)
		return cfg, nil
	}
	return nil, err
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
