package config

import "time"

// DefaultModelDir is where the exported model is looked up when embedding.model_dir is unset.
const DefaultModelDir = "/usr/local/var/sentembed/models/paraphrase-multilingual-MiniLM-L12-v2"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = "onnx"
	}
	if cfg.Embedding.ModelID == "" {
		cfg.Embedding.ModelID = "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2"
	}
	if cfg.Embedding.ModelDir == "" {
		cfg.Embedding.ModelDir = DefaultModelDir
	}
	if cfg.Embedding.ModelFile == "" {
		cfg.Embedding.ModelFile = "model.onnx"
	}
	if cfg.Embedding.TokenizerFile == "" {
		cfg.Embedding.TokenizerFile = "tokenizer.json"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 128
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Similarity.DefaultTopK == 0 {
		cfg.Similarity.DefaultTopK = 10
	}
	if cfg.Similarity.MaxTopK == 0 {
		cfg.Similarity.MaxTopK = 1000
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
