package main

import (
	"github.com/hyperjump/sentembed/internal/config"
	"github.com/hyperjump/sentembed/internal/embedding"
	"github.com/hyperjump/sentembed/internal/metrics"
	"github.com/hyperjump/sentembed/internal/model"
	"go.uber.org/zap"
)

// Components holds the long-lived objects shared by a command.
type Components struct {
	Manager *model.Manager
	Metrics *metrics.Metrics
}

// Close releases the model.
func (c *Components) Close() error {
	return c.Manager.Close()
}

func embeddingOptions(cfg *config.Config) embedding.Options {
	e := cfg.Embedding
	return embedding.Options{
		Backend:        e.Backend,
		ModelID:        e.ModelID,
		ModelPath:      e.ModelPath(),
		TokenizerPath:  e.TokenizerPath(),
		LibraryPath:    e.ONNXLibraryPath,
		Dimensions:     e.Dimensions,
		MaxTokens:      e.MaxTokens,
		IntraOpThreads: e.IntraOpThreads,
		Normalize:      e.NormalizeOrDefault(),
		TokenTypeIDs:   e.TokenTypeIDs,
	}
}

// initializeComponents builds the model manager. Nothing is loaded until first use.
func initializeComponents(cfg *config.Config, logger *zap.Logger, opts ...model.ManagerOption) *Components {
	met := metrics.New()
	base := []model.ManagerOption{model.WithLogger(logger), model.WithMetrics(met)}
	mgr := model.NewManagerFromOptions(embeddingOptions(cfg), append(base, opts...)...)
	logger.Debug("components initialized",
		zap.String("backend", cfg.Embedding.Backend),
		zap.String("model", cfg.Embedding.ModelID),
		zap.String("model_dir", cfg.Embedding.ModelDir),
		zap.Int("dimensions", cfg.Embedding.Dimensions))
	return &Components{Manager: mgr, Metrics: met}
}
