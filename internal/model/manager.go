// Package model owns the process-wide embedding model: it loads it once on first use and
// encodes text through it.
package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/sentembed/internal/embedding"
	"github.com/hyperjump/sentembed/internal/errs"
	"github.com/hyperjump/sentembed/internal/metrics"
	"github.com/hyperjump/sentembed/internal/progress"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of texts sent to the model per call when EncodeOptions.BatchSize is 0.
const DefaultBatchSize = 32

// Loader constructs the embedder. It is called at most once per successful load.
type Loader func(ctx context.Context) (embedding.Embedder, error)

// Handle is the loaded model resource. It is shared read-only by every caller of a Manager.
type Handle struct {
	ID       string
	ModelID  string
	Embedder embedding.Embedder
	LoadedAt time.Time
}

// Dimensions returns the output vector length of the loaded model.
func (h *Handle) Dimensions() int {
	return h.Embedder.Dimensions()
}

// EncodeOptions controls EncodeMany.
type EncodeOptions struct {
	BatchSize    int  // 0 means DefaultBatchSize
	ShowProgress bool // render a progress bar to the manager's progress writer
}

// Manager lazily loads the model and encodes text with it.
type Manager struct {
	loader     Loader
	logger     *zap.Logger
	metrics    *metrics.Metrics
	modelID    string
	dimensions int
	progressTo io.Writer

	mu     sync.Mutex
	handle atomic.Pointer[Handle]
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for load events.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records loads and encodes into met.
func WithMetrics(met *metrics.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = met }
}

// WithModelID sets the model identifier reported in logs and on the handle.
func WithModelID(id string) ManagerOption {
	return func(m *Manager) {
		if id != "" {
			m.modelID = id
		}
	}
}

// WithDimensions sets the vector length the loaded model must produce.
func WithDimensions(d int) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.dimensions = d
		}
	}
}

// WithProgressWriter sets where EncodeMany draws its progress bar. Defaults to stderr.
func WithProgressWriter(w io.Writer) ManagerOption {
	return func(m *Manager) { m.progressTo = w }
}

// NewManager returns a manager in the uninitialized state. Nothing is loaded until Acquire.
func NewManager(loader Loader, opts ...ManagerOption) *Manager {
	m := &Manager{
		loader:     loader,
		logger:     zap.NewNop(),
		modelID:    embedding.DefaultModelID,
		dimensions: embedding.DefaultDimensions,
		progressTo: os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromOptions builds a manager whose loader calls embedding.New with eo.
func NewManagerFromOptions(eo embedding.Options, opts ...ManagerOption) *Manager {
	loader := func(ctx context.Context) (embedding.Embedder, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return embedding.New(eo)
	}
	base := []ManagerOption{WithModelID(eo.ModelID), WithDimensions(eo.Dimensions)}
	return NewManager(loader, append(base, opts...)...)
}

// Ready reports whether the model has been loaded.
func (m *Manager) Ready() bool {
	return m.handle.Load() != nil
}

// Dimensions returns the configured output vector length.
func (m *Manager) Dimensions() int {
	return m.dimensions
}

// ModelID returns the configured model identifier.
func (m *Manager) ModelID() string {
	return m.modelID
}

// Acquire returns the shared model handle, loading it on the first call. Concurrent first
// callers wait for the same load. A failed load leaves the manager uninitialized, so the
// next call tries again.
func (m *Manager) Acquire(ctx context.Context) (*Handle, error) {
	if h := m.handle.Load(); h != nil {
		return h, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h := m.handle.Load(); h != nil {
		return h, nil
	}

	h, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	m.handle.Store(h)
	return h, nil
}

func (m *Manager) load(ctx context.Context) (*Handle, error) {
	id := uuid.New().String()
	m.logger.Info("loading embedding model",
		zap.String("model", m.modelID),
		zap.String("instance_id", id))

	start := time.Now()
	emb, err := m.loader(ctx)
	if err == nil && emb == nil {
		err = errors.New("loader returned no embedder")
	}
	if err == nil && emb.Dimensions() != m.dimensions {
		got := emb.Dimensions()
		_ = emb.Close()
		err = errs.EncodingFailed("load model",
			fmt.Errorf("model produces %d dimensions, configured %d", got, m.dimensions))
	}
	elapsed := time.Since(start)
	m.metrics.RecordModelLoad(elapsed, err)

	if err != nil {
		m.logger.Error("embedding model load failed",
			zap.String("model", m.modelID),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		m.metrics.RecordError("load", errs.Classify(err).String())
		if errors.Is(err, errs.ErrDependencyMissing) || errors.Is(err, errs.ErrEncodingFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("load embedding model %s: %w", m.modelID, err)
	}

	m.logger.Info("embedding model loaded",
		zap.String("model", m.modelID),
		zap.String("version", emb.ModelVersion()),
		zap.Int("dimensions", emb.Dimensions()),
		zap.Duration("duration", elapsed),
		zap.String("instance_id", id))

	return &Handle{
		ID:       id,
		ModelID:  m.modelID,
		Embedder: emb,
		LoadedAt: time.Now(),
	}, nil
}

// EncodeOne encodes a single text. Empty text is passed to the model unchanged.
func (m *Manager) EncodeOne(ctx context.Context, text string) ([]float32, error) {
	h, err := m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	vec, err := h.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, m.encodeError("encode", err)
	}
	if len(vec) != m.dimensions {
		return nil, m.encodeError("encode", m.badLength(0, len(vec)))
	}
	m.metrics.RecordEncode("one", 1, time.Since(start))
	return vec, nil
}

// EncodeMany encodes texts in groups of opts.BatchSize. The result has one vector per input,
// in input order, and does not depend on the batch size or on ShowProgress.
func (m *Manager) EncodeMany(ctx context.Context, texts []string, opts EncodeOptions) ([][]float32, error) {
	batchSize := opts.BatchSize
	if batchSize < 0 {
		return nil, errs.Invalid("batch size must not be negative, got %d", batchSize)
	}
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	h, err := m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, 0, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	var bar *progress.Bar
	if opts.ShowProgress {
		bar = progress.New(m.progressTo, "Encoding", len(texts))
		defer bar.Finish()
	}

	start := time.Now()
	for lo := 0; lo < len(texts); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hi := min(lo+batchSize, len(texts))
		vecs, err := h.Embedder.EmbedBatch(ctx, texts[lo:hi])
		if err != nil {
			return nil, m.encodeError("encode batch", fmt.Errorf("texts %d-%d: %w", lo, hi-1, err))
		}
		if len(vecs) != hi-lo {
			return nil, m.encodeError("encode batch",
				fmt.Errorf("model returned %d vectors for %d texts", len(vecs), hi-lo))
		}
		for i, v := range vecs {
			if len(v) != m.dimensions {
				return nil, m.encodeError("encode batch", m.badLength(lo+i, len(v)))
			}
		}
		out = append(out, vecs...)
		if bar != nil {
			bar.Add(hi - lo)
		}
	}
	m.metrics.RecordEncode("many", len(texts), time.Since(start))
	return out, nil
}

// Close releases the loaded model, if any. Call it once at process exit.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.handle.Swap(nil)
	if h == nil {
		return nil
	}
	return h.Embedder.Close()
}

func (m *Manager) badLength(index, got int) error {
	return fmt.Errorf("vector %d has %d dimensions, want %d", index, got, m.dimensions)
}

func (m *Manager) encodeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	wrapped := err
	if !errors.Is(err, errs.ErrEncodingFailure) {
		wrapped = errs.EncodingFailed(op, err)
	}
	m.metrics.RecordError(op, errs.Classify(wrapped).String())
	return wrapped
}
