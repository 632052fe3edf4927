// Package embedding provides the text embedding capability: an ONNX Runtime backend for
// sentence-transformer models and a deterministic mock for tests.
package embedding

import "context"

const (
	// DefaultModelID is the multilingual paraphrase model the service is built around.
	DefaultModelID = "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2"
	// DefaultDimensions is the output dimension of DefaultModelID.
	DefaultDimensions = 384
	// DefaultMaxTokens bounds the tokenized length of one input (the model's max_seq_length).
	DefaultMaxTokens = 128
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	// Embed returns the embedding of a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelVersion returns the model identifier.
	ModelVersion() string

	// Dimensions returns the embedding vector dimension.
	Dimensions() int

	// Close releases resources held by the embedder.
	Close() error
}
