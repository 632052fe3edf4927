//go:build !cgo
// +build !cgo

package embedding

import (
	"context"

	"github.com/hyperjump/sentembed/internal/errs"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct{}

var errNoCGO = errs.DependencyMissing("ONNX embedder requires CGO",
	"build with CGO_ENABLED=1 and install onnxruntime and libtokenizers")

// NewONNXEmbedder returns ErrDependencyMissing when built without CGO (ONNX not available).
func NewONNXEmbedder(_ Options) (*ONNXEmbedder, error) {
	return nil, errNoCGO
}

// Embed always fails.
func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, errNoCGO }

// EmbedBatch always fails.
func (e *ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, errNoCGO
}

// ModelVersion returns an empty identifier.
func (e *ONNXEmbedder) ModelVersion() string { return "" }

// Dimensions returns 0.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Close is a no-op.
func (e *ONNXEmbedder) Close() error { return nil }
