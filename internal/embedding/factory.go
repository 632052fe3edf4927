package embedding

import (
	"os"

	"github.com/hyperjump/sentembed/internal/errs"
)

// Backend names accepted by New.
const (
	BackendONNX = "onnx"
	BackendMock = "mock"
)

// Options configures an embedder backend.
type Options struct {
	Backend        string
	ModelID        string
	ModelPath      string // ONNX graph (model.onnx)
	TokenizerPath  string // HuggingFace tokenizer.json
	LibraryPath    string // onnxruntime shared library; empty uses the platform default
	OutputName     string // graph output holding token embeddings
	Dimensions     int
	MaxTokens      int
	IntraOpThreads int
	Normalize      bool
	TokenTypeIDs   bool // feed token_type_ids (BERT exports); XLM-R exports take only ids and mask
}

// New creates the embedder selected by opts.Backend. Supported: "onnx" (default), "mock".
func New(opts Options) (Embedder, error) {
	if opts.Dimensions <= 0 {
		opts.Dimensions = DefaultDimensions
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.ModelID == "" {
		opts.ModelID = DefaultModelID
	}
	if opts.OutputName == "" {
		opts.OutputName = "last_hidden_state"
	}
	switch opts.Backend {
	case BackendONNX, "":
		e, err := NewONNXEmbedder(opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	case BackendMock:
		return NewMockEmbedder(opts.Dimensions), nil
	default:
		return nil, errs.Invalid("unknown embedding backend %q (supported: onnx, mock)", opts.Backend)
	}
}

// checkModelFiles reports a missing model or tokenizer file as ErrDependencyMissing.
func checkModelFiles(opts Options) error {
	for _, f := range []struct{ what, path string }{
		{"ONNX model file", opts.ModelPath},
		{"tokenizer file", opts.TokenizerPath},
	} {
		if f.path == "" {
			return errs.DependencyMissing(f.what+" not configured", "set embedding.model_dir")
		}
		if _, err := os.Stat(f.path); err != nil {
			if os.IsNotExist(err) {
				return errs.DependencyMissing(f.what+" not found at "+f.path,
					"export "+opts.ModelID+" to ONNX and place model.onnx and tokenizer.json in embedding.model_dir")
			}
			return errs.DependencyMissing(f.what+" not readable: "+err.Error(), "")
		}
	}
	return nil
}
