//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperjump/sentembed/internal/errs"
	"github.com/hyperjump/sentembed/pkg/utils"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXEmbedder runs a sentence-transformer exported to ONNX: tokenize, run the encoder,
// mean-pool token embeddings over the attention mask, optionally L2-normalize.
// It requires CGO, the onnxruntime shared library and libtokenizers.
type ONNXEmbedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  Tokenizer
	modelID    string
	dimensions int
	maxTokens  int
	normalize  bool
	typeIDs    bool
	mu         sync.Mutex
}

// NewONNXEmbedder creates an ONNX embedder. InitializeEnvironment is called if not already done.
// Missing model files or an unloadable runtime are reported as errs.ErrDependencyMissing.
func NewONNXEmbedder(opts Options) (*ONNXEmbedder, error) {
	if err := checkModelFiles(opts); err != nil {
		return nil, err
	}

	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errs.DependencyMissing("ONNX Runtime shared library could not be loaded: "+err.Error(),
				"install onnxruntime or set embedding.onnx_library_path")
		}
	}

	tokenizer, err := NewHFTokenizer(opts.TokenizerPath)
	if err != nil {
		return nil, err
	}

	sessionOptions, err := ort.NewSessionOptions()
	if err != nil {
		_ = tokenizer.Close()
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer sessionOptions.Destroy()
	if opts.IntraOpThreads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			_ = tokenizer.Close()
			return nil, fmt.Errorf("failed to set intra-op threads: %w", err)
		}
	}

	inputNames := []string{"input_ids", "attention_mask"}
	if opts.TokenTypeIDs {
		inputNames = append(inputNames, "token_type_ids")
	}
	session, err := ort.NewDynamicAdvancedSession(
		opts.ModelPath,
		inputNames,
		[]string{opts.OutputName},
		sessionOptions,
	)
	if err != nil {
		_ = tokenizer.Close()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXEmbedder{
		session:    session,
		tokenizer:  tokenizer,
		modelID:    opts.ModelID,
		dimensions: opts.Dimensions,
		maxTokens:  opts.MaxTokens,
		normalize:  opts.Normalize,
		typeIDs:    opts.TokenTypeIDs,
	}, nil
}

// Embed returns the embedding for text.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch runs all texts through the model in a single padded batch.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := padBatch(e.tokenizer, texts, e.maxTokens)
	shape := ort.NewShape(int64(batch.size), int64(batch.seqLen))

	inputIDsTensor, err := ort.NewTensor(shape, batch.inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer inputIDsTensor.Destroy()
	attentionMaskTensor, err := ort.NewTensor(shape, batch.attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()
	inputs := []ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor}
	if e.typeIDs {
		tokenTypeIDsTensor, err := ort.NewTensor(shape, batch.tokenTypeIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
		}
		defer tokenTypeIDsTensor.Destroy()
		inputs = append(inputs, tokenTypeIDsTensor)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(batch.size), int64(batch.seqLen), int64(e.dimensions)))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	e.mu.Lock()
	err = e.session.Run(inputs, []ort.ArbitraryTensor{outputTensor})
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	embeddings := meanPool(outputTensor.GetData(), batch.attentionMask, batch.size, batch.seqLen, e.dimensions)
	if e.normalize {
		for _, emb := range embeddings {
			utils.NormalizeL2(emb)
		}
	}
	return embeddings, nil
}

// ModelVersion returns the model identifier.
func (e *ONNXEmbedder) ModelVersion() string {
	return e.modelID
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and the tokenizer.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	if e.tokenizer != nil {
		_ = e.tokenizer.Close()
		e.tokenizer = nil
	}
	return err
}
