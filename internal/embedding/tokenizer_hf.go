//go:build cgo
// +build cgo

package embedding

import (
	"fmt"

	"github.com/daulet/tokenizers"
)

// HFTokenizer wraps a HuggingFace tokenizer.json (requires CGO and libtokenizers).
type HFTokenizer struct {
	tk *tokenizers.Tokenizer
}

// NewHFTokenizer loads the tokenizer definition at path.
func NewHFTokenizer(path string) (*HFTokenizer, error) {
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", path, err)
	}
	return &HFTokenizer{tk: tk}, nil
}

// Tokenize encodes text with special tokens and truncates to maxTokens.
// Inputs are single-segment, so token_type_ids are all zero.
func (t *HFTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	ids, _ := t.tk.Encode(text, true)
	ids = truncateIDs(ids, maxTokens)
	inputIDs = make([]int64, len(ids))
	attentionMask = make([]int64, len(ids))
	tokenTypeIDs = make([]int64, len(ids))
	for i, id := range ids {
		inputIDs[i] = int64(id)
		attentionMask[i] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// Close frees the native tokenizer.
func (t *HFTokenizer) Close() error {
	if t.tk == nil {
		return nil
	}
	err := t.tk.Close()
	t.tk = nil
	return err
}
