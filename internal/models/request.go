// Package models defines the JSON request and response bodies of the HTTP API.
package models

import (
	"github.com/hyperjump/sentembed/internal/errs"
	"github.com/hyperjump/sentembed/pkg/utils"
)

// EmbedRequest asks for the embedding of one text.
type EmbedRequest struct {
	Text string `json:"text"`
}

// Validate rejects empty or whitespace-only text.
func (r *EmbedRequest) Validate() error {
	if utils.IsBlank(r.Text) {
		return errs.Invalid("text cannot be empty")
	}
	return nil
}

// BatchEmbedRequest asks for the embeddings of several texts.
type BatchEmbedRequest struct {
	Texts     []string `json:"texts"`
	BatchSize int      `json:"batch_size,omitempty"`
}

// Validate rejects an empty list, blank entries and a negative batch size.
func (r *BatchEmbedRequest) Validate() error {
	if len(r.Texts) == 0 {
		return errs.Invalid("texts cannot be empty")
	}
	for i, t := range r.Texts {
		if utils.IsBlank(t) {
			return errs.Invalid("texts[%d] cannot be empty", i)
		}
	}
	if r.BatchSize < 0 {
		return errs.Invalid("batch_size must not be negative")
	}
	return nil
}

// SimilarRequest ranks a corpus against a query. The query and the corpus may each be given
// as text (encoded by the server) or as precomputed embeddings.
type SimilarRequest struct {
	Query            string      `json:"query,omitempty"`
	QueryEmbedding   []float32   `json:"query_embedding,omitempty"`
	Corpus           []string    `json:"corpus,omitempty"`
	CorpusEmbeddings [][]float32 `json:"corpus_embeddings,omitempty"`
	TopK             *int        `json:"top_k,omitempty"`
	MinSimilarity    *float64    `json:"min_similarity,omitempty"`
}

// Validate checks that exactly one form of query and of corpus is given, fills top_k and
// min_similarity from the defaults when unset, and caps top_k at maxTopK.
func (r *SimilarRequest) Validate(defaultTopK, maxTopK int, defaultMinSimilarity float64) error {
	hasText, hasVec := r.Query != "", len(r.QueryEmbedding) > 0
	switch {
	case hasText && hasVec:
		return errs.Invalid("give either query or query_embedding, not both")
	case !hasVec && utils.IsBlank(r.Query):
		return errs.Invalid("query cannot be empty")
	}
	if len(r.Corpus) > 0 && len(r.CorpusEmbeddings) > 0 {
		return errs.Invalid("give either corpus or corpus_embeddings, not both")
	}
	for i, t := range r.Corpus {
		if utils.IsBlank(t) {
			return errs.Invalid("corpus[%d] cannot be empty", i)
		}
	}
	if r.TopK == nil {
		k := defaultTopK
		r.TopK = &k
	}
	if maxTopK > 0 && *r.TopK > maxTopK {
		k := maxTopK
		r.TopK = &k
	}
	if r.MinSimilarity == nil {
		m := defaultMinSimilarity
		r.MinSimilarity = &m
	}
	if *r.MinSimilarity < -1 || *r.MinSimilarity > 1 {
		return errs.Invalid("min_similarity must be within [-1, 1]")
	}
	return nil
}
