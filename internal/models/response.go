package models

import "github.com/hyperjump/sentembed/internal/vector"

// InfoResponse describes the running service.
type InfoResponse struct {
	Name                string `json:"name"`
	Version             string `json:"version"`
	Status              string `json:"status"`
	Model               string `json:"model"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	ModelLoaded         bool   `json:"model_loaded"`
}

// StatusResponse is returned by the health and readiness probes.
type StatusResponse struct {
	Status string `json:"status"`
}

// EmbedResponse carries one embedding.
type EmbedResponse struct {
	Embedding  []float32 `json:"embedding"`
	Dimensions int       `json:"dimensions"`
}

// BatchEmbedResponse carries embeddings in request order.
type BatchEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimensions int         `json:"dimensions"`
	Count      int         `json:"count"`
}

// SimilarResponse lists corpus matches by descending score.
type SimilarResponse struct {
	Results []vector.Match `json:"results"`
	Count   int            `json:"count"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Class string `json:"class,omitempty"`
}
