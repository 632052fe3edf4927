package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hyperjump/sentembed/internal/errs"
	"github.com/hyperjump/sentembed/internal/model"
	"github.com/hyperjump/sentembed/internal/models"
	"github.com/hyperjump/sentembed/internal/vector"
	"go.uber.org/zap"
)

const maxBodyBytes = 32 << 20

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.InfoResponse{
		Name:                "sentembed",
		Version:             s.version,
		Status:              "running",
		Model:               s.manager.ModelID(),
		EmbeddingDimensions: s.manager.Dimensions(),
		ModelLoaded:         s.manager.Ready(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.StatusResponse{Status: "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.manager.Ready() {
		s.respondJSON(w, http.StatusServiceUnavailable, models.StatusResponse{Status: "loading"})
		return
	}
	s.respondJSON(w, http.StatusOK, models.StatusResponse{Status: "ready"})
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req models.EmbedRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondFailure(w, "embed", err)
		return
	}
	vec, err := s.manager.EncodeOne(r.Context(), req.Text)
	if err != nil {
		s.respondFailure(w, "embed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.EmbedResponse{Embedding: vec, Dimensions: len(vec)})
}

func (s *Server) handleEmbedBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchEmbedRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondFailure(w, "embed batch", err)
		return
	}
	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = s.config.Embedding.BatchSize
	}
	s.logger.Debug("batch embed request", zap.Int("texts", len(req.Texts)), zap.Int("batch_size", batchSize))
	vecs, err := s.manager.EncodeMany(r.Context(), req.Texts, model.EncodeOptions{BatchSize: batchSize})
	if err != nil {
		s.respondFailure(w, "embed batch", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.BatchEmbedResponse{
		Embeddings: vecs,
		Dimensions: s.manager.Dimensions(),
		Count:      len(vecs),
	})
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var req models.SimilarRequest
	if !s.decode(w, r, &req) {
		return
	}
	sim := s.config.Similarity
	if err := req.Validate(sim.DefaultTopK, sim.MaxTopK, sim.MinSimilarityOrDefault()); err != nil {
		s.respondFailure(w, "similar", err)
		return
	}

	query, corpus, err := s.similarityInputs(r.Context(), &req)
	if err != nil {
		s.respondFailure(w, "similar", err)
		return
	}

	start := time.Now()
	matches, err := vector.FindMostSimilar(query, corpus, *req.TopK, *req.MinSimilarity)
	if err != nil {
		s.respondFailure(w, "similar", err)
		return
	}
	s.metrics.RecordRank(time.Since(start))
	s.logger.Debug("similarity request",
		zap.Int("corpus", len(corpus)),
		zap.Int("top_k", *req.TopK),
		zap.Int("matches", len(matches)))
	s.respondJSON(w, http.StatusOK, models.SimilarResponse{Results: matches, Count: len(matches)})
}

// similarityInputs returns the query and corpus vectors, encoding whichever side was sent as text.
func (s *Server) similarityInputs(ctx context.Context, req *models.SimilarRequest) ([]float32, [][]float32, error) {
	query := req.QueryEmbedding
	if len(query) == 0 {
		v, err := s.manager.EncodeOne(ctx, req.Query)
		if err != nil {
			return nil, nil, err
		}
		query = v
	}
	corpus := req.CorpusEmbeddings
	if len(req.Corpus) > 0 {
		vecs, err := s.manager.EncodeMany(ctx, req.Corpus, model.EncodeOptions{BatchSize: s.config.Embedding.BatchSize})
		if err != nil {
			return nil, nil, err
		}
		corpus = vecs
	}
	return query, corpus, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", errs.ClassInvalid)
		return false
	}
	return true
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errs.Classify(err) {
	case errs.ClassUnavailable:
		return http.StatusServiceUnavailable
	case errs.ClassInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	class := errs.Classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Error(err))
	}
	s.metrics.RecordError(op, class.String())
	s.respondError(w, status, err.Error(), class)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, class errs.Class) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message, Class: class.String()})
}
