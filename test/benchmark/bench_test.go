package benchmark

import (
	"context"
	"math/rand"
	"testing"

	"github.com/hyperjump/sentembed/internal/embedding"
	"github.com/hyperjump/sentembed/internal/model"
	"github.com/hyperjump/sentembed/internal/vector"
)

func randomCorpus(n, dims int) [][]float32 {
	rng := rand.New(rand.NewSource(1))
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, dims)
		for j := range out[i] {
			out[i][j] = rng.Float32()*2 - 1
		}
	}
	return out
}

func BenchmarkCosineSimilarity(b *testing.B) {
	vecs := randomCorpus(2, 384)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = vector.CosineSimilarity(vecs[0], vecs[1])
	}
}

func BenchmarkFindMostSimilar(b *testing.B) {
	corpus := randomCorpus(1000, 384)
	query := randomCorpus(1, 384)[0]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = vector.FindMostSimilar(query, corpus, 10, 0)
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkManager_EncodeMany(b *testing.B) {
	m := model.NewManagerFromOptions(embedding.Options{Backend: embedding.BackendMock})
	defer m.Close()
	texts := make([]string, 256)
	for i := range texts {
		texts[i] = "sentence for batch encoding benchmark"
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.EncodeMany(ctx, texts, model.EncodeOptions{})
	}
}
