package e2e

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/hyperjump/sentembed/internal/embedding"
	"github.com/hyperjump/sentembed/internal/model"
	"github.com/hyperjump/sentembed/internal/vector"
)

// envModelDir names a directory holding model.onnx and tokenizer.json exported from
// sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2. Tests skip when it is unset.
const envModelDir = "SENTEMBED_E2E_MODEL_DIR"

func newRealManager(t *testing.T) *model.Manager {
	t.Helper()
	dir := os.Getenv(envModelDir)
	if dir == "" {
		t.Skipf("%s not set", envModelDir)
	}
	m := model.NewManagerFromOptions(embedding.Options{
		Backend:       embedding.BackendONNX,
		ModelPath:     dir + "/model.onnx",
		TokenizerPath: dir + "/tokenizer.json",
		LibraryPath:   os.Getenv("SENTEMBED_ONNX_LIBRARY"),
		Normalize:     true,
	})
	t.Cleanup(func() { _ = m.Close() })
	if _, err := m.Acquire(context.Background()); err != nil {
		t.Skipf("model unavailable: %v", err)
	}
	return m
}

func TestE2E_ParaphrasesRankFirst(t *testing.T) {
	m := newRealManager(t)
	ctx := context.Background()
	c := BuildCorpus()

	corpus, err := m.EncodeMany(ctx, c.Texts(), model.EncodeOptions{BatchSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range c.TestCases {
		q, err := m.EncodeOne(ctx, tc.Query)
		if err != nil {
			t.Fatal(err)
		}
		matches, err := vector.FindMostSimilar(q, corpus, 3, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) == 0 || matches[0].Index != tc.ExpectedIndex {
			t.Errorf("%s (%s): query %q best matches %+v, want index %d",
				tc.Description, tc.Lang, tc.Query, matches, tc.ExpectedIndex)
		}
	}
}

func TestE2E_OutputShape(t *testing.T) {
	m := newRealManager(t)
	v, err := m.EncodeOne(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != embedding.DefaultDimensions {
		t.Fatalf("len = %d, want %d", len(v), embedding.DefaultDimensions)
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-3 {
		t.Errorf("normalized output has norm %f", math.Sqrt(sum))
	}
}

func TestE2E_BatchMatchesSingle(t *testing.T) {
	m := newRealManager(t)
	ctx := context.Background()
	texts := BuildCorpus().Texts()

	batched, err := m.EncodeMany(ctx, texts, model.EncodeOptions{BatchSize: len(texts)})
	if err != nil {
		t.Fatal(err)
	}
	for i, text := range texts {
		single, err := m.EncodeOne(ctx, text)
		if err != nil {
			t.Fatal(err)
		}
		// Padding changes float accumulation order, so compare by cosine rather than bitwise.
		if sim := vector.CosineSimilarity(single, batched[i]); sim < 0.9999 {
			t.Errorf("text %d: batched vs single cosine %f", i, sim)
		}
	}
}
