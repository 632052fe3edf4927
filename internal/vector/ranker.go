package vector

import (
	"sort"

	"github.com/hyperjump/sentembed/internal/errs"
)

const (
	// DefaultTopK is the result bound used when the caller does not choose one.
	DefaultTopK = 10
	// DefaultMinSimilarity is the similarity floor used when the caller does not choose one.
	DefaultMinSimilarity = 0.5
)

// Match is one ranked corpus entry.
type Match struct {
	Index int     `json:"index"` // zero-based position in the corpus at call time
	Score float64 `json:"score"`
}

// FindMostSimilar ranks every corpus vector against query by cosine similarity.
//
// Entries scoring below minSimilarity are dropped, the rest are ordered by score descending
// (equal scores keep ascending corpus index) and at most topK are returned. Every corpus vector
// must have the query's length, otherwise an errs.ErrDimensionMismatch is returned. topK <= 0
// and an empty corpus both give an empty, non-nil result.
func FindMostSimilar(query []float32, corpus [][]float32, topK int, minSimilarity float64) ([]Match, error) {
	for i, vec := range corpus {
		if len(vec) != len(query) {
			return nil, errs.DimensionMismatch(len(query), len(vec), i)
		}
	}
	if topK <= 0 || len(corpus) == 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(corpus))
	for i, vec := range corpus {
		score := CosineSimilarity(query, vec)
		if score >= minSimilarity {
			matches = append(matches, Match{Index: i, Score: score})
		}
	}
	// matches is already in index order, so a stable sort keeps index order among ties.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
