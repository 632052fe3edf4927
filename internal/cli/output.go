// Package cli renders command output for the sentembed CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hyperjump/sentembed/internal/vector"
	"github.com/hyperjump/sentembed/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

// previewValues is how many leading components of a vector the text format shows.
const previewValues = 6

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// EmbeddingOutput is one encoded text in JSON output.
type EmbeddingOutput struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// MatchOutput is one ranked corpus entry in JSON output.
type MatchOutput struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// SimilarOutput is the JSON document written by WriteMatches.
type SimilarOutput struct {
	Query   string        `json:"query"`
	Results []MatchOutput `json:"results"`
}

// WriteEmbeddings writes texts[i] alongside vecs[i] to w in the given format.
func WriteEmbeddings(w io.Writer, texts []string, vecs [][]float32, format OutputFormat) error {
	if len(texts) != len(vecs) {
		return fmt.Errorf("got %d texts but %d embeddings", len(texts), len(vecs))
	}
	if format == OutputJSON {
		out := make([]EmbeddingOutput, len(texts))
		for i := range texts {
			out[i] = EmbeddingOutput{Text: texts[i], Embedding: vecs[i]}
		}
		return writeJSON(w, out)
	}

	for i, v := range vecs {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(fmt.Sprintf("[%d]", i)), utils.Truncate(texts[i], 60))
		fmt.Fprintf(w, "    %s %s\n", dimStyle.Render(fmt.Sprintf("dims=%d", len(v))), preview(v))
	}
	return nil
}

// WriteMatches writes ranked matches, resolving each index against corpus, to w in the given format.
func WriteMatches(w io.Writer, query string, corpus []string, matches []vector.Match, format OutputFormat) error {
	results := make([]MatchOutput, 0, len(matches))
	for _, m := range matches {
		if m.Index < 0 || m.Index >= len(corpus) {
			return fmt.Errorf("match index %d outside corpus of %d", m.Index, len(corpus))
		}
		results = append(results, MatchOutput{Index: m.Index, Score: m.Score, Text: corpus[m.Index]})
	}
	if format == OutputJSON {
		return writeJSON(w, SimilarOutput{Query: query, Results: results})
	}

	fmt.Fprintf(w, "\n%s %q: %d of %d\n\n", headerStyle.Render("Matches for"), query, len(results), len(corpus))
	for rank, r := range results {
		fmt.Fprintf(w, "%2d. %s  [%d] %s\n", rank+1, scoreStyle.Render(fmt.Sprintf("%.4f", r.Score)), r.Index, utils.Truncate(r.Text, 80))
	}
	if len(results) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no entries above the similarity threshold"))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func preview(v []float32) string {
	n := min(len(v), previewValues)
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("%.4f", v[i])
	}
	s := "[" + strings.Join(parts, ", ")
	if len(v) > n {
		s += ", ..."
	}
	return s + "]"
}
