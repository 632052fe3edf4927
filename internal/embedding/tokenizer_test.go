package embedding

import (
	"reflect"
	"strings"
	"testing"
)

// wordTokenizer emits [CLS] word... [SEP] with one fake ID per whitespace-separated word.
type wordTokenizer struct{}

func (wordTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	ids := []uint32{101}
	for _, w := range strings.Fields(text) {
		ids = append(ids, uint32(HashString(w)%30000))
	}
	ids = append(ids, 102)
	ids = truncateIDs(ids, maxTokens)
	for _, id := range ids {
		inputIDs = append(inputIDs, int64(id))
		attentionMask = append(attentionMask, 1)
		tokenTypeIDs = append(tokenTypeIDs, 0)
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

func (wordTokenizer) Close() error { return nil }

func TestPadBatch(t *testing.T) {
	b := padBatch(wordTokenizer{}, []string{"hello world", "", "one two three four"}, 128)
	if b.size != 3 {
		t.Fatalf("size=%d", b.size)
	}
	if b.seqLen != 6 {
		t.Fatalf("seqLen=%d, want 6", b.seqLen)
	}
	if len(b.inputIDs) != 18 || len(b.attentionMask) != 18 || len(b.tokenTypeIDs) != 18 {
		t.Fatalf("flat lengths: %d %d %d", len(b.inputIDs), len(b.attentionMask), len(b.tokenTypeIDs))
	}
	wantMask := []int64{
		1, 1, 1, 1, 0, 0,
		1, 1, 0, 0, 0, 0,
		1, 1, 1, 1, 1, 1,
	}
	if !reflect.DeepEqual(b.attentionMask, wantMask) {
		t.Errorf("mask=%v", b.attentionMask)
	}
	if b.inputIDs[6] != 101 || b.inputIDs[7] != 102 || b.inputIDs[8] != 0 {
		t.Errorf("empty row should be [CLS] [SEP] then padding, got %v", b.inputIDs[6:12])
	}
}

func TestPadBatch_Truncates(t *testing.T) {
	b := padBatch(wordTokenizer{}, []string{strings.Repeat("w ", 50)}, 8)
	if b.seqLen != 8 {
		t.Fatalf("seqLen=%d, want 8", b.seqLen)
	}
	if b.inputIDs[7] != 102 {
		t.Errorf("last token should stay [SEP], got %d", b.inputIDs[7])
	}
}

func TestTruncateIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []uint32
		max  int
		want []uint32
	}{
		{"short", []uint32{1, 2, 3}, 5, []uint32{1, 2, 3}},
		{"exact", []uint32{1, 2, 3}, 3, []uint32{1, 2, 3}},
		{"long keeps last", []uint32{1, 2, 3, 4, 5}, 3, []uint32{1, 2, 5}},
		{"no limit", []uint32{1, 2}, 0, []uint32{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateIDs(tt.ids, tt.max); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("truncateIDs=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeanPool(t *testing.T) {
	// batch=2, seqLen=3, dims=2
	hidden := []float32{
		1, 2, 3, 4, 100, 100, // row 0: last token is padding
		2, 2, 4, 4, 6, 6, // row 1: all tokens real
	}
	mask := []int64{1, 1, 0, 1, 1, 1}
	got := meanPool(hidden, mask, 2, 3, 2)
	want := [][]float32{{2, 3}, {4, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("meanPool=%v, want %v", got, want)
	}
}

func TestMeanPool_AllMaskedIsZero(t *testing.T) {
	got := meanPool([]float32{5, 5}, []int64{0}, 1, 1, 2)
	if !reflect.DeepEqual(got, [][]float32{{0, 0}}) {
		t.Errorf("meanPool=%v", got)
	}
}
