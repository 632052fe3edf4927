package embedding

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
// Returned slices are unpadded and at most maxTokens long, special tokens included.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
	Close() error
}

// tokenBatch is a padded, row-major batch ready to be fed to the model.
type tokenBatch struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	size          int
	seqLen        int
}

// padBatch tokenizes texts and right-pads every row with zeros to the longest row.
func padBatch(tok Tokenizer, texts []string, maxTokens int) tokenBatch {
	type row struct{ ids, mask, types []int64 }
	rows := make([]row, len(texts))
	seqLen := 1
	for i, text := range texts {
		ids, mask, types := tok.Tokenize(text, maxTokens)
		rows[i] = row{ids, mask, types}
		if len(ids) > seqLen {
			seqLen = len(ids)
		}
	}

	b := tokenBatch{
		inputIDs:      make([]int64, len(texts)*seqLen),
		attentionMask: make([]int64, len(texts)*seqLen),
		tokenTypeIDs:  make([]int64, len(texts)*seqLen),
		size:          len(texts),
		seqLen:        seqLen,
	}
	for i, r := range rows {
		off := i * seqLen
		copy(b.inputIDs[off:off+seqLen], r.ids)
		copy(b.attentionMask[off:off+seqLen], r.mask)
		copy(b.tokenTypeIDs[off:off+seqLen], r.types)
	}
	return b
}

// truncateIDs keeps at most maxTokens IDs, preserving the final (end-of-sequence) token.
func truncateIDs(ids []uint32, maxTokens int) []uint32 {
	if maxTokens <= 0 || len(ids) <= maxTokens {
		return ids
	}
	out := make([]uint32, maxTokens)
	copy(out, ids[:maxTokens-1])
	out[maxTokens-1] = ids[len(ids)-1]
	return out
}

// meanPool averages token embeddings over the attention mask.
// hidden is [batch, seqLen, dims] row-major; mask is [batch, seqLen].
func meanPool(hidden []float32, mask []int64, batch, seqLen, dims int) [][]float32 {
	out := make([][]float32, batch)
	for b := 0; b < batch; b++ {
		vec := make([]float32, dims)
		var count float32
		for s := 0; s < seqLen; s++ {
			if mask[b*seqLen+s] == 0 {
				continue
			}
			count++
			tok := hidden[(b*seqLen+s)*dims : (b*seqLen+s+1)*dims]
			for d, v := range tok {
				vec[d] += v
			}
		}
		if count > 0 {
			for d := range vec {
				vec[d] /= count
			}
		}
		out[b] = vec
	}
	return out
}
