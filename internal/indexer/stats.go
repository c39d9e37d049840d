package indexer

import (
	"math"
	"slices"
)

// TokensPerRune is the rune-per-token ratio used when no BPE encoding is
// available.
const TokensPerRune = 4.0

// TokenStats summarises the token counts of a document's chunks.
type TokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"` // nearest-rank
}

func chunkTokenStats(chunks []Chunk) TokenStats {
	counts := make([]int, len(chunks))
	for i, c := range chunks {
		counts[i] = c.Tokens
	}
	return computeTokenStats(counts)
}

func computeTokenStats(counts []int) TokenStats {
	n := len(counts)
	if n == 0 {
		return TokenStats{}
	}

	sorted := slices.Clone(counts)
	slices.Sort(sorted)

	total := 0
	for _, c := range sorted {
		total += c
	}

	rank := int(math.Ceil(0.95*float64(n))) - 1
	rank = min(max(rank, 0), n-1)

	return TokenStats{
		Min:  sorted[0],
		Max:  sorted[n-1],
		Mean: math.Round(float64(total)/float64(n)*100) / 100,
		P95:  sorted[rank],
	}
}
