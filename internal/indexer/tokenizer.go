package indexer

import (
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used by the supported embedding models.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts model tokens in text.
type Tokenizer interface {
	Count(text string) int
}

// TiktokenTokenizer counts tokens with a tiktoken BPE encoding.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// Count returns the exact number of BPE tokens in text.
func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// ApproxTokenizer estimates tokens from the rune count.
type ApproxTokenizer struct{}

// Count returns roughly one token per TokensPerRune runes, at least 1 for
// non-empty text.
func (ApproxTokenizer) Count(text string) int {
	runes := utf8.RuneCountInString(text)
	if runes == 0 {
		return 0
	}
	n := int(math.Ceil(float64(runes) / TokensPerRune))
	return max(n, 1)
}

// NewTokenizer loads the named tiktoken encoding. The encoding file is fetched
// on first use; if that fails the rune approximation is returned instead.
func NewTokenizer(encoding string, logger *slog.Logger) Tokenizer {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, falling back to rune estimate",
			"encoding", encoding,
			"error", err,
		)
		return ApproxTokenizer{}
	}
	return &TiktokenTokenizer{enc: enc}
}
