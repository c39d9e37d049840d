package indexer

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxTokens bounds every chunk.
	DefaultMaxTokens = 400
	// DefaultOverlapTokens is carried from the end of one chunk into the next.
	DefaultOverlapTokens = 50
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n+`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+["')\]]*\s+`)
)

// Chunker packs text into token-bounded chunks, preferring paragraph, then
// line, then sentence, then word boundaries. Runes are the last resort.
type Chunker struct {
	tokenizer     Tokenizer
	maxTokens     int
	overlapTokens int
}

// NewChunker creates a chunker. Non-positive sizes select the defaults and
// an overlap that does not fit below maxTokens is clamped to half of it.
func NewChunker(tokenizer Tokenizer, maxTokens, overlapTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	if overlapTokens >= maxTokens {
		overlapTokens = maxTokens / 2
	}
	return &Chunker{tokenizer: tokenizer, maxTokens: maxTokens, overlapTokens: overlapTokens}
}

// unit is an indivisible piece of text and the separator placed before it
// when it does not start a chunk.
type unit struct {
	sep  string
	text string
}

// Split returns the chunks of text in order. Whitespace-only text yields none.
func (c *Chunker) Split(text string) []Chunk {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}

	var units []unit
	for pi, para := range paragraphBreak.Split(text, -1) {
		sep := "\n\n"
		if pi == 0 {
			sep = ""
		}
		for li, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if li > 0 {
				sep = "\n"
			}
			for _, sentence := range splitSentences(line) {
				units = append(units, c.fit(sep, sentence)...)
				sep = " "
			}
		}
	}

	return c.pack(units)
}

// fit breaks a sentence that exceeds the budget into words, and words into
// rune runs.
func (c *Chunker) fit(sep, sentence string) []unit {
	if c.tokenizer.Count(sentence) <= c.maxTokens {
		return []unit{{sep: sep, text: sentence}}
	}
	var out []unit
	for _, word := range strings.Fields(sentence) {
		if c.tokenizer.Count(word) <= c.maxTokens {
			out = append(out, unit{sep: sep, text: word})
		} else {
			for i, piece := range c.splitRunes(word) {
				s := ""
				if i == 0 {
					s = sep
				}
				out = append(out, unit{sep: s, text: piece})
			}
		}
		sep = " "
	}
	return out
}

// splitRunes cuts s into the longest rune runs that fit the budget.
func (c *Chunker) splitRunes(s string) []string {
	runes := []rune(s)
	var pieces []string
	for len(runes) > 0 {
		lo, hi := 1, len(runes)
		for lo < hi {
			mid := (lo + hi + 1) / 2
			if c.tokenizer.Count(string(runes[:mid])) <= c.maxTokens {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		pieces = append(pieces, string(runes[:lo]))
		runes = runes[lo:]
	}
	return pieces
}

// pack greedily fills chunks with units, seeding each new chunk with the
// tail of the previous one up to the overlap budget.
func (c *Chunker) pack(units []unit) []Chunk {
	var chunks []Chunk
	var current []unit

	emit := func() {
		text := join(current)
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Text:   text,
			Tokens: c.tokenizer.Count(text),
		})
	}

	for _, u := range units {
		if len(current) == 0 {
			current = []unit{u}
			continue
		}
		candidate := append(current[:len(current):len(current)], u)
		if c.tokenizer.Count(join(candidate)) <= c.maxTokens {
			current = candidate
			continue
		}

		emit()
		next := append(c.overlapTail(current), u)
		if c.tokenizer.Count(join(next)) > c.maxTokens {
			next = []unit{u}
		}
		current = next
	}
	if len(current) > 0 {
		emit()
	}
	return chunks
}

// overlapTail returns the longest suffix of units within the overlap budget,
// never the whole slice.
func (c *Chunker) overlapTail(units []unit) []unit {
	if c.overlapTokens == 0 {
		return nil
	}
	start := len(units)
	for i := len(units) - 1; i > 0; i-- {
		if c.tokenizer.Count(join(units[i:])) > c.overlapTokens {
			break
		}
		start = i
	}
	tail := make([]unit, len(units)-start)
	copy(tail, units[start:])
	return tail
}

func join(units []unit) string {
	var sb strings.Builder
	for i, u := range units {
		if i > 0 {
			sb.WriteString(u.sep)
		}
		sb.WriteString(u.text)
	}
	return sb.String()
}

func splitSentences(line string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(line, -1) {
		if s := strings.TrimSpace(line[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(line[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
