// Package chunker splits document text into overlapping token windows sized
// for the embedding model. Each window after the first re-reads the tail of
// the previous one so that sentences cut at a window boundary still appear
// whole in at least one chunk.
//
// Tokens are Unicode-whitespace-delimited words. This approximates the word
// boundaries of the embedding model's own tokenizer; subword splits inside a
// word never cross a whitespace boundary, so a word-level window is always a
// valid prefix of what the model will re-tokenize.
package chunker

import "strings"

// Default window parameters, tuned for ~256-token embedding models.
const (
	// DefaultTargetLen is the number of tokens per chunk window.
	DefaultTargetLen = 256
	// DefaultOverlap is the number of tokens each window shares with its
	// predecessor.
	DefaultOverlap = 40
)

// titleSeparator joins the document title to the chunk body so each chunk is
// independently meaningful when embedded out of context.
const titleSeparator = "\n\n"

// Chunker produces overlapping, title-prefixed text chunks from raw document
// text. The zero value is not usable; construct with New. Chunker is
// stateless and safe for concurrent use.
type Chunker struct {
	// targetLen is the token count of each full window.
	targetLen int
	// overlap is the token count shared between consecutive windows.
	overlap int
}

// New constructs a Chunker. Non-positive targetLen falls back to
// DefaultTargetLen; overlap is clamped to [0, targetLen-1] so the stride is
// always positive.
func New(targetLen, overlap int) *Chunker {
	if targetLen <= 0 {
		targetLen = DefaultTargetLen
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= targetLen {
		overlap = targetLen - 1
	}
	return &Chunker{targetLen: targetLen, overlap: overlap}
}

// Chunk splits rawText into overlapping token windows and prefixes each with
// the document title. Window i starts at token i*(targetLen-overlap); the
// final window absorbs the remaining tail as-is and iteration stops once a
// window reaches the end of the token stream.
//
// Empty or whitespace-only rawText yields nil. Text of at most targetLen
// tokens yields exactly one chunk covering the whole text. The output is a
// pure function of (title, rawText) and the configured window parameters.
func (c *Chunker) Chunk(title, rawText string) []string {
	tokens := strings.Fields(rawText)
	if len(tokens) == 0 {
		return nil
	}

	prefix := ""
	if t := strings.TrimSpace(title); t != "" {
		prefix = t + titleSeparator
	}

	if len(tokens) <= c.targetLen {
		return []string{prefix + strings.Join(tokens, " ")}
	}

	stride := c.targetLen - c.overlap
	var chunks []string
	for start := 0; start < len(tokens); start += stride {
		end := start + c.targetLen
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, prefix+strings.Join(tokens[start:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// TargetLen returns the configured window size in tokens.
func (c *Chunker) TargetLen() int { return c.targetLen }

// Overlap returns the configured inter-window overlap in tokens.
func (c *Chunker) Overlap() int { return c.overlap }
