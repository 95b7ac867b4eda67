package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// tokens generates n distinct single-word tokens ("w0" .. "wN-1") so tests
// can verify window boundaries by token identity.
func tokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%d", i)
	}
	return out
}

func text(n int) string { return strings.Join(tokens(n), " ") }

// stripTitle removes the "title\n\n" prefix added to every chunk.
func stripTitle(t *testing.T, chunk, title string) string {
	t.Helper()
	prefix := title + "\n\n"
	if !strings.HasPrefix(chunk, prefix) {
		t.Fatalf("chunk missing title prefix %q: %q", prefix, chunk[:min(40, len(chunk))])
	}
	return strings.TrimPrefix(chunk, prefix)
}

func Test_Chunk_Empty(t *testing.T) {
	t.Parallel()
	c := New(8, 2)

	for _, raw := range []string{"", "   ", "\n\t  \n"} {
		if got := c.Chunk("Title", raw); got != nil {
			t.Errorf("Chunk(%q): want nil, got %d chunks", raw, len(got))
		}
	}
}

func Test_Chunk_ShortTextSingleChunk(t *testing.T) {
	t.Parallel()
	c := New(8, 2)

	got := c.Chunk("My Doc", "just five little words here")
	if len(got) != 1 {
		t.Fatalf("want 1 chunk, got %d", len(got))
	}
	if want := "My Doc\n\njust five little words here"; got[0] != want {
		t.Errorf("chunk: want %q, got %q", want, got[0])
	}
}

func Test_Chunk_ExactTargetLenSingleChunk(t *testing.T) {
	t.Parallel()
	c := New(8, 2)

	got := c.Chunk("T", text(8))
	if len(got) != 1 {
		t.Fatalf("want 1 chunk for exactly targetLen tokens, got %d", len(got))
	}
}

func Test_Chunk_NoTitle(t *testing.T) {
	t.Parallel()
	c := New(8, 2)

	got := c.Chunk("  ", "a b c")
	if len(got) != 1 {
		t.Fatalf("want 1 chunk, got %d", len(got))
	}
	if got[0] != "a b c" {
		t.Errorf("blank title must not add a prefix, got %q", got[0])
	}
}

// Test_Chunk_CountFormula checks that for L tokens the chunk count is
// ceil((L-overlap)/(targetLen-overlap)) when L > targetLen, and 1 otherwise.
func Test_Chunk_CountFormula(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		targetLen int
		overlap   int
		nTokens   int
		want      int
	}{
		{"below target", 10, 2, 7, 1},
		{"at target", 10, 2, 10, 1},
		{"one past target", 10, 2, 11, 2},
		{"two full windows", 10, 2, 18, 2},
		{"just spills into third", 10, 2, 19, 3},
		{"larger corpus", 256, 40, 1000, 5},
		{"no overlap", 10, 0, 25, 3},
		{"heavy overlap", 10, 9, 12, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := New(tc.targetLen, tc.overlap)

			got := c.Chunk("T", text(tc.nTokens))
			if len(got) != tc.want {
				t.Errorf("L=%d target=%d overlap=%d: want %d chunks, got %d",
					tc.nTokens, tc.targetLen, tc.overlap, tc.want, len(got))
			}

			// Cross-check against the closed form.
			if tc.nTokens > tc.targetLen {
				stride := tc.targetLen - tc.overlap
				formula := (tc.nTokens - tc.overlap + stride - 1) / stride
				if len(got) != formula {
					t.Errorf("formula mismatch: formula=%d got=%d", formula, len(got))
				}
			}
		})
	}
}

// Test_Chunk_Coverage verifies that dropping the declared overlap from every
// chunk after the first reconstructs the original token stream exactly — no
// token lost, none duplicated outside the overlap.
func Test_Chunk_Coverage(t *testing.T) {
	t.Parallel()

	const title = "Coverage Doc"
	c := New(16, 4)
	orig := tokens(103)

	chunks := c.Chunk(title, strings.Join(orig, " "))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var rebuilt []string
	for i, ch := range chunks {
		toks := strings.Fields(stripTitle(t, ch, title))
		if i > 0 {
			// First overlap tokens repeat the tail of the previous chunk.
			prev := strings.Fields(stripTitle(t, chunks[i-1], title))
			for j := 0; j < c.Overlap(); j++ {
				if toks[j] != prev[len(prev)-c.Overlap()+j] {
					t.Fatalf("chunk %d overlap token %d = %q, want %q", i, j, toks[j], prev[len(prev)-c.Overlap()+j])
				}
			}
			toks = toks[c.Overlap():]
		}
		rebuilt = append(rebuilt, toks...)
	}

	if len(rebuilt) != len(orig) {
		t.Fatalf("rebuilt %d tokens, want %d", len(rebuilt), len(orig))
	}
	for i := range orig {
		if rebuilt[i] != orig[i] {
			t.Fatalf("token %d: got %q, want %q", i, rebuilt[i], orig[i])
		}
	}
}

// Test_Chunk_WindowStarts verifies window i begins at token i*(targetLen-overlap).
func Test_Chunk_WindowStarts(t *testing.T) {
	t.Parallel()

	c := New(10, 3)
	chunks := c.Chunk("T", text(40))

	stride := c.TargetLen() - c.Overlap()
	for i, ch := range chunks {
		toks := strings.Fields(stripTitle(t, ch, "T"))
		want := fmt.Sprintf("w%d", i*stride)
		if toks[0] != want {
			t.Errorf("chunk %d starts at %q, want %q", i, toks[0], want)
		}
	}
}

func Test_Chunk_Deterministic(t *testing.T) {
	t.Parallel()

	c := New(12, 5)
	raw := text(77)

	a := c.Chunk("Same Title", raw)
	b := c.Chunk("Same Title", raw)

	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between identical calls", i)
		}
	}
}

func Test_New_ClampsParameters(t *testing.T) {
	t.Parallel()

	c := New(0, -5)
	if c.TargetLen() != DefaultTargetLen {
		t.Errorf("targetLen: want default %d, got %d", DefaultTargetLen, c.TargetLen())
	}
	if c.Overlap() != 0 {
		t.Errorf("negative overlap must clamp to 0, got %d", c.Overlap())
	}

	c = New(10, 10)
	if c.Overlap() != 9 {
		t.Errorf("overlap >= targetLen must clamp to targetLen-1, got %d", c.Overlap())
	}
}
