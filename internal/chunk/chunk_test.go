package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortTextReturnsSingleChunk(t *testing.T) {
	chunks := Split("short reply", 100)
	if len(chunks) != 1 || chunks[0] != "short reply" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."
	chunks := Split(text, 30)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if len(c) > 30 {
			t.Fatalf("chunk %d exceeds limit: %d chars", i, len(c))
		}
	}
	if chunks[0] != "First paragraph here." {
		t.Fatalf("unexpected first chunk %q", chunks[0])
	}
}

func TestSplitFallsBackToSentences(t *testing.T) {
	// One paragraph, no blank lines, longer than the limit.
	text := "This is the first sentence. This is the second sentence. This is the third sentence."
	chunks := Split(text, 40)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %v", chunks)
	}
	for i, c := range chunks {
		if len(c) > 40 {
			t.Fatalf("chunk %d exceeds limit: %q", i, c)
		}
	}
	if !strings.HasPrefix(chunks[0], "This is the first sentence.") {
		t.Fatalf("unexpected first chunk %q", chunks[0])
	}
}

func TestSplitHardCutsOversizedSentence(t *testing.T) {
	text := strings.Repeat("a", 95)
	chunks := Split(text, 40)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 40 {
			t.Fatalf("chunk %d exceeds limit: %d chars", i, len(c))
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatal("hard-cut chunks should concatenate back to the original")
	}
}

func TestSplitCyrillicStaysValidUTF8(t *testing.T) {
	// One long sentence with no break points, two bytes per letter, and an
	// odd limit so a naive byte cut would land mid-rune.
	text := strings.Repeat("Преступление и наказание ", 40)
	chunks := Split(text, 101)

	if len(chunks) < 2 {
		t.Fatalf("expected the hard-cut path, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is invalid UTF-8: %q", i, c)
		}
		if len(c) > 101 {
			t.Fatalf("chunk %d exceeds limit: %d bytes", i, len(c))
		}
	}
}

func TestRuneCutBoundaries(t *testing.T) {
	s := "ааа" // 6 bytes, 2 per rune

	if got := runeCut(s, 4); got != 4 {
		t.Fatalf("expected cut at existing boundary 4, got %d", got)
	}
	if got := runeCut(s, 3); got != 2 {
		t.Fatalf("expected mid-rune cut to back up to 2, got %d", got)
	}
	if got := runeCut(s, 1); got != 1 {
		t.Fatalf("expected degenerate limit to pass through, got %d", got)
	}
}

func TestSplitZeroLimitReturnsWholeText(t *testing.T) {
	text := strings.Repeat("word ", 100)
	chunks := Split(text, 0)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatal("expected the whole text when no limit is set")
	}
}
