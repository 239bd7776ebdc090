// Package chunk splits long replies so transports with a message size limit
// can emit them as an ordered series of messages.
package chunk

import (
	"strings"
	"unicode/utf8"
)

// Split breaks text into chunks of at most maxLen characters, preferring
// paragraph boundaries and falling back to sentence boundaries when a
// paragraph alone exceeds the limit. Chunks preserve order; concatenating
// them (with separators restored) reproduces the original text.
func Split(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	chunks := splitBy(text, "\n\n", maxLen)
	for _, c := range chunks {
		if len(c) > maxLen {
			return splitSentences(text, maxLen)
		}
	}
	return chunks
}

func splitBy(text, sep string, maxLen int) []string {
	var chunks []string
	var current strings.Builder

	for _, part := range strings.Split(text, sep) {
		candidate := len(current.String()) + len(sep) + len(part)
		if current.Len() > 0 && candidate > maxLen {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(part)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

func splitSentences(text string, maxLen int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, sentence := range sentences(text) {
		if current.Len() > 0 && current.Len()+len(sentence) > maxLen {
			flush()
		}
		// A single sentence longer than the limit is cut hard; nothing
		// smaller to split on. The cut still lands on a rune boundary so
		// multibyte text never yields invalid chunks.
		for len(sentence) > maxLen {
			flush()
			cut := runeCut(sentence, maxLen)
			chunks = append(chunks, strings.TrimSpace(sentence[:cut]))
			sentence = sentence[cut:]
		}
		current.WriteString(sentence)
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// runeCut returns the largest index <= maxLen that falls on a rune boundary
// of s. When maxLen is smaller than the first rune it returns maxLen rather
// than zero, so callers always make progress.
func runeCut(s string, maxLen int) int {
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return maxLen
	}
	return cut
}

// sentences slices text after terminal punctuation, keeping the punctuation
// and any following whitespace attached to the sentence it ends.
func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			end := i + 1
			for end < len(text) && (text[end] == ' ' || text[end] == '\n') {
				end++
			}
			out = append(out, text[start:end])
			start = end
			i = end - 1
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}
