package printing

import (
	"strings"
)

// WrapText splits text into lines no wider than maxWidth as reported by
// measure. Words are packed greedily, hard newlines always break, and a word
// wider than the column is split between runes. An empty input yields no lines.
func WrapText(text string, maxWidth float64, measure func(string) float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if measure(candidate) <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			if measure(word) <= maxWidth {
				current = word
				continue
			}
			pieces := breakWord(word, maxWidth, measure)
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// breakWord splits a single word into rune runs that each fit maxWidth. A
// run always holds at least one rune so progress is guaranteed.
func breakWord(word string, maxWidth float64, measure func(string) float64) []string {
	var pieces []string
	var b strings.Builder
	for _, r := range word {
		next := b.String() + string(r)
		if b.Len() > 0 && measure(next) > maxWidth {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}
