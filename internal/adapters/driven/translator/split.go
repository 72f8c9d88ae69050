package translator

import (
	"strings"
	"unicode/utf8"
)

// split breaks text into pieces of at most max bytes, preferring paragraph
// and then line boundaries. Joining the pieces reproduces text.
func split(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}
	var parts []string
	for len(text) > max {
		cut := strings.LastIndex(text[:max], "\n\n")
		if cut <= 0 {
			cut = strings.LastIndex(text[:max], "\n")
		}
		if cut <= 0 {
			cut = strings.LastIndex(text[:max], " ")
		}
		if cut <= 0 {
			cut = max
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		} else {
			cut++
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// translatePieces translates each piece with fn and concatenates the results.
func translatePieces(text string, max int, fn func(string) (string, error)) (string, error) {
	var b strings.Builder
	for _, piece := range split(text, max) {
		if strings.TrimSpace(piece) == "" {
			b.WriteString(piece)
			continue
		}
		out, err := fn(piece)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		if last := piece[len(piece)-1]; (last == '\n' || last == ' ') && !strings.HasSuffix(out, string(last)) {
			b.WriteByte(last)
		}
	}
	return b.String(), nil
}
