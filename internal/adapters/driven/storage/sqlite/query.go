package sqlite

import "strings"

// ftsQuery turns free text into an FTS5 MATCH expression. Every term is
// quoted so punctuation and FTS5 syntax in user input cannot break the
// query; a trailing '*' is kept as a prefix match and a bare OR between
// terms is kept as an operator. Remaining terms are ANDed.
func ftsQuery(input string) string {
	fields := strings.Fields(input)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "OR" {
			if len(parts) > 0 && parts[len(parts)-1] != "OR" {
				parts = append(parts, "OR")
			}
			continue
		}
		prefix := strings.HasSuffix(f, "*")
		term := strings.Trim(f, `*"`)
		if term == "" {
			continue
		}
		quoted := `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
		if prefix {
			quoted += "*"
		}
		parts = append(parts, quoted)
	}
	for len(parts) > 0 && parts[len(parts)-1] == "OR" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, " ")
}
