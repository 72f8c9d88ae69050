package domain

import (
	"sort"
	"strconv"
	"strings"
)

// ParsePageRanges parses a page selection such as "1-3,5" against a document
// of pageCount pages. Tokens are single pages or inclusive dashed ranges; a
// reversed range ("5-3") is read as "3-5". Unparsable tokens and page numbers
// outside [1, pageCount] are skipped. The result is deduplicated and sorted
// in ascending document order.
func ParsePageRanges(spec string, pageCount int) []int {
	seen := make(map[int]bool)
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		lo, hi, ok := parseRangeToken(tok)
		if !ok {
			continue
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo < 1 {
			lo = 1
		}
		if hi > pageCount {
			hi = pageCount
		}
		for p := lo; p <= hi; p++ {
			seen[p] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func parseRangeToken(tok string) (lo, hi int, ok bool) {
	// A leading '-' would make "-3" look like a range with an empty start.
	if i := strings.Index(tok[1:], "-"); i >= 0 {
		a, errA := strconv.Atoi(strings.TrimSpace(tok[:i+1]))
		b, errB := strconv.Atoi(strings.TrimSpace(tok[i+2:]))
		if errA != nil || errB != nil {
			return 0, 0, false
		}
		return a, b, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, 0, false
	}
	return n, n, true
}
