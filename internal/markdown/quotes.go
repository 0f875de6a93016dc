package markdown

import "regexp"

// reQuote pairs straight double quotes left to right. A region never spans a
// line break and quotes do not nest, so an odd count leaves the last quote
// straight.
var reQuote = regexp.MustCompile(`"(.*?)"`)

// CurlyQuotes replaces each pair of straight double quotes with typographic ones.
func CurlyQuotes(src []byte) []byte {
	return reQuote.ReplaceAll(src, []byte("“${1}”"))
}
