package markdown

import (
	"regexp"

	"github.com/yuin/goldmark-emoji/definition"
)

var (
	reEmoji = regexp.MustCompile(`:([A-Za-z0-9_+-]+):`)
	emojis  = definition.Github()
)

// Emojis replaces :shortcode: sequences with the matching glyph from the GitHub
// shortcode registry. Unknown shortcodes are left untouched.
func Emojis(src []byte) []byte {
	return reEmoji.ReplaceAllFunc(src, func(m []byte) []byte {
		name := string(m[1 : len(m)-1])
		if e, ok := emojis.Get(name); ok {
			return []byte(string(e.Unicode))
		}
		return m
	})
}
