package compositor

import (
	"path"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Funcs returns the helpers available to every template. All of them are pure.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"lower":     Lower,
		"stem":      Stem,
		"sanitize":  Sanitize,
		"pure":      Pure,
		"contains":  strings.Contains,
		"trimStart": TrimStart,
		"trimEnd":   TrimEnd,
	}
}

var lowerCaser = cases.Lower(language.Und)

// Lower lower-cases s using Unicode case mapping.
func Lower(s string) string {
	return lowerCaser.String(s)
}

// Stem returns the file name of p without its extension: "a/b/c.md" -> "c".
func Stem(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

var sanitizer = strings.NewReplacer("<", "_", ">", "_")

// Sanitize replaces placeholder brackets with underscores: "<id>" -> "_id_".
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

// Pure reports whether s contains no placeholder brackets.
func Pure(s string) bool {
	return !strings.ContainsAny(s, "<>")
}

// TrimStart drops the first n runes of s. n is clamped to the string length.
func TrimStart(n int, s string) string {
	r := []rune(s)
	n = clamp(n, len(r))
	return string(r[n:])
}

// TrimEnd drops the last n runes of s. n is clamped to the string length.
func TrimEnd(n int, s string) string {
	r := []rune(s)
	n = clamp(n, len(r))
	return string(r[:len(r)-n])
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
