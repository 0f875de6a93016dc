// Package params checks declared route parameters against the placeholders
// embedded in a document's path.
package params

import (
	"fmt"
	"regexp"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

var rePlaceholder = regexp.MustCompile(`<(.*?)>`)

// Placeholders returns every <name> token of path in order of appearance.
func Placeholders(path string) []string {
	matches := rePlaceholder.FindAllStringSubmatch(path, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Validate fails when a declared name is empty, duplicated, or missing from
// the placeholders of path. Placeholders without a declaration are allowed.
func Validate(path string, declared []string) error {
	present := make(map[string]struct{})
	for _, p := range Placeholders(path) {
		present[p] = struct{}{}
	}

	seen := make(map[string]struct{}, len(declared))
	for i, name := range declared {
		if name == "" {
			return errors.ValidationError(fmt.Sprintf("parameter %d has an empty name", i)).
				WithPath(path).Build()
		}
		if _, dup := seen[name]; dup {
			return errors.ValidationError(fmt.Sprintf("parameter %q is declared twice", name)).
				WithPath(path).WithContext("param", name).Build()
		}
		seen[name] = struct{}{}
		if _, ok := present[name]; !ok {
			return errors.ValidationError(fmt.Sprintf("parameter %q is not a placeholder in the file path", name)).
				WithPath(path).WithContext("param", name).Build()
		}
	}
	return nil
}
