// Package pages accumulates the metadata of rendered pages for route
// generation and the build manifest.
package pages

import (
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

// Record is one rendered page.
type Record struct {
	Source      string // slash path relative to the source root
	Output      string // slash path relative to the static directory
	Page        *frontmatter.Page
	Fingerprint string
}

// Registry is the ordered list of records of one build. It is not safe for
// concurrent use.
type Registry struct {
	records []Record
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append adds a record after all previous ones.
func (r *Registry) Append(rec Record) {
	r.records = append(r.records, rec)
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns a copy of the records in append order.
func (r *Registry) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Sorted returns a copy of the records ordered by source path.
func (r *Registry) Sorted() []Record {
	out := r.Records()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
