// Package manifest describes the pages produced by a build. The manifest is
// written next to the output tree as build-manifest.json.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/routegen"
)

// FileName is the manifest's name inside the output directory.
const FileName = "build-manifest.json"

// BuildManifest records the inputs fingerprint and one entry per page.
// It carries no timestamps so identical inputs produce identical bytes.
type BuildManifest struct {
	ContentHash string  `json:"content_hash"`
	Pages       []Entry `json:"pages"`
}

// Entry is one rendered page.
type Entry struct {
	Source      string `json:"source"`
	Output      string `json:"output"`
	Route       string `json:"route"`
	Method      string `json:"method"`
	Fingerprint string `json:"fingerprint"`
}

// New builds a manifest from the generated routes. routes and fingerprints
// are parallel to the ordered page records.
func New(contentHash string, sources []string, routes []routegen.Route, fingerprints []string) (*BuildManifest, error) {
	if len(sources) != len(routes) || len(routes) != len(fingerprints) {
		return nil, fmt.Errorf("manifest: %d sources, %d routes, %d fingerprints", len(sources), len(routes), len(fingerprints))
	}
	m := &BuildManifest{ContentHash: contentHash, Pages: make([]Entry, 0, len(routes))}
	for i, r := range routes {
		m.Pages = append(m.Pages, Entry{
			Source:      sources[i],
			Output:      r.File,
			Route:       r.Path,
			Method:      r.Method,
			Fingerprint: fingerprints[i],
		})
	}
	return m, nil
}

// ToJSON serializes the manifest to indented JSON with a trailing newline.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash digests the page list. Two builds of the same inputs share a hash.
func (m *BuildManifest) Hash() (string, error) {
	data, err := json.Marshal(m.Pages)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	sum := sha256.Sum256(append([]byte(m.ContentHash+"\n"), data...))
	return fmt.Sprintf("%x", sum), nil
}

// Lookup returns the entry for a source path.
func (m *BuildManifest) Lookup(source string) (Entry, bool) {
	for _, e := range m.Pages {
		if e.Source == source {
			return e, true
		}
	}
	return Entry{}, false
}
