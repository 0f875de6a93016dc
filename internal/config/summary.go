package config

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// SummaryEntry is one navigation link of the sidebar.
type SummaryEntry struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Summary is the navigation manifest. Entry order is the sidebar order.
type Summary struct {
	Map []SummaryEntry `yaml:"map"`
}

// TemplateData returns the entries as maps so layouts use the manifest keys.
func (s *Summary) TemplateData() []map[string]any {
	out := make([]map[string]any, 0, len(s.Map))
	for _, e := range s.Map {
		out = append(out, map[string]any{"title": e.Title, "url": e.URL})
	}
	return out
}

// LoadSummary reads the navigation manifest.
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("navigation manifest not found").WithPath(path).Build()
		}
		return nil, errors.IOError("read navigation manifest").WithCause(err).WithPath(path).Build()
	}

	var summary Summary
	if err := decodeStrict(data, &summary); err != nil {
		return nil, errors.ConfigError("parse navigation manifest").WithCause(err).WithPath(path).Build()
	}
	for i, e := range summary.Map {
		if e.Title == "" || e.URL == "" {
			return nil, errors.ConfigError("navigation entry needs title and url").
				WithCause(fmt.Errorf("entry %d: title=%q url=%q", i, e.Title, e.URL)).
				WithPath(path).
				Build()
		}
	}
	return &summary, nil
}
