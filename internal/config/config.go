// Package config loads the immutable inputs of a build: the site configuration,
// the navigation manifest and the location of the template mirror.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Default file names at the project root.
const (
	DefaultSiteFile    = "site.yaml"
	DefaultSummaryFile = "summary.yaml"
	DefaultSourceDir   = "src"
	DefaultOutputDir   = "www"
	DefaultLanguage    = "en"
)

// Site is the site configuration: a free-form map plus the fixed misc block.
type Site struct {
	Config map[string]any `yaml:"config"`
	Misc   Misc           `yaml:"misc"`
}

// Misc holds the toggles consumed by the page layout.
type Misc struct {
	Latex                bool   `yaml:"latex"`
	HTMLLang             string `yaml:"html_lang"`
	AdditionalHTMLHeader string `yaml:"additional_html_header"`
	SyntaxHighlighting   bool   `yaml:"syntax_highlighting"`
}

// TemplateData exposes the misc block under the same keys as the YAML file.
func (m Misc) TemplateData() map[string]any {
	return map[string]any{
		"latex":                  m.Latex,
		"html_lang":              m.HTMLLang,
		"additional_html_header": m.AdditionalHTMLHeader,
		"syntax_highlighting":    m.SyntaxHighlighting,
	}
}

// TemplateData is the value bound to `outer` in inline page templates.
func (s *Site) TemplateData() map[string]any {
	cfg := s.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	return map[string]any{
		"config": cfg,
		"misc":   s.Misc.TemplateData(),
	}
}

// LoadSite reads and validates the site configuration file.
func LoadSite(path string) (*Site, error) {
	loadEnvFile()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("site configuration not found").WithPath(path).Build()
		}
		return nil, errors.IOError("read site configuration").WithCause(err).WithPath(path).Build()
	}

	var site Site
	if err := decodeStrict(data, &site); err != nil {
		return nil, errors.ConfigError("parse site configuration").WithCause(err).WithPath(path).Build()
	}
	if err := site.normalize(); err != nil {
		return nil, errors.ConfigError("invalid site configuration").WithCause(err).WithPath(path).Build()
	}
	return &site, nil
}

func (s *Site) normalize() error {
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	s.Misc.HTMLLang = strings.TrimSpace(s.Misc.HTMLLang)
	if s.Misc.HTMLLang == "" {
		s.Misc.HTMLLang = DefaultLanguage
		return nil
	}
	tag, err := language.Parse(s.Misc.HTMLLang)
	if err != nil {
		return err
	}
	s.Misc.HTMLLang = tag.String()
	return nil
}

// decodeStrict expands environment references and rejects unknown top-level keys.
func decodeStrict(data []byte, out any) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}
