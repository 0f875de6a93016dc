// Package compositor loads the mirrored templates once per build and renders
// them. A Compositor is immutable after New returns.
package compositor

import (
	"bytes"
	"os"
	"text/template"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Template names accepted by Render.
const (
	Page     = "page"
	Manifest = "manifest"
	Source   = "source"
	Callout  = "admonish"
)

// Compositor renders the page layout, the routing project and callouts.
type Compositor struct {
	root *template.Template
}

// New loads the templates from the mirror's template subtree.
func New(loc config.MirrorLocation) (*Compositor, error) {
	root := template.New("").Funcs(Funcs()).Option("missingkey=error")

	files := []struct {
		name string
		file string
	}{
		{Page, config.PageTemplateFile},
		{"routing", config.RoutingTemplateFile},
		{Callout, config.AdmonishTemplateFile},
	}
	for _, f := range files {
		p := loc.TemplateFile(f.file)
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.TemplateError("load template").WithCause(err).WithPath(p).
				WithContext("template", f.file).Build()
		}
		if _, err := root.New(f.name).Parse(string(data)); err != nil {
			return nil, errors.TemplateError("parse template").WithCause(err).WithPath(p).
				WithContext("template", f.file).Build()
		}
	}

	for _, name := range []string{Manifest, Source} {
		if root.Lookup(name) == nil {
			return nil, errors.TemplateError("routing template must define "+name).
				WithPath(loc.TemplateFile(config.RoutingTemplateFile)).
				WithContext("template", name).Build()
		}
	}
	return &Compositor{root: root}, nil
}

// Render executes one of the named templates.
func (c *Compositor) Render(name string, data any) ([]byte, error) {
	t := c.root.Lookup(name)
	if t == nil {
		return nil, errors.TemplateError("unknown template").WithContext("template", name).Build()
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, errors.RenderError("render template").WithCause(err).WithContext("template", name).Build()
	}
	return buf.Bytes(), nil
}

// RenderInline parses body as a template and executes it with data. The
// parsed template is not added to the compositor. name identifies the
// document in errors.
func (c *Compositor) RenderInline(name string, body []byte, data any) ([]byte, error) {
	t, err := template.New(name).Funcs(Funcs()).Option("missingkey=error").Parse(string(body))
	if err != nil {
		return nil, errors.TemplateError("parse inline template").WithCause(err).WithPath(name).Build()
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, errors.RenderError("render inline template").WithCause(err).WithPath(name).Build()
	}
	return buf.Bytes(), nil
}

// OpenCallout renders the opening markup of a callout block.
func (c *Compositor) OpenCallout(kind, title string) ([]byte, error) {
	return c.Render(Callout, map[string]any{"kind": kind, "title": title})
}
