// Package routegen renders the companion server project from the page registry.
package routegen

import (
	"fmt"
	"go/format"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/compositor"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/pages"
)

// Output file names inside the server directory.
const (
	ManifestFile = "go.mod"
	SourceFile   = "main.go"
)

// Route is one generated handler.
type Route struct {
	Source  string              // source document, slash separated
	Method  string              // GET or POST
	Path    string              // "/" + sanitized stem, e.g. /users/_id_
	Pattern string              // Path escaped for ServeMux, e.g. /a%7Bb%7D
	Handler string              // Go identifier of the handler func
	File    string              // HTML file relative to the static directory
	Params  []frontmatter.Param // declared parameters
}

// Input is the context of the routing template.
type Input struct {
	Port      int
	Directory string
	Pages     []Route
	Mirror    string
}

// Project is the rendered server project.
type Project struct {
	Manifest []byte
	Source   []byte
}

// Renderer executes named templates.
type Renderer interface {
	Render(name string, data any) ([]byte, error)
}

// Generator turns page records into a server project.
type Generator struct {
	r Renderer
}

// New returns a generator rendering through r.
func New(r Renderer) *Generator {
	return &Generator{r: r}
}

// Generate renders the manifest and the formatted source for records, which
// must already be in their final order.
func (g *Generator) Generate(port int, directory, mirror string, records []pages.Record) (*Project, error) {
	routes := Routes(records)
	if err := Register(http.NewServeMux(), routes); err != nil {
		return nil, err
	}
	in := Input{
		Port:      port,
		Directory: directory,
		Pages:     routes,
		Mirror:    mirror,
	}

	manifest, err := g.r.Render(compositor.Manifest, in)
	if err != nil {
		return nil, errors.CodegenError("render server manifest").WithCause(err).
			WithContext("template", compositor.Manifest).Build()
	}
	source, err := g.r.Render(compositor.Source, in)
	if err != nil {
		return nil, errors.CodegenError("render server source").WithCause(err).
			WithContext("template", compositor.Source).Build()
	}
	formatted, err := format.Source(source)
	if err != nil {
		return nil, errors.CodegenError("generated server source does not parse").WithCause(err).
			WithContext("template", compositor.Source).Build()
	}
	return &Project{Manifest: manifest, Source: formatted}, nil
}

// Routes derives one route per record, keeping record order.
func Routes(records []pages.Record) []Route {
	routes := make([]Route, 0, len(records))
	used := make(map[string]bool, len(records))
	for _, rec := range records {
		stem := strings.TrimSuffix(rec.Source, path.Ext(rec.Source))
		method := frontmatter.MethodGet
		var params []frontmatter.Param
		if rec.Page != nil {
			method = rec.Page.Method
			params = rec.Page.Params
		}
		if params == nil {
			params = []frontmatter.Param{}
		}

		handler := handlerName(stem)
		for n := 2; used[handler]; n++ {
			handler = fmt.Sprintf("%s%d", handlerName(stem), n)
		}
		used[handler] = true

		routes = append(routes, Route{
			Source:  rec.Source,
			Method:  method.String(),
			Path:    "/" + compositor.Sanitize(stem),
			Pattern: Pattern(stem),
			Handler: handler,
			File:    rec.Output,
			Params:  params,
		})
	}
	return routes
}

// Pattern converts a stem into a literal ServeMux path: the sanitized stem
// with every segment path-escaped, so braces and other reserved characters
// never turn into wildcards.
func Pattern(stem string) string {
	segments := strings.Split(compositor.Sanitize(stem), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segments, "/")
}

// Register adds every route to mux the way the generated server does. A
// pattern ServeMux rejects becomes a CodegenError naming the documents
// involved.
func Register(mux *http.ServeMux, routes []Route) (err error) {
	type owner struct{ pattern, source string }
	owners := []owner{{"GET /static/", "static assets"}}
	var current Route
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		reason := fmt.Sprint(rec)
		b := errors.CodegenError("conflicting server route").
			WithPath(current.Source).
			WithContext("pattern", current.Method+" "+current.Pattern).
			WithContext("reason", reason)
		for _, o := range owners {
			if strings.Contains(reason, strconv.Quote(o.pattern)) {
				b = b.WithContext("other", o.source)
				break
			}
		}
		err = b.Build()
	}()

	mux.Handle(owners[0].pattern, http.NotFoundHandler())
	for _, r := range routes {
		current = r
		p := r.Method + " " + r.Pattern
		mux.HandleFunc(p, http.NotFound)
		owners = append(owners, owner{p, r.Source})
	}
	return nil
}

var titleCaser = cases.Title(language.Und, cases.NoLower)

func handlerName(stem string) string {
	parts := strings.FieldsFunc(stem, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	var sb strings.Builder
	sb.WriteString("serve")
	for _, p := range parts {
		sb.WriteString(titleCaser.String(p))
	}
	return sb.String()
}
