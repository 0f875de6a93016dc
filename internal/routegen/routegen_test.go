package routegen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/compositor"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/pages"
)

func repoCompositor(t *testing.T) *compositor.Compositor {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	c, err := compositor.New(config.MirrorLocation{Root: root, Subtree: config.DefaultMirrorSubtree})
	require.NoError(t, err)
	return c
}

// registeredPatterns collects the first argument of every mux.HandleFunc call.
func registeredPatterns(t *testing.T, src []byte) []string {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "main.go", src, 0)
	require.NoError(t, err)

	var patterns []string
	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "HandleFunc" || len(call.Args) == 0 {
			return true
		}
		lit, ok := call.Args[0].(*ast.BasicLit)
		require.True(t, ok)
		v, err := strconv.Unquote(lit.Value)
		require.NoError(t, err)
		patterns = append(patterns, v)
		return true
	})
	return patterns
}

// typeCheck fails the test unless src is a compilable main package.
func typeCheck(t *testing.T, src []byte) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "main.go", src, 0)
	require.NoError(t, err)
	conf := types.Config{Importer: importer.Default()}
	_, err = conf.Check("main", fset, []*ast.File{f}, nil)
	require.NoError(t, err, string(src))
}

// serve registers the generated patterns the way the server's main does.
func serve(t *testing.T, src []byte) {
	t.Helper()
	mux := http.NewServeMux()
	require.NotPanics(t, func() {
		mux.Handle("GET /static/", http.NotFoundHandler())
		for _, p := range registeredPatterns(t, src) {
			mux.HandleFunc(p, http.NotFound)
		}
	})
}

func TestGenerate_SinglePostRoute(t *testing.T) {
	g := New(repoCompositor(t))
	records := []pages.Record{{Source: "a.md", Output: "a.html", Page: &frontmatter.Page{Title: "A", Method: frontmatter.MethodPost}}}

	project, err := g.Generate(8080, "/srv/www/static", "/mirror", records)
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /a"}, registeredPatterns(t, project.Source))
	assert.Contains(t, string(project.Source), `"/srv/www/static"`)
	assert.Contains(t, string(project.Source), "http.ListenAndServe(\":8080\"")
	assert.True(t, strings.HasPrefix(string(project.Manifest), "module "))
}

func TestGenerate_PlaceholderRoutes(t *testing.T) {
	g := New(repoCompositor(t))
	records := []pages.Record{
		{Source: "index.md", Output: "index.html", Page: &frontmatter.Page{Title: "Home", Method: frontmatter.MethodGet}},
		{Source: "users/<id>.md", Output: "users/_id_.html", Page: &frontmatter.Page{
			Title: "User", Method: frontmatter.MethodGet, Params: []frontmatter.Param{{Type: "int", Name: "id"}},
		}},
	}
	project, err := g.Generate(3000, "/static", "", records)
	require.NoError(t, err)

	assert.Equal(t, []string{"GET /index", "GET /users/_id_"}, registeredPatterns(t, project.Source))
	assert.Contains(t, string(project.Source), "// Parameter id: int.")
	typeCheck(t, project.Source)
	serve(t, project.Source)
}

func TestGenerate_ServerCompilesAndRegisters(t *testing.T) {
	tests := []struct {
		name     string
		sources  []string
		patterns []string
	}{
		{
			name:     "sibling placeholders",
			sources:  []string{"<id>.md", "<name>.md"},
			patterns: []string{"GET /_id_", "GET /_name_"},
		},
		{
			name:     "repeated placeholder name",
			sources:  []string{"a/<id>/<id>.md"},
			patterns: []string{"GET /a/_id_/_id_"},
		},
		{
			name:     "literal braces",
			sources:  []string{"a{b}.md", "{$}.md"},
			patterns: []string{"GET /a%7Bb%7D", "GET /%7B$%7D"},
		},
		{
			name:     "colliding handler names",
			sources:  []string{"a.md", "a2.md", "a_.md"},
			patterns: []string{"GET /a", "GET /a2", "GET /a_"},
		},
	}
	g := New(repoCompositor(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]pages.Record, 0, len(tt.sources))
			for _, src := range tt.sources {
				stem := strings.TrimSuffix(src, ".md")
				records = append(records, pages.Record{
					Source: src,
					Output: compositor.Sanitize(stem) + ".html",
					Page:   &frontmatter.Page{Title: stem, Method: frontmatter.MethodGet},
				})
			}
			project, err := g.Generate(8080, "/srv/static", "", records)
			require.NoError(t, err)

			assert.Equal(t, tt.patterns, registeredPatterns(t, project.Source))
			typeCheck(t, project.Source)
			serve(t, project.Source)
		})
	}
}

func TestRegister_Conflict(t *testing.T) {
	routes := []Route{
		{Source: "a.md", Method: "GET", Pattern: "/a"},
		{Source: "b.md", Method: "GET", Pattern: "/a"},
	}
	err := Register(http.NewServeMux(), routes)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryCodegen))

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	path, _ := ce.Context().GetString("path")
	other, _ := ce.Context().GetString("other")
	assert.Equal(t, "b.md", path)
	assert.Equal(t, "a.md", other)
}

func TestRegister_StaticPrefix(t *testing.T) {
	err := Register(http.NewServeMux(), []Route{{Source: "static.md", Method: "GET", Pattern: "/static/"}})
	require.Error(t, err)
	other, _ := errors.ContextString(err, "other")
	assert.Equal(t, "static assets", other)
}

func TestGenerate_Deterministic(t *testing.T) {
	g := New(repoCompositor(t))
	records := []pages.Record{{Source: "b.md", Output: "b.html", Page: &frontmatter.Page{Title: "B", Method: frontmatter.MethodGet}}}
	first, err := g.Generate(80, "/s", "", records)
	require.NoError(t, err)
	second, err := g.Generate(80, "/s", "", records)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

type stubRenderer map[string]string

func (s stubRenderer) Render(name string, _ any) ([]byte, error) {
	return []byte(s[name]), nil
}

func TestGenerate_UnformattableSource(t *testing.T) {
	g := New(stubRenderer{compositor.Manifest: "module x\n", compositor.Source: "package main\nfunc {"})
	_, err := g.Generate(80, "/s", "", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryCodegen))
}

func TestRoutes(t *testing.T) {
	routes := Routes([]pages.Record{
		{Source: "a.md", Output: "a.html", Page: &frontmatter.Page{Title: "A", Method: frontmatter.MethodPost}},
		{Source: "a-b.md", Output: "a-b.html", Page: &frontmatter.Page{Title: "AB"}},
		{Source: "a_b.md", Output: "a_b.html", Page: &frontmatter.Page{Title: "AB2"}},
		{Source: "x/<bad-name>.md", Output: "x/_bad-name_.html", Page: &frontmatter.Page{Title: "X"}},
	})
	require.Len(t, routes, 4)

	assert.Equal(t, Route{Source: "a.md", Method: "POST", Path: "/a", Pattern: "/a", Handler: "serveA", File: "a.html", Params: []frontmatter.Param{}}, routes[0])
	assert.Equal(t, "GET", routes[1].Method)
	assert.Equal(t, "serveAB", routes[1].Handler)
	assert.Equal(t, "serveAB2", routes[2].Handler)
	assert.Equal(t, "/x/_bad-name_", routes[3].Pattern)
	assert.Equal(t, "/x/_bad-name_", routes[3].Path)
}

func TestRoutes_HandlerSuffixSkipsTakenNames(t *testing.T) {
	routes := Routes([]pages.Record{
		{Source: "a.md", Output: "a.html"},
		{Source: "a2.md", Output: "a2.html"},
		{Source: "a_.md", Output: "a_.html"},
		{Source: "a-.md", Output: "a-.html"},
	})
	seen := map[string]bool{}
	for _, r := range routes {
		assert.False(t, seen[r.Handler], "duplicate handler %s", r.Handler)
		seen[r.Handler] = true
	}
	assert.Equal(t, []string{"serveA", "serveA2", "serveA3", "serveA4"},
		[]string{routes[0].Handler, routes[1].Handler, routes[2].Handler, routes[3].Handler})
}

func TestPattern(t *testing.T) {
	assert.Equal(t, "/orgs/_org_/users/_id_", Pattern("orgs/<org>/users/<id>"))
	assert.Equal(t, "/v_1_", Pattern("v<1>"))
	assert.Equal(t, "/page", Pattern("page"))
	assert.Equal(t, "/a%7Bb%7D/c%20d", Pattern("a{b}/c d"))
}

func TestGenerate_NotFoundWritesHeaderOnce(t *testing.T) {
	g := New(repoCompositor(t))
	project, err := g.Generate(80, "/s", "", []pages.Record{{Source: "a.md", Output: "a.html", Page: &frontmatter.Page{Title: "A"}}})
	require.NoError(t, err)

	f, err := parser.ParseFile(token.NewFileSet(), "main.go", project.Source, 0)
	require.NoError(t, err)
	var calls []string
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != "notFound" {
			continue
		}
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			if call, ok := n.(*ast.CallExpr); ok {
				if sel, ok := call.Fun.(*ast.SelectorExpr); ok {
					calls = append(calls, sel.Sel.Name)
				}
			}
			return true
		})
	}
	require.NotEmpty(t, calls)
	assert.NotContains(t, calls, "ServeFile")
	assert.Contains(t, calls, "ReadFile")
	assert.Contains(t, calls, "WriteHeader")
	assert.Contains(t, calls, "Write")
}
