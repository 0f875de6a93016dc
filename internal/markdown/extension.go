package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// admonitionRenderer renders fenced code blocks, turning `admonish` blocks
// into callouts and everything else into regular <pre><code> blocks.
type admonitionRenderer struct {
	html.Config
	opener CalloutOpener
	inner  goldmark.Markdown
}

func newAdmonitionRenderer(opener CalloutOpener, inner goldmark.Markdown, opts ...html.Option) renderer.NodeRenderer {
	r := &admonitionRenderer{
		Config: html.NewConfig(),
		opener: opener,
		inner:  inner,
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *admonitionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *admonitionRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)

	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	if a, ok := ParseAdmonition(info); ok {
		return r.renderCallout(w, source, n, a, entering)
	}

	if entering {
		_, _ = w.WriteString("<pre><code")
		if lang := n.Language(source); lang != nil {
			_, _ = w.WriteString(` class="language-`)
			r.Writer.Write(w, lang)
			_ = w.WriteByte('"')
		}
		_ = w.WriteByte('>')
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			r.Writer.RawWrite(w, line.Value(source))
		}
	} else {
		_, _ = w.WriteString("</code></pre>\n")
	}
	return ast.WalkContinue, nil
}

func (r *admonitionRenderer) renderCallout(w util.BufWriter, source []byte, n *ast.FencedCodeBlock, a Admonition, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString(CalloutClose)
		return ast.WalkContinue, nil
	}

	open, err := r.opener.OpenCallout(string(a.Kind), a.Title)
	if err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.Write(open)

	var body bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		body.Write(line.Value(source))
	}
	if err := r.inner.Convert(body.Bytes(), w); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

// admonitionExtension wires the callout renderer above goldmark's default
// fenced code block renderer.
type admonitionExtension struct {
	opener CalloutOpener
	inner  goldmark.Markdown
}

func (e *admonitionExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(newAdmonitionRenderer(e.opener, e.inner, html.WithUnsafe()), 100),
	))
}
