package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func newMarkdown(extra ...goldmark.Extender) goldmark.Markdown {
	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
	}
	exts = append(exts, extra...)
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Converter turns Markdown into HTML, rewriting `admonish` fenced blocks into
// callouts. A Converter is safe for sequential reuse.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds a converter whose callouts open with markup from opener.
// The content of a callout is rendered without callout support, so admonitions
// do not nest.
func NewConverter(opener CalloutOpener) *Converter {
	inner := newMarkdown()
	return &Converter{
		md: newMarkdown(&admonitionExtension{opener: opener, inner: inner}),
	}
}

// Convert renders src to HTML.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return nil, errors.RenderError("convert markdown").WithCause(err).Build()
	}
	return buf.Bytes(), nil
}

// Transformer is the fixed per-document content pipeline: quote
// normalization, emoji substitution, then Markdown conversion.
type Transformer struct {
	conv *Converter
}

// NewTransformer returns a Transformer using opener for callouts.
func NewTransformer(opener CalloutOpener) *Transformer {
	return &Transformer{conv: NewConverter(opener)}
}

// Transform runs the pipeline over a document body.
func (t *Transformer) Transform(body []byte) ([]byte, error) {
	return t.conv.Convert(Emojis(CurlyQuotes(body)))
}
