package markdown

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

type fakeOpener struct {
	err   error
	calls int
}

func (f *fakeOpener) OpenCallout(kind, title string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(fmt.Sprintf("<div class=\"admonish admonish-%s\">\n<p class=\"admonish-title\">%s</p>\n<div class=\"admonish-content\">\n", kind, title)), nil
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "class" && strings.Contains(" "+a.Val+" ", " "+class+" ") {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func TestConverter_Admonition(t *testing.T) {
	opener := &fakeOpener{}
	out, err := NewConverter(opener).Convert([]byte("# Title\n\n```admonish warning Careful\nThis is **bold**.\n```\n\nAfter.\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, opener.calls)

	s := string(out)
	assert.Contains(t, s, "<strong>bold</strong>")
	assert.Contains(t, s, CalloutClose)
	assert.NotContains(t, s, "<pre>")

	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	callout := findByClass(doc, "admonish-warning")
	require.NotNil(t, callout)
	assert.Equal(t, "Careful", textOf(findByClass(callout, "admonish-title")))
	assert.Contains(t, textOf(findByClass(callout, "admonish-content")), "This is bold.")

	after := strings.Index(s, "<p>After.</p>")
	require.Positive(t, after)
	assert.Less(t, strings.Index(s, CalloutClose), after)
}

func TestConverter_DefaultAdmonition(t *testing.T) {
	out, err := NewConverter(&fakeOpener{}).Convert([]byte("```admonish\nbody\n```\n"))
	require.NoError(t, err)
	doc, err := html.Parse(strings.NewReader(string(out)))
	require.NoError(t, err)
	callout := findByClass(doc, "admonish-note")
	require.NotNil(t, callout)
	assert.Equal(t, "Note", textOf(findByClass(callout, "admonish-title")))
}

func TestConverter_RegularCodeBlockUntouched(t *testing.T) {
	opener := &fakeOpener{}
	out, err := NewConverter(opener).Convert([]byte("```go\nif a < b {}\n```\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, opener.calls)
	assert.Equal(t, "<pre><code class=\"language-go\">if a &lt; b {}\n</code></pre>\n", string(out))
}

func TestConverter_ExtensionsAndRawHTML(t *testing.T) {
	out, err := NewConverter(&fakeOpener{}).Convert([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n<span class=\"x\">raw</span>\n"))
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "<table>")
	assert.Contains(t, s, "<del>gone</del>")
	assert.Contains(t, s, `<span class="x">raw</span>`)
}

func TestConverter_OpenerFailure(t *testing.T) {
	boom := stderrors.New("boom")
	_, err := NewConverter(&fakeOpener{err: boom}).Convert([]byte("```admonish\nx\n```\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRender))
	assert.True(t, stderrors.Is(err, boom))
}

func TestTransformer_Pipeline(t *testing.T) {
	out, err := NewTransformer(&fakeOpener{}).Transform([]byte("He said \"hi\" :cat:\n"))
	require.NoError(t, err)
	assert.Equal(t, "<p>He said “hi” 🐱</p>\n", string(out))
}
