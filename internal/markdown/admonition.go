package markdown

import (
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// Kind is the visual variant of a callout.
type Kind string

const (
	KindNote    Kind = "note"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindExample Kind = "example"
	KindTip     Kind = "tip"
	KindBug     Kind = "bug"
	KindTLDR    Kind = "tldr"
	KindDone    Kind = "done"
	KindHelp    Kind = "help"
	KindFail    Kind = "fail"
	KindDanger  Kind = "danger"
	KindQuote   Kind = "quote"
)

var kinds = normalization.NewNormalizer(map[string]Kind{
	"note": KindNote, "info": KindInfo, "warning": KindWarning, "example": KindExample,
	"tip": KindTip, "bug": KindBug, "tldr": KindTLDR, "done": KindDone,
	"help": KindHelp, "fail": KindFail, "danger": KindDanger, "quote": KindQuote,
}, KindNote)

// DefaultTitle is used when the info string carries no title.
const DefaultTitle = "Note"

// ParseKind maps a token to a Kind, case-insensitively. Unknown tokens are KindNote.
func ParseKind(token string) Kind {
	return kinds.Normalize(token)
}

// Admonition is a parsed `admonish` info string.
type Admonition struct {
	Kind  Kind
	Title string
}

// ParseAdmonition parses a fenced block info string such as
// "admonish warning Mind the gap". ok is false unless the first token is "admonish".
func ParseAdmonition(info string) (Admonition, bool) {
	fields := strings.Fields(info)
	if len(fields) == 0 || fields[0] != "admonish" {
		return Admonition{}, false
	}
	a := Admonition{Kind: KindNote, Title: DefaultTitle}
	if len(fields) > 1 {
		a.Kind = ParseKind(fields[1])
	}
	if len(fields) > 2 {
		a.Title = strings.Join(fields[2:], " ")
	}
	return a, true
}

// CalloutOpener renders the opening markup of a callout.
type CalloutOpener interface {
	OpenCallout(kind, title string) ([]byte, error)
}

// CalloutClose terminates the markup opened by a CalloutOpener.
const CalloutClose = "</div>\n</div>\n"
