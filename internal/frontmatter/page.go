package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// Method is the HTTP method a page is served under.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

var methods = normalization.NewNormalizer(map[string]Method{
	"":     MethodGet,
	"get":  MethodGet,
	"post": MethodPost,
}, MethodGet)

// ParseMethod accepts GET or POST in any case. The empty string is GET.
func ParseMethod(s string) (Method, error) {
	m, err := methods.NormalizeWithError(s)
	if err != nil {
		return "", fmt.Errorf("unsupported method: %w", err)
	}
	return m, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Method) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseMethod(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Method) String() string {
	if m == "" {
		return string(MethodGet)
	}
	return string(m)
}

// Param is a declared route parameter.
type Param struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// Page is the typed front matter of a document.
type Page struct {
	Title         string         `yaml:"title"`
	PageConf      map[string]any `yaml:"pageconf"`
	AdditionalCSS []string       `yaml:"additional_css"`
	Method        Method         `yaml:"method"`
	Params        []Param        `yaml:"params"`
}

// ErrMissingTitle is returned by Decode when the title is empty.
var ErrMissingTitle = errors.New("front matter requires a title")

// Decode parses raw front matter (without delimiters) into a Page.
// Unknown keys are ignored.
func Decode(front []byte) (*Page, error) {
	var page Page
	if err := yaml.Unmarshal(front, &page); err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Title) == "" {
		return nil, ErrMissingTitle
	}
	if page.Method == "" {
		page.Method = MethodGet
	}
	if page.PageConf == nil {
		page.PageConf = map[string]any{}
	}
	return &page, nil
}

// ParamNames returns the declared parameter names in declaration order.
func (p *Page) ParamNames() []string {
	names := make([]string, 0, len(p.Params))
	for _, param := range p.Params {
		names = append(names, param.Name)
	}
	return names
}

// TemplateData exposes the page under its front matter keys.
func (p *Page) TemplateData() map[string]any {
	params := make([]map[string]any, 0, len(p.Params))
	for _, param := range p.Params {
		params = append(params, map[string]any{"type": param.Type, "name": param.Name})
	}
	css := p.AdditionalCSS
	if css == nil {
		css = []string{}
	}
	return map[string]any{
		"title":          p.Title,
		"pageconf":       p.PageConf,
		"additional_css": css,
		"method":         p.Method.String(),
		"params":         params,
	}
}
