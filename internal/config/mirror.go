package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Mirror defaults. The remote hosts the templates/ subtree of this project.
const (
	DefaultMirrorRemote  = "https://git.home.luguber.info/inful/sitebuilder.git"
	DefaultMirrorBranch  = "main"
	DefaultMirrorSubtree = "templates"
	DefaultMirrorDepth   = 1
	MirrorEnvVar         = "SITEBUILDER_MIRROR"
)

// Well-known files inside the mirror's template subtree.
const (
	PageTemplateFile     = "page.html.tmpl"
	RoutingTemplateFile  = "routing.go.tmpl"
	AdmonishTemplateFile = "admonish.html.tmpl"
	NotFoundPageFile     = "404.html"
	StylesDir            = "styles"
)

// MirrorLocation identifies the local template mirror and the remote it tracks.
// It is resolved once per invocation and passed by value.
type MirrorLocation struct {
	Root    string // local checkout directory
	Remote  string // origin URL
	Branch  string // tracked branch
	Subtree string // sparse checkout directory holding the templates
	Depth   int    // clone depth, 0 for full history
}

// ResolveMirrorLocation fills defaults. Root precedence: explicit root, then
// $SITEBUILDER_MIRROR, then <user config dir>/sitebuilder/mirror.
func ResolveMirrorLocation(root, remote, branch string) (MirrorLocation, error) {
	loc := MirrorLocation{
		Root:    root,
		Remote:  remote,
		Branch:  branch,
		Subtree: DefaultMirrorSubtree,
		Depth:   DefaultMirrorDepth,
	}
	if loc.Root == "" {
		loc.Root = os.Getenv(MirrorEnvVar)
	}
	if loc.Root == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return MirrorLocation{}, errors.ConfigError("cannot determine template mirror location").WithCause(err).Build()
		}
		loc.Root = filepath.Join(base, "sitebuilder", "mirror")
	}
	abs, err := filepath.Abs(loc.Root)
	if err != nil {
		return MirrorLocation{}, errors.ConfigError("resolve template mirror location").WithCause(err).WithPath(loc.Root).Build()
	}
	loc.Root = abs
	if loc.Remote == "" {
		loc.Remote = DefaultMirrorRemote
	}
	if loc.Branch == "" {
		loc.Branch = DefaultMirrorBranch
	}
	return loc, nil
}

// TemplatesDir is the directory holding the mirrored templates.
func (m MirrorLocation) TemplatesDir() string {
	return filepath.Join(m.Root, m.Subtree)
}

// TemplateFile returns the path of a file inside the template subtree.
func (m MirrorLocation) TemplateFile(name string) string {
	return filepath.Join(m.TemplatesDir(), name)
}

// StylesDir is the directory of built-in style assets.
func (m MirrorLocation) StylesDir() string {
	return m.TemplateFile(StylesDir)
}
