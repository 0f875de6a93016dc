package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	derrors "git.home.luguber.info/inful/sitebuilder/internal/docs/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Document is one Markdown source file with its decoded front matter.
type Document struct {
	Path        string // slash-separated path relative to the source root
	AbsPath     string // absolute path on disk
	FrontMatter []byte // raw YAML between the delimiters
	Body        []byte // Markdown after the front matter
	Page        *frontmatter.Page
}

// Stem is the relative path without its extension, e.g. "users/<id>".
func (d Document) Stem() string {
	return strings.TrimSuffix(d.Path, path.Ext(d.Path))
}

// Walk enumerates every Markdown document below root, sorted by relative path.
//
// Hidden entries and non-Markdown files are skipped, as are sub-entries that
// cannot be listed. A missing root, an unreadable document or broken front
// matter aborts the walk.
func Walk(root string) ([]Document, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.IOError("resolve source directory").WithCause(err).WithPath(root).Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.IOError("source directory not found").
				WithCause(fmt.Errorf("%w: %w", derrors.ErrSourceNotFound, err)).WithPath(abs).Build()
		}
		return nil, errors.IOError("stat source directory").
			WithCause(fmt.Errorf("%w: %w", derrors.ErrWalkFailed, err)).WithPath(abs).Build()
	}
	if !info.IsDir() {
		return nil, errors.IOError("source path is not a directory").WithCause(derrors.ErrSourceNotDir).WithPath(abs).Build()
	}

	var paths []string
	walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == abs {
				return err
			}
			slog.Debug("Skipping unreadable entry", logfields.Path(p), logfields.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p != abs && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsMarkdownFile(d.Name()) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if walkErr != nil {
		return nil, errors.IOError("walk source directory").
			WithCause(fmt.Errorf("%w: %w", derrors.ErrWalkFailed, walkErr)).WithPath(abs).Build()
	}

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil {
			return nil, errors.InternalError("relative document path").WithCause(relErr).WithPath(p).Build()
		}
		doc, loadErr := load(p, filepath.ToSlash(rel))
		if loadErr != nil {
			return nil, loadErr
		}
		slog.Debug("Discovered document", logfields.File(doc.Path), logfields.Page(doc.Page.Title))
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func load(absPath, rel string) (Document, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return Document{}, errors.IOError("read document").
			WithCause(fmt.Errorf("%w: %w", derrors.ErrFileReadFailed, err)).WithPath(rel).Build()
	}

	fm, body, _, err := frontmatter.Split(content)
	if err != nil {
		return Document{}, errors.ConfigError("split front matter").
			WithCause(fmt.Errorf("%w: %w", derrors.ErrInvalidFrontMatter, err)).WithPath(rel).Build()
	}
	page, err := frontmatter.Decode(fm)
	if err != nil {
		return Document{}, errors.ConfigError("decode front matter").
			WithCause(fmt.Errorf("%w: %w", derrors.ErrInvalidFrontMatter, err)).WithPath(rel).Build()
	}

	return Document{
		Path:        rel,
		AbsPath:     absPath,
		FrontMatter: fm,
		Body:        body,
		Page:        page,
	}, nil
}

// IsMarkdownFile reports whether the file name has a Markdown extension.
func IsMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}
