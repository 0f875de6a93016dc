package config

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

//go:embed defaults
var defaultsFS embed.FS

// Init scaffolds a project in dir: site.yaml, summary.yaml and src/introduction.md.
// Unless force is set, nothing is written when any of the targets exists.
func Init(dir string, force bool) ([]string, error) {
	type file struct {
		src, target string
	}
	var files []file
	err := fs.WalkDir(defaultsFS, "defaults", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel("defaults", filepath.FromSlash(path))
		files = append(files, file{src: path, target: filepath.Join(dir, rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !force {
		for _, f := range files {
			if _, statErr := os.Stat(f.target); statErr == nil {
				return nil, errors.ConfigError("file already exists (use --force to overwrite)").WithPath(f.target).Build()
			}
		}
	}

	created := make([]string, 0, len(files))
	for _, f := range files {
		data, readErr := defaultsFS.ReadFile(f.src)
		if readErr != nil {
			return created, readErr
		}
		if mkErr := os.MkdirAll(filepath.Dir(f.target), 0o750); mkErr != nil {
			return created, errors.IOError("create directory").WithCause(mkErr).WithPath(filepath.Dir(f.target)).Build()
		}
		if writeErr := os.WriteFile(f.target, data, 0o644); writeErr != nil {
			return created, errors.IOError("write file").WithCause(writeErr).WithPath(f.target).Build()
		}
		created = append(created, f.target)
	}
	return created, nil
}
