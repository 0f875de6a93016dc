// Package styles compiles the project stylesheets and installs the built-in
// assets of the template mirror.
package styles

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

var (
	// ErrCompilerNotFound indicates the style compiler binary is not on PATH.
	ErrCompilerNotFound = stderrors.New("style compiler binary not found")

	// ErrCompileFailed indicates the style compiler exited with an error.
	ErrCompileFailed = stderrors.New("style compilation failed")
)

// Compiler turns the stylesheet directory src into CSS files under dst.
type Compiler interface {
	Compile(ctx context.Context, src, dst string) error
}

// BinaryCompiler runs an external preprocessor as `<Bin> src:dst`. The
// compiler writes into a scratch directory whose files are then installed
// through Writer, so unchanged output is not rewritten.
type BinaryCompiler struct {
	Bin    string
	Writer *incremental.Writer
}

func (b *BinaryCompiler) Compile(ctx context.Context, src, dst string) error {
	bin, err := exec.LookPath(b.Bin)
	if err != nil {
		return errors.IOError("style compiler not available").
			WithCause(fmt.Errorf("%w: %w", ErrCompilerNotFound, err)).WithContext("binary", b.Bin).Build()
	}

	scratch, err := os.MkdirTemp("", "sitebuilder-styles-*")
	if err != nil {
		return errors.IOError("create scratch directory").WithCause(err).Build()
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	// #nosec G204 -- the binary is chosen by the operator on the command line.
	cmd := exec.CommandContext(ctx, bin, src+":"+scratch)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Running style compiler", slog.String("binary", bin), logfields.Path(src))

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String() + "\n" + stdout.String())
		cause := fmt.Errorf("%w: %w", ErrCompileFailed, err)
		if output != "" {
			cause = fmt.Errorf("%w: %w: %s", ErrCompileFailed, err, output)
		}
		return errors.RenderError("compile styles").WithCause(cause).WithPath(src).
			WithContext("binary", b.Bin).Build()
	}
	if s := strings.TrimSpace(stderr.String()); s != "" {
		slog.Warn("Style compiler reported warnings", slog.String("output", s))
	}

	return installTree(scratch, dst, func(string) bool { return true }, b.Writer.CopyIfChanged)
}

// CopyCompiler copies plain .css files without preprocessing.
type CopyCompiler struct {
	Writer *incremental.Writer
}

func (c *CopyCompiler) Compile(_ context.Context, src, dst string) error {
	return installTree(src, dst, isCSS, c.Writer.CopyIfChanged)
}

func isCSS(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".css")
}

// installTree mirrors the regular files of src accepted by keep into dst.
func installTree(src, dst string, keep func(string) bool, install func(src, dst string) (bool, error)) error {
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !keep(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		_, err = install(p, filepath.Join(dst, rel))
		return err
	})
	if err != nil {
		if errors.IsClassified(err) {
			return err
		}
		return errors.IOError("install styles").WithCause(err).WithPath(src).Build()
	}
	return nil
}

// CopyBuiltins installs the mirror's built-in stylesheets into
// <static>/styles and its not-found page into <static>/404.html. Both are
// copied unconditionally.
func CopyBuiltins(w *incremental.Writer, loc config.MirrorLocation, staticDir string) error {
	copyAll := func(src, dst string) (bool, error) { return true, w.Copy(src, dst) }
	if err := installTree(loc.StylesDir(), filepath.Join(staticDir, config.StylesDir), func(string) bool { return true }, copyAll); err != nil {
		return err
	}
	return w.Copy(loc.TemplateFile(config.NotFoundPageFile), filepath.Join(staticDir, config.NotFoundPageFile))
}
