// Package incremental writes build output only when its content changed.
package incremental

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Result describes what a write call did to its target.
type Result string

const (
	ResultWritten   Result = "written"
	ResultUnchanged Result = "unchanged"
	ResultCopied    Result = "copied"
)

// Stats counts write results since the Writer was created.
type Stats struct {
	Written   int
	Unchanged int
	Copied    int
}

// Observer is notified after every completed write call.
type Observer func(path string, result Result)

// Writer is the single gate for files of the output tree. Targets are replaced
// through a temporary file in the same directory and a rename, so a target is
// either the old or the new content.
type Writer struct {
	stats    Stats
	observer Observer
}

// Option configures a Writer.
type Option func(*Writer)

// WithObserver registers a callback for each result.
func WithObserver(o Observer) Option {
	return func(w *Writer) { w.observer = o }
}

// NewWriter returns a Writer with zeroed counters.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Fingerprint returns the hex SHA-256 digest of data.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteIfChanged writes data to path unless path already holds identical
// bytes. It reports whether the file was written.
func (w *Writer) WriteIfChanged(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if Fingerprint(existing) == Fingerprint(data) {
			w.record(path, ResultUnchanged)
			return false, nil
		}
	case os.IsNotExist(err):
	default:
		return false, errors.IOError("read existing output").WithCause(err).WithPath(path).Build()
	}

	if err := atomicWrite(path, data); err != nil {
		return false, err
	}
	w.record(path, ResultWritten)
	return true, nil
}

// CopyIfChanged copies src to dst through WriteIfChanged.
func (w *Writer) CopyIfChanged(src, dst string) (bool, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return false, errors.IOError("read source file").WithCause(err).WithPath(src).Build()
	}
	return w.WriteIfChanged(dst, data)
}

// Copy replaces dst with the content of src without comparing fingerprints.
func (w *Writer) Copy(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.IOError("read source file").WithCause(err).WithPath(src).Build()
	}
	if err := atomicWrite(dst, data); err != nil {
		return err
	}
	w.record(dst, ResultCopied)
	return nil
}

// Stats returns the counters.
func (w *Writer) Stats() Stats {
	return w.stats
}

func (w *Writer) record(path string, r Result) {
	switch r {
	case ResultWritten:
		w.stats.Written++
	case ResultUnchanged:
		w.stats.Unchanged++
	case ResultCopied:
		w.stats.Copied++
	}
	if w.observer != nil {
		w.observer(path, r)
	}
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.IOError("create output directory").WithCause(err).WithPath(dir).Build()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.IOError("create temporary file").WithCause(err).WithPath(path).Build()
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := bytes.NewReader(data).WriteTo(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.IOError("write temporary file").WithCause(err).WithPath(path).Build()
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.IOError("chmod temporary file").WithCause(err).WithPath(path).Build()
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.IOError("close temporary file").WithCause(err).WithPath(path).Build()
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return errors.IOError("replace output file").WithCause(err).WithPath(path).Build()
	}
	return nil
}
