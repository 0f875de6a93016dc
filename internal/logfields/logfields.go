package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyPage       = "page"
	KeyRoute      = "route"
	KeyMethod     = "method"
	KeyTemplate   = "template"
	KeyMirror     = "mirror"
	KeyRemote     = "remote"
	KeyBranch     = "branch"
	KeyCommit     = "commit"
	KeyState      = "state"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Page(title string) slog.Attr      { return slog.String(KeyPage, title) }
func Route(r string) slog.Attr         { return slog.String(KeyRoute, r) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Template(name string) slog.Attr   { return slog.String(KeyTemplate, name) }
func Mirror(dir string) slog.Attr      { return slog.String(KeyMirror, dir) }
func Remote(url string) slog.Attr      { return slog.String(KeyRemote, url) }
func Branch(b string) slog.Attr        { return slog.String(KeyBranch, b) }
func State(s string) slog.Attr         { return slog.String(KeyState, s) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }

// Commit logs the abbreviated form of a commit hash.
func Commit(hash string) slog.Attr {
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return slog.String(KeyCommit, hash)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
