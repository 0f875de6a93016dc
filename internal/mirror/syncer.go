package mirror

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// State is the observable state of the mirror.
type State string

const (
	StateAbsent        State = "absent"
	StateUpToDate      State = "up-to-date"
	StateFastForwarded State = "fast-forwarded"
	StateDiverged      State = "diverged"
)

// Port is the version-control surface the Syncer needs. Hashes are full hex
// commit ids.
type Port interface {
	// Clone creates a sparse, single-branch checkout of loc.Subtree at loc.Root.
	Clone(ctx context.Context, loc config.MirrorLocation) error
	// Fetch updates the remote-tracking ref of loc.Branch.
	Fetch(ctx context.Context, loc config.MirrorLocation) error
	// Heads returns the local branch commit and the remote-tracking commit.
	Heads(ctx context.Context, loc config.MirrorLocation) (local, remote string, err error)
	// IsAncestor reports whether a is reachable from b.
	IsAncestor(ctx context.Context, loc config.MirrorLocation, a, b string) (bool, error)
	// FastForward moves the local branch to commit and checks it out.
	FastForward(ctx context.Context, loc config.MirrorLocation, commit string) error
}

// Syncer drives the mirror state machine over a Port.
type Syncer struct {
	port     Port
	loc      config.MirrorLocation
	recorder metrics.Recorder
}

// NewSyncer returns a Syncer for the mirror at loc.
func NewSyncer(port Port, loc config.MirrorLocation) *Syncer {
	return &Syncer{port: port, loc: loc, recorder: metrics.NoopRecorder{}}
}

// WithRecorder counts the outcome of every Setup and Update on r.
func (s *Syncer) WithRecorder(r metrics.Recorder) *Syncer {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Location returns the mirror location the Syncer manages.
func (s *Syncer) Location() config.MirrorLocation {
	return s.loc
}

// State reports StateAbsent when there is no checkout at the mirror root and
// StateUpToDate otherwise. Freshness against the remote is not checked.
func (s *Syncer) State() State {
	if _, err := os.Stat(filepath.Join(s.loc.Root, ".git")); err != nil {
		return StateAbsent
	}
	return StateUpToDate
}

// Setup clones the mirror when absent. A partially created mirror is left on
// disk when cloning fails.
func (s *Syncer) Setup(ctx context.Context) (State, error) {
	state, err := s.setup(ctx)
	s.recorder.IncMirrorSync(string(state))
	return state, err
}

func (s *Syncer) setup(ctx context.Context) (State, error) {
	if s.State() != StateAbsent {
		slog.Info("Template mirror already installed", logfields.Mirror(s.loc.Root))
		return StateUpToDate, nil
	}
	slog.Info("Installing template mirror",
		logfields.Mirror(s.loc.Root), logfields.Remote(s.loc.Remote), logfields.Branch(s.loc.Branch))

	if err := s.port.Clone(ctx, s.loc); err != nil {
		return StateAbsent, s.syncError("install template mirror", err)
	}
	slog.Info("Template mirror installed", logfields.Mirror(s.loc.Root))
	return StateUpToDate, nil
}

// Ensure runs Setup when the mirror is absent and is a no-op otherwise.
func (s *Syncer) Ensure(ctx context.Context) error {
	if s.State() != StateAbsent {
		return nil
	}
	_, err := s.Setup(ctx)
	return err
}

// Update fetches the tracked branch and fast-forwards the mirror when the
// remote is strictly ahead. A diverged mirror yields StateDiverged with a
// sync error and is not modified.
func (s *Syncer) Update(ctx context.Context) (State, error) {
	state, err := s.update(ctx)
	s.recorder.IncMirrorSync(string(state))
	return state, err
}

func (s *Syncer) update(ctx context.Context) (State, error) {
	if s.State() == StateAbsent {
		return StateAbsent, errors.SyncError("template mirror is not installed (run setup)").
			WithContext("mirror", s.loc.Root).Build()
	}

	if err := s.port.Fetch(ctx, s.loc); err != nil {
		return StateUpToDate, s.syncError("fetch template mirror", err)
	}
	local, remote, err := s.port.Heads(ctx, s.loc)
	if err != nil {
		return StateUpToDate, s.syncError("resolve template mirror heads", err)
	}

	if local == remote {
		slog.Info("Template mirror up to date", logfields.Commit(local), logfields.Branch(s.loc.Branch))
		return StateUpToDate, nil
	}

	ahead, err := s.port.IsAncestor(ctx, s.loc, remote, local)
	if err != nil {
		return StateUpToDate, s.syncError("merge analysis", err)
	}
	if ahead {
		slog.Info("Template mirror ahead of remote, nothing to do",
			logfields.Commit(local), slog.String("remote_commit", short(remote)))
		return StateUpToDate, nil
	}

	behind, err := s.port.IsAncestor(ctx, s.loc, local, remote)
	if err != nil {
		return StateUpToDate, s.syncError("merge analysis", err)
	}
	if !behind {
		return StateDiverged, errors.SyncError("template mirror diverged from remote; fast-forward only").
			WithContext("mirror", s.loc.Root).
			WithContext("branch", s.loc.Branch).
			WithContext("local", local).
			WithContext("remote", remote).
			WithContext("diverged", true).
			Build()
	}

	if err := s.port.FastForward(ctx, s.loc, remote); err != nil {
		return StateUpToDate, s.syncError("fast-forward template mirror", err)
	}
	slog.Info("Template mirror fast-forwarded",
		slog.String("from", short(local)), slog.String("to", short(remote)), logfields.Branch(s.loc.Branch))
	return StateFastForwarded, nil
}

// Uninstall removes the mirror tree. It reports whether anything was removed.
func (s *Syncer) Uninstall() (bool, error) {
	if _, err := os.Stat(s.loc.Root); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(s.loc.Root); err != nil {
		return false, errors.IOError("remove template mirror").WithCause(err).WithPath(s.loc.Root).Build()
	}
	slog.Info("Template mirror removed", logfields.Mirror(s.loc.Root))
	return true, nil
}

func (s *Syncer) syncError(msg string, err error) error {
	return errors.SyncError(msg).WithCause(err).
		WithContext("mirror", s.loc.Root).
		WithContext("remote", s.loc.Remote).
		WithContext("branch", s.loc.Branch).
		Build()
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
