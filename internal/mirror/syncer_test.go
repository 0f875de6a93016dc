package mirror

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// fakePort models a history as child -> parent edges.
type fakePort struct {
	local, remote string
	parents       map[string]string
	fetchErr      error
	cloneErr      error
	clones        int
	forwardedTo   string
}

func (f *fakePort) Clone(_ context.Context, loc config.MirrorLocation) error {
	f.clones++
	if f.cloneErr != nil {
		return f.cloneErr
	}
	return os.MkdirAll(filepath.Join(loc.Root, ".git"), 0o750)
}

func (f *fakePort) Fetch(context.Context, config.MirrorLocation) error { return f.fetchErr }

func (f *fakePort) Heads(context.Context, config.MirrorLocation) (string, string, error) {
	return f.local, f.remote, nil
}

func (f *fakePort) IsAncestor(_ context.Context, _ config.MirrorLocation, a, b string) (bool, error) {
	for h := b; h != ""; h = f.parents[h] {
		if h == a {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePort) FastForward(_ context.Context, _ config.MirrorLocation, commit string) error {
	f.forwardedTo = commit
	f.local = commit
	return nil
}

func installedSyncer(t *testing.T, port *fakePort) *Syncer {
	t.Helper()
	loc := config.MirrorLocation{Root: filepath.Join(t.TempDir(), "mirror"), Branch: "main", Subtree: "templates"}
	s := NewSyncer(port, loc)
	_, err := s.Setup(context.Background())
	require.NoError(t, err)
	return s
}

func TestSyncer_MergeAnalysis(t *testing.T) {
	history := map[string]string{"c3": "c2", "c2": "c1", "x2": "c1"}
	cases := []struct {
		name        string
		local       string
		remote      string
		want        State
		wantErr     bool
		wantForward string
	}{
		{"equal", "c2", "c2", StateUpToDate, false, ""},
		{"local ahead", "c3", "c2", StateUpToDate, false, ""},
		{"remote ahead", "c1", "c3", StateFastForwarded, false, "c3"},
		{"diverged", "c2", "x2", StateDiverged, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			port := &fakePort{local: tc.local, remote: tc.remote, parents: history}
			s := installedSyncer(t, port)

			state, err := s.Update(context.Background())
			assert.Equal(t, tc.want, state)
			assert.Equal(t, tc.wantForward, port.forwardedTo)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCategory(err, errors.CategorySync))
				assert.Equal(t, tc.local, port.local)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSyncer_UpdateRequiresInstall(t *testing.T) {
	port := &fakePort{}
	s := NewSyncer(port, config.MirrorLocation{Root: filepath.Join(t.TempDir(), "absent")})
	state, err := s.Update(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateAbsent, state)
	assert.True(t, errors.HasCategory(err, errors.CategorySync))
}

func TestSyncer_FetchFailure(t *testing.T) {
	boom := stderrors.New("network down")
	port := &fakePort{local: "c1", remote: "c1", fetchErr: boom}
	s := installedSyncer(t, port)

	_, err := s.Update(context.Background())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, boom))
	assert.True(t, errors.HasCategory(err, errors.CategorySync))
}

func TestSyncer_Ensure(t *testing.T) {
	port := &fakePort{}
	s := NewSyncer(port, config.MirrorLocation{Root: filepath.Join(t.TempDir(), "m")})

	require.NoError(t, s.Ensure(context.Background()))
	require.NoError(t, s.Ensure(context.Background()))
	assert.Equal(t, 1, port.clones)

	failing := &fakePort{cloneErr: stderrors.New("no route to host")}
	err := NewSyncer(failing, config.MirrorLocation{Root: filepath.Join(t.TempDir(), "m")}).Ensure(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategorySync))
}

type stateRecorder struct {
	metrics.NoopRecorder
	states []string
}

func (r *stateRecorder) IncMirrorSync(state string) { r.states = append(r.states, state) }

func TestSyncer_RecordsOutcomes(t *testing.T) {
	history := map[string]string{"c2": "c1", "x2": "c1"}
	port := &fakePort{local: "c1", remote: "c2", parents: history}
	rec := &stateRecorder{}
	loc := config.MirrorLocation{Root: filepath.Join(t.TempDir(), "mirror"), Branch: "main", Subtree: "templates"}
	s := NewSyncer(port, loc).WithRecorder(rec)

	_, err := s.Setup(context.Background())
	require.NoError(t, err)
	_, err = s.Update(context.Background())
	require.NoError(t, err)

	port.remote = "x2"
	port.local = "c2"
	_, err = s.Update(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"up-to-date", "fast-forwarded", "diverged"}, rec.states)
}
