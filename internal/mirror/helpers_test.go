package mirror

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// remoteFixture is a bare "remote" plus a seed working copy that pushes to it.
type remoteFixture struct {
	bare     string
	seedPath string
	seed     *git.Repository
}

func newRemoteFixture(t *testing.T) *remoteFixture {
	t.Helper()
	tmp := t.TempDir()
	bare := filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	seedPath := filepath.Join(tmp, "seed")
	seed, err := git.PlainInitWithOptions(seedPath, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)
	_, err = seed.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}})
	require.NoError(t, err)

	f := &remoteFixture{bare: bare, seedPath: seedPath, seed: seed}
	f.commit(t, map[string]string{
		"README.md":                "outside the mirrored subtree\n",
		"templates/page.html.tmpl": "v1",
	}, "initial")
	f.push(t, false)
	return f
}

func (f *remoteFixture) commit(t *testing.T, files map[string]string, msg string) plumbing.Hash {
	t.Helper()
	wt, err := f.seed.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		full := filepath.Join(f.seedPath, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)
	return hash
}

func (f *remoteFixture) push(t *testing.T, force bool) {
	t.Helper()
	opts := &git.PushOptions{RemoteName: "origin"}
	if force {
		opts.RefSpecs = []ggitcfg.RefSpec{"+refs/heads/main:refs/heads/main"}
	} else {
		opts.RefSpecs = []ggitcfg.RefSpec{"refs/heads/main:refs/heads/main"}
	}
	require.NoError(t, f.seed.Push(opts))
}

func (f *remoteFixture) resetTo(t *testing.T, hash plumbing.Hash) {
	t.Helper()
	wt, err := f.seed.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Reset(&git.ResetOptions{Commit: hash, Mode: git.HardReset}))
}

func (f *remoteFixture) location(t *testing.T) config.MirrorLocation {
	t.Helper()
	return config.MirrorLocation{
		Root:    filepath.Join(t.TempDir(), "mirror"),
		Remote:  f.bare,
		Branch:  "main",
		Subtree: config.DefaultMirrorSubtree,
	}
}

func localHead(t *testing.T, loc config.MirrorLocation) plumbing.Hash {
	t.Helper()
	repo, err := git.PlainOpen(loc.Root)
	require.NoError(t, err)
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(loc.Branch), true)
	require.NoError(t, err)
	return ref.Hash()
}

func readTemplate(t *testing.T, loc config.MirrorLocation) string {
	t.Helper()
	data, err := os.ReadFile(loc.TemplateFile(config.PageTemplateFile))
	require.NoError(t, err)
	return string(data)
}
