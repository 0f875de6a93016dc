package mirror

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// GoGit implements Port in-process with go-git.
type GoGit struct{}

func (GoGit) Clone(ctx context.Context, loc config.MirrorLocation) error {
	branch := plumbing.NewBranchReferenceName(loc.Branch)
	repo, err := git.PlainCloneContext(ctx, loc.Root, false, &git.CloneOptions{
		URL:           loc.Remote,
		RemoteName:    "origin",
		ReferenceName: branch,
		SingleBranch:  true,
		Depth:         loc.Depth,
		NoCheckout:    true,
		Tags:          git.NoTags,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", loc.Remote, err)
	}
	return checkoutSparse(repo, loc)
}

func (GoGit) Fetch(ctx context.Context, loc config.MirrorLocation) error {
	repo, err := git.PlainOpen(loc.Root)
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	spec := ggitcfg.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", loc.Branch, loc.Branch))
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []ggitcfg.RefSpec{spec},
		Tags:       git.NoTags,
	})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

func (GoGit) Heads(_ context.Context, loc config.MirrorLocation) (string, string, error) {
	repo, err := git.PlainOpen(loc.Root)
	if err != nil {
		return "", "", fmt.Errorf("open mirror: %w", err)
	}
	local, err := repo.Reference(plumbing.NewBranchReferenceName(loc.Branch), true)
	if err != nil {
		return "", "", fmt.Errorf("local ref: %w", err)
	}
	remote, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", loc.Branch), true)
	if err != nil {
		return "", "", fmt.Errorf("remote ref: %w", err)
	}
	return local.Hash().String(), remote.Hash().String(), nil
}

func (GoGit) IsAncestor(_ context.Context, loc config.MirrorLocation, a, b string) (bool, error) {
	repo, err := git.PlainOpen(loc.Root)
	if err != nil {
		return false, fmt.Errorf("open mirror: %w", err)
	}
	return isAncestor(repo, plumbing.NewHash(a), plumbing.NewHash(b))
}

func (GoGit) FastForward(_ context.Context, loc config.MirrorLocation, commit string) error {
	repo, err := git.PlainOpen(loc.Root)
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(loc.Branch), plumbing.NewHash(commit))
	if err := repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("move branch: %w", err)
	}
	return checkoutSparse(repo, loc)
}

func checkoutSparse(repo *git.Repository, loc config.MirrorLocation) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{
		Branch:                    plumbing.NewBranchReferenceName(loc.Branch),
		Force:                     true,
		SparseCheckoutDirectories: []string{loc.Subtree},
	})
	if err != nil {
		return fmt.Errorf("checkout %s: %w", loc.Subtree, err)
	}
	return nil
}

// isAncestor walks the history of b breadth-first looking for a. Parents
// missing from a shallow history end that line of the walk; a missing b is
// an error.
func isAncestor(repo *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			if h != b && stderrors.Is(err, plumbing.ErrObjectNotFound) {
				continue
			}
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}
