package mirror

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Runner executes the git binary. dir is the working directory; empty means
// the current one.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs Bin (default "git") as a subprocess.
type ExecRunner struct {
	Bin string
}

func (r ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	bin := r.Bin
	if bin == "" {
		bin = "git"
	}
	// #nosec G204 -- arguments are built by this package, not taken from documents.
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s %s: %w: %s", bin, strings.Join(args, " "), err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// Shell implements Port on top of the git command line.
type Shell struct {
	Runner Runner
}

// NewShell returns a Shell running bin; empty means "git" from PATH.
func NewShell(bin string) *Shell {
	return &Shell{Runner: ExecRunner{Bin: bin}}
}

func (s *Shell) Clone(ctx context.Context, loc config.MirrorLocation) error {
	args := []string{"clone", "--no-checkout", "--single-branch", "--no-tags", "--branch", loc.Branch}
	if loc.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(loc.Depth))
	}
	args = append(args, "--", loc.Remote, loc.Root)
	if _, err := s.Runner.Run(ctx, "", args...); err != nil {
		return err
	}
	if _, err := s.Runner.Run(ctx, loc.Root, "sparse-checkout", "set", "--no-cone", "/"+loc.Subtree+"/"); err != nil {
		return err
	}
	_, err := s.Runner.Run(ctx, loc.Root, "checkout", loc.Branch)
	return err
}

func (s *Shell) Fetch(ctx context.Context, loc config.MirrorLocation) error {
	_, err := s.Runner.Run(ctx, loc.Root, "fetch", "--no-tags", "origin", loc.Branch)
	return err
}

func (s *Shell) Heads(ctx context.Context, loc config.MirrorLocation) (string, string, error) {
	out, err := s.Runner.Run(ctx, loc.Root, "rev-parse", "refs/heads/"+loc.Branch, "refs/remotes/origin/"+loc.Branch)
	if err != nil {
		return "", "", err
	}
	lines := strings.Fields(string(out))
	if len(lines) != 2 {
		return "", "", fmt.Errorf("rev-parse: unexpected output %q", string(out))
	}
	return lines[0], lines[1], nil
}

func (s *Shell) IsAncestor(ctx context.Context, loc config.MirrorLocation, a, b string) (bool, error) {
	_, err := s.Runner.Run(ctx, loc.Root, "merge-base", "--is-ancestor", a, b)
	if err == nil {
		return true, nil
	}
	var exit interface{ ExitCode() int }
	if stderrors.As(err, &exit) && exit.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

func (s *Shell) FastForward(ctx context.Context, loc config.MirrorLocation, commit string) error {
	_, err := s.Runner.Run(ctx, loc.Root, "merge", "--ff-only", commit)
	return err
}
