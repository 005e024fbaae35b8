package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"

	"github.com/skillhub-labs/skillhub/internal/logger"
)

// Git implements Transport with the git binary. Repository inspection is
// done in-process with go-git.
type Git struct {
	// Binary is the git executable; "git" when empty.
	Binary string
	// Env is appended to the environment of every git invocation.
	Env []string
}

var _ Transport = (*Git)(nil)

// NewGit returns a Git transport using the git found on PATH.
func NewGit() *Git {
	return &Git{Binary: "git"}
}

func (g *Git) Clone(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}
	_, err := g.run(ctx, "", "clone", url, dir)
	return err
}

func (g *Git) PullRebase(ctx context.Context, dir, branch string) error {
	ok, err := g.remoteHasBranch(ctx, dir, branch)
	if err != nil {
		return err
	}
	if !ok {
		logger.G(ctx).WithField("branch", branch).Debug("remote branch does not exist yet, nothing to pull")
		return nil
	}
	_, err = g.run(ctx, dir, "pull", "--rebase", "--autostash", "origin", branch)
	return err
}

func (g *Git) AbortRebase(ctx context.Context, dir string) error {
	_, err := g.run(ctx, dir, "rebase", "--abort")
	return err
}

func (g *Git) Commit(ctx context.Context, dir, message string) error {
	if clean, err := worktreeClean(dir); err == nil && clean {
		logger.G(ctx).WithField("dir", dir).Debug("worktree clean, nothing to commit")
		return nil
	}

	if _, err := g.run(ctx, dir, "add", "-A", "."); err != nil {
		return err
	}
	// diff --cached --quiet exits 1 when something is staged.
	if _, err := g.run(ctx, dir, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}
	_, err := g.run(ctx, dir, "commit", "-m", message)
	return err
}

func (g *Git) Push(ctx context.Context, dir, branch string) error {
	_, err := g.run(ctx, dir, "push", "-u", "origin", branch)
	return err
}

func (g *Git) ResetToRemote(ctx context.Context, dir, branch string) error {
	ok, err := g.remoteHasBranch(ctx, dir, branch)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("origin has no branch %s to reset to", branch)
	}
	if _, err := g.run(ctx, dir, "fetch", "origin", branch); err != nil {
		return err
	}
	if _, err := g.run(ctx, dir, "reset", "--hard", "FETCH_HEAD"); err != nil {
		return err
	}
	_, err = g.run(ctx, dir, "clean", "-fd")
	return err
}

func (g *Git) RenameBranch(ctx context.Context, dir, name string) error {
	_, err := g.run(ctx, dir, "branch", "-M", name)
	return err
}

func (g *Git) State(dir string) (State, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return Absent, nil
	}
	if err != nil {
		return Invalid, errors.Wrapf(err, "inspecting %s", dir)
	}
	if !info.IsDir() {
		return Invalid, nil
	}

	if _, err := git.PlainOpen(dir); err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Invalid, nil
		}
		return Invalid, errors.Wrapf(err, "opening repository %s", dir)
	}

	for _, name := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(dir, ".git", name)); err == nil {
			return Conflicted, nil
		}
	}
	return Clean, nil
}

// remoteHasBranch relies on ls-remote --exit-code returning 2 when no ref
// matches.
func (g *Git) remoteHasBranch(ctx context.Context, dir, branch string) (bool, error) {
	_, err := g.run(ctx, dir, "ls-remote", "--exit-code", "--heads", "origin", branch)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 2 {
		return false, nil
	}
	return false, err
}

func (g *Git) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, errors.Errorf("%s is required but not found in PATH", bin)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Env = append(cmd.Env, g.Env...)

	logger.G(ctx).WithField("dir", dir).WithField("args", args).Debug("running git")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, &CommandError{
			Args:   args,
			Output: strings.TrimSpace(string(output)),
			Err:    err,
		}
	}
	return output, nil
}

// CommandError carries the output of a failed git invocation.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := "git " + strings.Join(e.Args, " ") + ": " + e.Err.Error()
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

func worktreeClean(dir string) (bool, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return false, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	return status.IsClean(), nil
}
