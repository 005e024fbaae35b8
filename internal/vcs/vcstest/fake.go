// Package vcstest provides a scriptable vcs.Transport for tests.
package vcstest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skillhub-labs/skillhub/internal/vcs"
)

// ErrRejected is the default failure returned by scripted pushes.
var ErrRejected = errors.New("push rejected: remote contains work you do not have")

// Fake is an in-process transport. The mirror is a plain directory with a
// .git marker directory; the optional Remote is a plain directory that
// Clone copies from and Push copies to.
//
// Calls records clone, pull, abort, commit, push, reset and rename. Each
// *Errs slice is consumed one entry per call; a nil entry or an exhausted
// slice means success.
type Fake struct {
	Remote string

	CloneErrs  []error
	PullErrs   []error
	PushErrs   []error
	CommitErrs []error
	AbortErrs  []error
	RenameErrs []error
	ResetErrs  []error

	// ConflictOnPullFailure leaves a rebase in progress when a pull fails.
	ConflictOnPullFailure bool

	mu      sync.Mutex
	calls   []string
	commits []string
}

var _ vcs.Transport = (*Fake)(nil)

// Calls returns the operations performed so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many times op was called.
func (f *Fake) Count(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// Commits returns the messages of the commits recorded so far.
func (f *Fake) Commits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commits...)
}

func (f *Fake) next(op string, script *[]error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if len(*script) == 0 {
		return nil
	}
	err := (*script)[0]
	*script = (*script)[1:]
	return err
}

func (f *Fake) Clone(_ context.Context, _, dir string) error {
	if err := f.next("clone", &f.CloneErrs); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		return err
	}
	if f.Remote == "" {
		return nil
	}
	return copyTree(f.Remote, dir)
}

func (f *Fake) PullRebase(_ context.Context, dir, _ string) error {
	if err := f.next("pull", &f.PullErrs); err != nil {
		if f.ConflictOnPullFailure {
			_ = os.MkdirAll(filepath.Join(dir, ".git", "rebase-merge"), 0755)
		}
		return err
	}
	if f.Remote == "" {
		return nil
	}
	return copyMissing(f.Remote, dir)
}

func (f *Fake) AbortRebase(_ context.Context, dir string) error {
	if err := f.next("abort", &f.AbortErrs); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(dir, ".git", "rebase-merge"))
}

func (f *Fake) Commit(_ context.Context, _, message string) error {
	if err := f.next("commit", &f.CommitErrs); err != nil {
		return err
	}
	f.mu.Lock()
	f.commits = append(f.commits, message)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Push(_ context.Context, dir, _ string) error {
	if err := f.next("push", &f.PushErrs); err != nil {
		return err
	}
	if f.Remote == "" {
		return nil
	}
	if err := os.RemoveAll(f.Remote); err != nil {
		return err
	}
	return copyTree(dir, f.Remote)
}

// ResetToRemote empties the mirror worktree and copies the remote back in.
func (f *Fake) ResetToRemote(_ context.Context, dir, _ string) error {
	if err := f.next("reset", &f.ResetErrs); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(filepath.Join(dir, ".git", "rebase-merge")); err != nil {
		return err
	}
	if f.Remote == "" {
		return nil
	}
	return copyTree(f.Remote, dir)
}

func (f *Fake) RenameBranch(_ context.Context, _, _ string) error {
	return f.next("rename", &f.RenameErrs)
}

func (f *Fake) State(dir string) (vcs.State, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return vcs.Absent, nil
	}
	if err != nil {
		return vcs.Invalid, err
	}
	if !info.IsDir() {
		return vcs.Invalid, nil
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return vcs.Invalid, nil
	}
	if _, err := os.Stat(filepath.Join(dir, ".git", "rebase-merge")); err == nil {
		return vcs.Conflicted, nil
	}
	return vcs.Clean, nil
}

// copyTree copies src into dst, skipping any .git directory.
func copyTree(src, dst string) error {
	return walkFiles(src, func(rel string, data []byte, mode fs.FileMode) error {
		return writeFile(filepath.Join(dst, rel), data, mode)
	})
}

// copyMissing copies files from src that dst does not have yet, which is
// enough of a rebase for tests that publish distinct skills.
func copyMissing(src, dst string) error {
	return walkFiles(src, func(rel string, data []byte, mode fs.FileMode) error {
		target := filepath.Join(dst, rel)
		if _, err := os.Stat(target); err == nil {
			return nil
		}
		return writeFile(target, data, mode)
	})
}

func walkFiles(root string, fn func(rel string, data []byte, mode fs.FileMode) error) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || strings.HasPrefix(rel, ".git"+string(filepath.Separator)) {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(rel, data, info.Mode().Perm())
	})
}

func writeFile(path string, data []byte, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, mode)
}
