// Package vcs is the version-control capability the registry mirror is
// built on. The mirror only needs a handful of operations, each of which
// either succeeds or fails; tool output is kept for diagnostics and never
// parsed.
package vcs

import "context"

// State describes what is on disk at a mirror location.
type State int

const (
	// Absent means nothing exists at the location.
	Absent State = iota
	// Clean means a usable repository with no operation in progress.
	Clean
	// Conflicted means a rebase was interrupted and still needs aborting.
	Conflicted
	// Invalid means the location exists but is not a repository.
	Invalid
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Clean:
		return "clean"
	case Conflicted:
		return "conflicted"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Transport performs the version-control operations of the registry mirror.
type Transport interface {
	// Clone creates a working copy of url at dir.
	Clone(ctx context.Context, url, dir string) error
	// PullRebase fetches branch from origin and rebases local work onto it.
	// A remote without the branch yet is not an error.
	PullRebase(ctx context.Context, dir, branch string) error
	// AbortRebase restores the state from before an interrupted rebase.
	AbortRebase(ctx context.Context, dir string) error
	// Commit stages every change and records it. A clean worktree is a
	// successful no-op.
	Commit(ctx context.Context, dir, message string) error
	// Push publishes branch to origin.
	Push(ctx context.Context, dir, branch string) error
	// ResetToRemote discards local commits and worktree changes so dir
	// matches branch on origin again.
	ResetToRemote(ctx context.Context, dir, branch string) error
	// RenameBranch forces the current branch name to name.
	RenameBranch(ctx context.Context, dir, name string) error
	// State inspects dir without modifying it.
	State(dir string) (State, error)
}
