// Package catalog locates skill directories on disk by fuzzy name.
//
// A fuzzy match is a case-insensitive substring test against a directory's
// base name. Only direct children of each search path are considered;
// recursion belongs to the copy step, not to discovery. Results are
// structured (NotFound, Unique, Ambiguous) and never auto-resolved: when
// more than one directory matches, every candidate is returned so a human
// can pick.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/logger"
)

// Kind classifies a lookup outcome.
type Kind int

const (
	NotFound Kind = iota
	Unique
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Result is the outcome of a lookup. Candidates holds every match in
// discovery order: search paths in the order given, names sorted within
// each path.
type Result struct {
	Kind       Kind
	Candidates []string

	// Skipped collects search paths that existed but could not be read.
	// The scan continues past them.
	Skipped error
}

// Unique returns the single candidate when Kind is Unique.
func (r *Result) Unique() (string, bool) {
	if r.Kind != Unique {
		return "", false
	}
	return r.Candidates[0], true
}

// Err converts a non-unique result into the matching errdefs error. It
// returns nil for a Unique result.
func (r *Result) Err(scope, pattern string) error {
	switch r.Kind {
	case Unique:
		return nil
	case Ambiguous:
		return &errdefs.AmbiguityError{
			Scope:      scope,
			Pattern:    pattern,
			Candidates: append([]string(nil), r.Candidates...),
		}
	default:
		return errdefs.NotFound("could not find any %s skill matching %q", scope, pattern)
	}
}

// Classify builds a Result from a candidate list.
func Classify(candidates []string) *Result {
	r := &Result{Candidates: candidates}
	switch len(candidates) {
	case 0:
		r.Kind = NotFound
	case 1:
		r.Kind = Unique
	default:
		r.Kind = Ambiguous
	}
	return r
}

// Matches reports whether name contains pattern, ignoring case.
func Matches(pattern, name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

// MatchNames filters names with Matches, preserving order.
func MatchNames(pattern string, names []string) []string {
	var matched []string
	for _, n := range names {
		if Matches(pattern, n) {
			matched = append(matched, n)
		}
	}
	return matched
}

// ValidatePattern rejects empty and whitespace-only descriptions. An empty
// pattern would match everything, which is a user error, not a wildcard.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errdefs.UserInput("please provide a description or name of the skill")
	}
	return nil
}

// FindLocal scans the direct children of each search path and returns the
// directories whose base name contains pattern. Missing search paths are
// ignored; unreadable ones are recorded in Result.Skipped and the scan
// moves on to the next path.
func FindLocal(ctx context.Context, pattern string, searchPaths []string) (*Result, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	var matches []string
	var skipped *multierror.Error

	for _, root := range searchPaths {
		names, err := ChildDirs(root)
		if err != nil {
			if os.IsNotExist(errors.Cause(err)) {
				continue
			}
			logger.G(ctx).WithError(err).WithField("path", root).Warn("skipping unreadable search path")
			skipped = multierror.Append(skipped, err)
			continue
		}
		for _, name := range MatchNames(pattern, names) {
			matches = append(matches, filepath.Join(root, name))
		}
	}

	r := Classify(matches)
	r.Skipped = skipped.ErrorOrNil()
	logger.G(ctx).WithField("pattern", pattern).
		WithField("result", r.Kind.String()).
		WithField("candidates", len(r.Candidates)).
		Debug("local skill lookup finished")
	return r, nil
}

// ChildDirs lists the names of the directories directly under root, sorted.
// Symlinks are followed so a linked skill directory still counts.
func ChildDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", root)
	}

	var names []string
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
