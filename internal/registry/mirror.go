package registry

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/logger"
	"github.com/skillhub-labs/skillhub/internal/vcs"
)

const (
	// PackagesDir holds one directory per published skill id.
	PackagesDir = "packages"

	// freshnessFile lives inside .git so it is never committed.
	freshnessFile = "skillhub-synced"

	tmpSuffix = ".tmp"

	pushAttempts = 2
)

// Mirror is the local working copy of the remote registry.
type Mirror struct {
	Dir       string
	URL       string
	Branch    string
	Transport vcs.Transport

	// RetryDelay is the pause between a rejected push and the rebase that
	// precedes the single retry.
	RetryDelay time.Duration
}

// New returns a mirror at dir tracking branch of url.
func New(dir, url, branch string, transport vcs.Transport) *Mirror {
	return &Mirror{
		Dir:       dir,
		URL:       url,
		Branch:    branch,
		Transport: transport,
	}
}

// PackagesPath returns the directory holding published skills.
func (m *Mirror) PackagesPath() string {
	return filepath.Join(m.Dir, PackagesDir)
}

// EntryPath returns the directory of the registry entry with the given id.
func (m *Mirror) EntryPath(id string) string {
	return filepath.Join(m.PackagesPath(), id)
}

// EnsureFresh brings the mirror up to date with the remote, creating it on
// first use. On success the mirror is a clean repository tracking Branch
// with a packages directory.
func (m *Mirror) EnsureFresh(ctx context.Context) error {
	log := logger.G(ctx).WithField("mirror", m.Dir)

	state, err := m.Transport.State(m.Dir)
	if err != nil {
		return errors.Wrap(err, "inspecting mirror")
	}
	log.WithField("state", state.String()).Debug("mirror state")

	switch state {
	case vcs.Invalid:
		log.Warn("mirror directory is not a repository, cloning it again")
		if err := os.RemoveAll(m.Dir); err != nil {
			return errors.Wrapf(err, "removing invalid mirror %s", m.Dir)
		}
		if err := m.clone(ctx); err != nil {
			return err
		}
	case vcs.Absent:
		if err := m.clone(ctx); err != nil {
			return err
		}
	case vcs.Conflicted:
		log.Warn("mirror has an interrupted rebase, aborting it")
		if err := m.Transport.AbortRebase(ctx, m.Dir); err != nil {
			return errors.Wrapf(errdefs.ErrSyncConflict,
				"mirror %s has an interrupted rebase that could not be aborted: %v", m.Dir, err)
		}
		if err := m.pull(ctx); err != nil {
			return err
		}
	default:
		if err := m.pull(ctx); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(m.PackagesPath(), 0755); err != nil {
		return errors.Wrap(err, "creating packages directory")
	}
	m.sweepStaging(ctx)
	m.writeFreshnessMarker()
	return nil
}

// clone creates the mirror in a temporary sibling and renames it into
// place, so a failed clone leaves nothing at Dir.
func (m *Mirror) clone(ctx context.Context) error {
	if m.URL == "" {
		return errors.Wrap(errdefs.ErrRegistryUnreachable, "registry.url is not configured")
	}

	tmpDir := m.Dir + tmpSuffix
	_ = os.RemoveAll(tmpDir)

	logger.G(ctx).WithField("url", m.URL).Info("cloning registry")
	if err := m.Transport.Clone(ctx, m.URL, tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return errors.Wrapf(errdefs.ErrRegistryUnreachable, "cloning %s: %v", m.URL, err)
	}
	if err := os.Rename(tmpDir, m.Dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return errors.Wrap(err, "finalizing registry clone")
	}
	return nil
}

// pull rebases the mirror onto the remote branch. A failed rebase is
// aborted so the mirror is back where it started; a failure that left no
// rebase behind is treated as the remote being unreachable.
func (m *Mirror) pull(ctx context.Context) error {
	err := m.Transport.PullRebase(ctx, m.Dir, m.Branch)
	if err == nil {
		return nil
	}

	state, stateErr := m.Transport.State(m.Dir)
	if stateErr == nil && state != vcs.Conflicted {
		return errors.Wrapf(errdefs.ErrRegistryUnreachable, "syncing with origin/%s: %v", m.Branch, err)
	}

	if abortErr := m.Transport.AbortRebase(ctx, m.Dir); abortErr != nil {
		return errors.Wrapf(errdefs.ErrSyncConflict,
			"rebasing onto origin/%s failed and the mirror could not be restored (%v); resolve %s by hand: %v",
			m.Branch, abortErr, m.Dir, err)
	}
	return errors.Wrapf(errdefs.ErrSyncConflict,
		"rebasing onto origin/%s failed, mirror restored to its previous state: %v", m.Branch, err)
}

// Stage copies sourceDir into the mirror as the entry for id, replacing
// any previous version of that entry.
func (m *Mirror) Stage(ctx context.Context, id, sourceDir string) error {
	if err := validateID(id); err != nil {
		return err
	}
	dst := m.EntryPath(id)
	logger.G(ctx).WithField("id", id).WithField("source", sourceDir).Debug("staging skill into mirror")
	return ReplaceDir(sourceDir, dst)
}

// Publish commits every mirror change and pushes it. A rejected push gets
// exactly one recovery cycle: rebase onto the remote, then push again.
// On failure the unpushed work is discarded and the mirror matches the
// remote again.
func (m *Mirror) Publish(ctx context.Context, id, message string) error {
	err := m.publish(ctx, id, message)
	if err != nil {
		m.discardLocal(ctx)
	}
	return err
}

func (m *Mirror) publish(ctx context.Context, id, message string) error {
	log := logger.G(ctx).WithField("id", id)

	if err := m.Transport.Commit(ctx, m.Dir, message); err != nil {
		return errors.Wrap(err, "committing to mirror")
	}
	if err := m.Transport.RenameBranch(ctx, m.Dir, m.Branch); err != nil {
		return errors.Wrapf(err, "switching mirror to branch %s", m.Branch)
	}

	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			if attempt > 1 {
				log.Warn("push rejected, rebasing and retrying once")
				if err := m.Transport.PullRebase(ctx, m.Dir, m.Branch); err != nil {
					m.abortIfConflicted(ctx)
					return retry.Unrecoverable(errors.Wrapf(errdefs.ErrPublishFailed,
						"push of %s was rejected and rebasing onto origin/%s failed: %v", id, m.Branch, err))
				}
			}
			return m.Transport.Push(ctx, m.Dir, m.Branch)
		},
		retry.Attempts(pushAttempts),
		retry.Delay(m.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err == nil {
		log.WithField("attempts", attempt).Debug("push accepted")
		return nil
	}
	if errors.Is(err, errdefs.ErrPublishFailed) {
		return err
	}
	if attempt < pushAttempts {
		return errors.Wrapf(err, "pushing %s", id)
	}
	return errors.Wrapf(errdefs.ErrPublishFailed,
		"pushing %s failed after rebase and retry: %v", id, err)
}

// discardLocal resets the mirror to the remote branch. If that fails the
// mirror is removed and the next EnsureFresh clones it again.
func (m *Mirror) discardLocal(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	log := logger.G(ctx).WithField("mirror", m.Dir)

	m.abortIfConflicted(ctx)
	err := m.Transport.ResetToRemote(ctx, m.Dir, m.Branch)
	if err == nil {
		log.Info("discarded unpublished changes from mirror")
		return
	}
	log.WithError(err).Warn("could not reset mirror to the remote, removing it")
	if err := os.RemoveAll(m.Dir); err != nil {
		log.WithError(err).Error("could not remove mirror")
	}
}

func (m *Mirror) abortIfConflicted(ctx context.Context) {
	state, err := m.Transport.State(m.Dir)
	if err != nil || state != vcs.Conflicted {
		return
	}
	if err := m.Transport.AbortRebase(ctx, m.Dir); err != nil {
		logger.G(ctx).WithError(err).Warn("could not abort rebase in mirror")
	}
}

// sweepStaging removes staging copies left by an interrupted Stage, which
// would otherwise be committed by the next publish of any skill.
func (m *Mirror) sweepStaging(ctx context.Context) {
	leftovers, err := filepath.Glob(filepath.Join(m.PackagesPath(), ".*"+stagingSuffix))
	if err != nil {
		return
	}
	for _, dir := range leftovers {
		logger.G(ctx).WithField("path", dir).Warn("removing leftover staging directory")
		if err := os.RemoveAll(dir); err != nil {
			logger.G(ctx).WithError(err).WithField("path", dir).Warn("could not remove staging directory")
		}
	}
}

// LastSynced returns when EnsureFresh last succeeded, or the zero time.
func (m *Mirror) LastSynced() time.Time {
	data, err := os.ReadFile(m.freshnessPath())
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

func (m *Mirror) freshnessPath() string {
	return filepath.Join(m.Dir, ".git", freshnessFile)
}

func (m *Mirror) writeFreshnessMarker() {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(m.freshnessPath(), []byte(ts), 0644)
}

// validateID rejects ids that would escape packages/ or hide from listings.
func validateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return errdefs.UserInput("skill id is empty")
	case strings.ContainsAny(id, `/\`):
		return errdefs.UserInput("skill id %q must not contain path separators", id)
	case strings.HasPrefix(id, "."):
		return errdefs.UserInput("skill id %q must not start with a dot", id)
	}
	return nil
}
