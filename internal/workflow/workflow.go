// Package workflow implements the publish and install operations on top of
// the local catalog scanner and the registry mirror.
package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/skillhub-labs/skillhub/internal/catalog"
	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/logger"
	"github.com/skillhub-labs/skillhub/internal/manifest"
	"github.com/skillhub-labs/skillhub/internal/registry"
)

// Scopes used in ambiguity and not-found reports.
const (
	ScopeLocal    = "local"
	ScopeRegistry = "registry"
)

// PublishOptions configures Publish.
type PublishOptions struct {
	Description string
	SearchPaths []string
	Mirror      *registry.Mirror
	// Out receives progress lines; nil discards them.
	Out io.Writer
}

// PublishResult describes a successful publish.
type PublishResult struct {
	ID                string
	Version           string
	SourceDir         string
	CreatedDescriptor bool
	// PreviousVersion is the version the registry held before, if any.
	PreviousVersion string
}

// CommitMessage is the message recorded for every publish.
func CommitMessage(id, version string) string {
	return fmt.Sprintf("Auto publish: %s v%s", id, version)
}

// Publish finds the local skill matching opts.Description and publishes it
// to the registry. Nothing reaches the registry unless the local match is
// unique and its descriptor is valid.
func Publish(ctx context.Context, opts PublishOptions) (*PublishResult, error) {
	out := writerOrDiscard(opts.Out)
	log := logger.G(ctx).WithField("description", opts.Description)

	found, err := catalog.FindLocal(ctx, opts.Description, opts.SearchPaths)
	if err != nil {
		return nil, err
	}
	if err := found.Err(ScopeLocal, opts.Description); err != nil {
		return nil, err
	}
	src, _ := found.Unique()
	fmt.Fprintf(out, "Found skill at %s\n", src)

	d, created, err := manifest.Ensure(src)
	if err != nil {
		return nil, err
	}
	if created {
		fmt.Fprintf(out, "Created default %s in %s\n", manifest.FileName, src)
	}

	check, err := manifest.ValidateFile(manifest.Path(src))
	if err != nil {
		return nil, errdefs.UserInput("%s: %v", manifest.Path(src), err)
	}
	if !check.Valid {
		return nil, errdefs.UserInput("invalid %s: %s", manifest.Path(src), check.Summary())
	}

	id := d.ID()
	result := &PublishResult{
		ID:                id,
		Version:           d.Version,
		SourceDir:         src,
		CreatedDescriptor: created,
	}
	log = log.WithField("id", id).WithField("version", d.Version)

	fmt.Fprintln(out, "Syncing registry...")
	if err := opts.Mirror.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	if prev, err := opts.Mirror.EntryInfo(id); err == nil && prev.Descriptor != nil {
		result.PreviousVersion = prev.Descriptor.Version
		if manifest.IsNewer(prev.Descriptor.Version, d.Version) {
			log.WithField("registry_version", prev.Descriptor.Version).Warn("registry holds a newer version")
			fmt.Fprintf(out, "Warning: registry has %s v%s, replacing it with older v%s\n",
				id, prev.Descriptor.Version, d.Version)
		}
	}

	if err := opts.Mirror.Stage(ctx, id, src); err != nil {
		return nil, errors.Wrapf(err, "staging %s", id)
	}

	fmt.Fprintf(out, "Publishing %s...\n", id)
	if err := opts.Mirror.Publish(ctx, id, CommitMessage(id, d.Version)); err != nil {
		return nil, err
	}

	log.Info("published")
	return result, nil
}

// InstallOptions configures Install.
type InstallOptions struct {
	Description string
	Mirror      *registry.Mirror
	// DestRoot is the directory the skill is installed into.
	DestRoot string
	Out      io.Writer
}

// InstallResult describes a successful install.
type InstallResult struct {
	Name    string
	Path    string
	Version string
	// Replaced reports that an existing install was overwritten.
	Replaced bool
}

// Install copies the registry entry matching opts.Description into
// opts.DestRoot. The copy is atomic: a failure leaves no partial install.
func Install(ctx context.Context, opts InstallOptions) (*InstallResult, error) {
	out := writerOrDiscard(opts.Out)

	if err := catalog.ValidatePattern(opts.Description); err != nil {
		return nil, err
	}
	if opts.DestRoot == "" {
		return nil, errdefs.UserInput("no install destination configured")
	}

	fmt.Fprintln(out, "Syncing registry...")
	if err := opts.Mirror.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	found, err := opts.Mirror.Resolve(opts.Description)
	if err != nil {
		return nil, err
	}
	if err := found.Err(ScopeRegistry, opts.Description); err != nil {
		return nil, err
	}
	name, _ := found.Unique()

	entry, err := opts.Mirror.EntryInfo(name)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(opts.DestRoot, name)
	result := &InstallResult{Name: name, Path: dest}
	if entry.Descriptor != nil {
		result.Version = entry.Descriptor.Version
	}
	if _, err := os.Stat(dest); err == nil {
		result.Replaced = true
	}

	fmt.Fprintf(out, "Installing %s to %s\n", name, dest)
	if err := registry.ReplaceDir(entry.Path, dest); err != nil {
		return nil, errors.Wrapf(err, "installing %s", name)
	}

	logger.G(ctx).WithField("skill", name).WithField("dest", dest).Info("installed")
	return result, nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
