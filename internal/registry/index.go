package registry

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillhub-labs/skillhub/internal/catalog"
	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/manifest"
)

// Entry is a published skill as found in the mirror.
type Entry struct {
	Name string
	Path string
	// Descriptor is nil when the entry carries no readable skill.json.
	Descriptor *manifest.Descriptor
}

// Entries lists the registry entry names, sorted. Hidden directories such
// as in-progress staging copies are not entries.
func (m *Mirror) Entries() ([]string, error) {
	names, err := catalog.ChildDirs(m.PackagesPath())
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil
		}
		return nil, err
	}

	entries := names[:0]
	for _, n := range names {
		if strings.HasPrefix(n, ".") {
			continue
		}
		entries = append(entries, n)
	}
	return entries, nil
}

// Resolve fuzzy-matches pattern against the entry names. Candidates in the
// result are entry names, not paths.
func (m *Mirror) Resolve(pattern string) (*catalog.Result, error) {
	if err := catalog.ValidatePattern(pattern); err != nil {
		return nil, err
	}
	names, err := m.Entries()
	if err != nil {
		return nil, err
	}
	return catalog.Classify(catalog.MatchNames(pattern, names)), nil
}

// EntryInfo reads the entry's descriptor when one is present.
func (m *Mirror) EntryInfo(name string) (*Entry, error) {
	path := m.EntryPath(name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.NotFound("registry entry %s does not exist", name)
		}
		return nil, errors.Wrapf(err, "reading entry %s", name)
	}
	if !info.IsDir() {
		return nil, errdefs.NotFound("registry entry %s is not a directory", name)
	}

	e := &Entry{Name: name, Path: path}
	if ok, _ := manifest.Exists(path); ok {
		if d, err := manifest.Load(path); err == nil {
			e.Descriptor = d
		}
	}
	return e, nil
}

// List returns every entry whose name matches pattern, or every entry when
// pattern is empty.
func (m *Mirror) List(pattern string) ([]*Entry, error) {
	names, err := m.Entries()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(pattern) != "" {
		names = catalog.MatchNames(pattern, names)
	}

	entries := make([]*Entry, 0, len(names))
	for _, n := range names {
		e, err := m.EntryInfo(n)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
