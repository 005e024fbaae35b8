package registry

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// excludedNames are never copied into or out of the registry, at any depth.
var excludedNames = map[string]bool{
	".registry_cache": true,
	".git":            true,
	".hg":             true,
	".svn":            true,
	"node_modules":    true,
	"__pycache__":     true,
	".venv":           true,
	".DS_Store":       true,
}

const stagingSuffix = ".staging"

// ReplaceDir makes dst an exact copy of src minus excluded entries. The
// copy is written to a hidden sibling of dst first and renamed into place,
// so a failed copy leaves any previous dst untouched and no partial dst
// behind.
func ReplaceDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "reading source %s", src)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", src)
	}

	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", parent)
	}

	staging := StagingPath(dst)
	// Leftover from an interrupted run.
	_ = os.RemoveAll(staging)

	if err := copyDir(src, staging); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, "copying %s to %s", src, dst)
	}

	if err := os.RemoveAll(dst); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, "removing existing %s", dst)
	}
	if err := os.Rename(staging, dst); err != nil {
		_ = os.RemoveAll(staging)
		return errors.Wrapf(err, "finalizing %s", dst)
	}
	return nil
}

// StagingPath returns the hidden sibling ReplaceDir writes into.
func StagingPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+stagingSuffix)
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if shouldExclude(entry.Name()) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Symlinks and special files are skipped.
	}

	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode().Perm())
}

func shouldExclude(name string) bool {
	return excludedNames[name]
}
