package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions compares two descriptor versions.
// Returns -1 if a < b, 0 if equal, 1 if a > b. A leading "v" is tolerated.
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// IsNewer reports whether candidate is a higher version than current.
// Unparsable versions are never newer.
func IsNewer(candidate, current string) bool {
	cmp, err := CompareVersions(candidate, current)
	return err == nil && cmp == 1
}

func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
