// Package version checks the format versions of host-supplied data files.
package version

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// TablesFormat is the lookup-tables file format this build writes and documents.
const TablesFormat = "1.0.0"

// tablesConstraint accepts every tables file this build can read.
const tablesConstraint = "^1"

var (
	// ErrInvalidVersion means a format_version is not a semantic version.
	ErrInvalidVersion = errors.New("invalid format version")
	// ErrUnsupportedVersion means a format_version is outside the supported range.
	ErrUnsupportedVersion = errors.New("unsupported format version")
)

// CheckTables reports whether a tables file with format version v can be read.
// A missing version is treated as TablesFormat.
func CheckTables(v string) error {
	if v == "" {
		v = TablesFormat
	}
	return Check(v, tablesConstraint)
}

// Check reports whether version v satisfies constraint c.
func Check(v, c string) error {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidVersion, v, err)
	}
	cs, err := semver.NewConstraint(c)
	if err != nil {
		return fmt.Errorf("constraint %q: %w", c, err)
	}
	if !cs.Check(sv) {
		return fmt.Errorf("%w %s, want %s", ErrUnsupportedVersion, sv, c)
	}
	return nil
}

// Compare returns -1, 0, or 1 based on comparing a vs b.
// Semantic versions sort before anything else; the rest compare as strings.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	// Semver wins over non-semver in sorting
	if errA == nil {
		return -1
	}
	if errB == nil {
		return 1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// NewerTables reports whether a tables file was written for a later minor or patch
// format than this build knows. Such files load, but unknown keys are ignored.
func NewerTables(v string) bool {
	return v != "" && Compare(v, TablesFormat) > 0
}
