package tagbump

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a major.minor.patch release number. Components are kept as the
// decimal text read from the version file, so leading zeros in major and
// minor survive a bump and no component size is too large.
type Version struct {
	Major string
	Minor string
	Patch string
}

// String formats v as "major.minor.patch".
func (v Version) String() string {
	return v.Major + "." + v.Minor + "." + v.Patch
}

// BumpPatch returns v with the patch component incremented. Major and minor
// never change; there is no rollover. The new patch is written without
// leading zeros.
func (v Version) BumpPatch() Version {
	n, ok := new(big.Int).SetString(v.Patch, 10)
	if !ok {
		n = new(big.Int)
	}
	v.Patch = n.Add(n, big.NewInt(1)).String()
	return v
}

// Canonical reports whether v is also a canonical semantic version, that is
// one without leading zeros in any component.
func (v Version) Canonical() bool {
	sv := "v" + v.String()
	return semver.IsValid(sv) && semver.Canonical(sv) == sv
}

// ParseVersion parses "major.minor.patch". Surrounding whitespace is ignored.
// Exactly three components of decimal digits are accepted; signs, a "v"
// prefix and prerelease or build suffixes are not. Leading zeros are allowed
// so calendar versions such as 2024.01.5 work.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q must have exactly three dot-separated components", ErrVersionFormat, raw)
	}
	for _, p := range parts {
		if !isDigits(p) {
			return Version{}, fmt.Errorf("%w: component %q of %q is not a non-negative integer", ErrVersionFormat, p, raw)
		}
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ReadVersionFile reads and parses the version stored at path. A missing
// file is reported as ErrVersionFileMissing and is never created.
func ReadVersionFile(path string) (Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Version{}, fmt.Errorf("%w: %s", ErrVersionFileMissing, path)
		}
		return Version{}, fmt.Errorf("failed to read version file %s: %w", path, err)
	}
	v, err := ParseVersion(string(data))
	if err != nil {
		return Version{}, fmt.Errorf("version file %s: %w", path, err)
	}
	return v, nil
}

// WriteVersionFile replaces the contents of path with v. The file mode of an
// existing file is kept; no backup is made.
func WriteVersionFile(path string, v Version) error {
	mode := fs.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(v.String()), mode); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrVersionWrite, path, err)
	}
	return nil
}
