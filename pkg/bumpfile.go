package tagbump

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// versionPattern locates a version string inside a line. Group 1 is the
// version, optionally "v"-prefixed.
type versionPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// mainVersionPatterns match declarations that are usually a project's own
// version rather than a dependency's. They are tried before anything else.
var mainVersionPatterns = []versionPattern{
	{"root JSON version field", regexp.MustCompile(`^\s{0,2}"version"\s*:\s*"(v?\d+\.\d+\.\d+)"`)},
	{"root TOML version field", regexp.MustCompile(`^version\s*=\s*"(v?\d+\.\d+\.\d+)"`)},
	{"VERSION assignment", regexp.MustCompile(`(?i)^\s*(?:export\s+)?VERSION\s*(?::=|\?=|=|:)\s*["']?(v?\d+\.\d+\.\d+)`)},
}

// anyVersionPattern is the fallback: the first bare x.y.z in the file.
var anyVersionPattern = versionPattern{"first version", regexp.MustCompile(`(?:^|[^\w.])(v?\d+\.\d+\.\d+)(?:[^\w.]|$)`)}

// versionMatch is a located version string.
type versionMatch struct {
	Line    int // 1-based
	Start   int // byte offsets of the version within the line
	End     int
	Version string
	Pattern string
}

// findMainVersion returns the most likely primary version in content, or
// false when the content has no version string at all.
func findMainVersion(content string) (versionMatch, bool) {
	lines := strings.Split(content, "\n")
	for _, vp := range mainVersionPatterns {
		if m, ok := firstMatch(lines, vp); ok {
			return m, true
		}
	}
	return firstMatch(lines, anyVersionPattern)
}

func firstMatch(lines []string, vp versionPattern) (versionMatch, bool) {
	for i, line := range lines {
		loc := vp.Pattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		return versionMatch{
			Line:    i + 1,
			Start:   loc[2],
			End:     loc[3],
			Version: line[loc[2]:loc[3]],
			Pattern: vp.Name,
		}, true
	}
	return versionMatch{}, false
}

// replaceVersion swaps the matched version for v, keeping a "v" prefix if the
// matched text had one.
func replaceVersion(content string, m versionMatch, v Version) string {
	lines := strings.Split(content, "\n")
	line := lines[m.Line-1]
	repl := v.String()
	if strings.HasPrefix(m.Version, "v") {
		repl = "v" + repl
	}
	lines[m.Line-1] = line[:m.Start] + repl + line[m.End:]
	return strings.Join(lines, "\n")
}

// BumpVersionInFile rewrites the main version string in path to v and
// returns the version it replaced.
func BumpVersionInFile(path string, v Version) (string, error) {
	m, content, err := scanBumpFile(path)
	if err != nil {
		return "", err
	}
	mode := fs.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(replaceVersion(content, m, v)), mode); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBumpFile, path, err)
	}
	return m.Version, nil
}

// ScanVersionInFile reports the version BumpVersionInFile would replace,
// without modifying the file.
func ScanVersionInFile(path string) (string, error) {
	m, _, err := scanBumpFile(path)
	if err != nil {
		return "", err
	}
	return m.Version, nil
}

func scanBumpFile(path string) (versionMatch, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return versionMatch{}, "", fmt.Errorf("%w: %s does not exist", ErrBumpFile, path)
		}
		return versionMatch{}, "", fmt.Errorf("%w: reading %s: %w", ErrBumpFile, path, err)
	}
	content := string(data)
	m, ok := findMainVersion(content)
	if !ok {
		return versionMatch{}, "", fmt.Errorf("%w: no version found in %s", ErrBumpFile, path)
	}
	return m, content, nil
}
