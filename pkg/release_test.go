package tagbump

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcomnes/tagbump/pkg/execcmd"
)

// fakeRunner records commands and fails those containing a key of fail.
type fakeRunner struct {
	commands []string
	fail     map[string]int
}

func (f *fakeRunner) RunInteractive(cmd string, ignoreFailure bool) (execcmd.Result, error) {
	f.commands = append(f.commands, cmd)
	for substr, status := range f.fail {
		if strings.Contains(cmd, substr) {
			res := execcmd.Result{Command: cmd, ExitStatus: status}
			if ignoreFailure {
				return res, nil
			}
			return res, &execcmd.CommandError{Command: cmd, ExitStatus: status}
		}
	}
	return execcmd.Result{Command: cmd}, nil
}

type fakeLister struct {
	remotes []string
	err     error
	calls   int
}

func (f *fakeLister) Remotes() ([]string, error) {
	f.calls++
	return f.remotes, f.err
}

func versionFixture(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, DefaultVersionFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestReleaseRun(t *testing.T) {
	dir, path := versionFixture(t, "2.0.9\n")
	runner := &fakeRunner{}
	lister := &fakeLister{remotes: []string{"origin", "upstream"}}

	meta, err := NewRelease(Options{Dir: dir}, runner, lister).Run()
	require.NoError(t, err)

	assert.Equal(t, "2.0.10", readFile(t, path))
	assert.Equal(t, []string{
		"git tag -a 2.0.10 -m 'New Release 2.0.10'",
		"git push origin --tag",
		"git push upstream --tag",
	}, runner.commands)

	assert.Equal(t, "2.0.9", meta.OldVersion)
	assert.Equal(t, "2.0.10", meta.NewVersion)
	assert.Equal(t, "2.0.10", meta.Tag)
	assert.Equal(t, []string{"origin", "upstream"}, meta.Remotes)
	assert.Equal(t, []string{"origin", "upstream"}, meta.Pushed)
	assert.Equal(t, []string{path}, meta.UpdatedFiles)
	assert.Equal(t, runner.commands, meta.Commands)
}

func TestReleaseNoRemotes(t *testing.T) {
	dir, _ := versionFixture(t, "0.1.0")
	runner := &fakeRunner{}

	meta, err := NewRelease(Options{Dir: dir}, runner, &fakeLister{}).Run()
	require.NoError(t, err)
	assert.Len(t, runner.commands, 1)
	assert.Empty(t, meta.Pushed)
}

func TestReleaseVersionFileMissing(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	lister := &fakeLister{remotes: []string{"origin"}}

	_, err := NewRelease(Options{Dir: dir}, runner, lister).Run()
	assert.ErrorIs(t, err, ErrVersionFileMissing)
	assert.Equal(t, ExitVersionMissing, ExitCode(err))
	assert.NoFileExists(t, filepath.Join(dir, DefaultVersionFile))
	assert.Empty(t, runner.commands)
	assert.Zero(t, lister.calls)
}

func TestReleaseVersionFormat(t *testing.T) {
	dir, path := versionFixture(t, "1.2")
	runner := &fakeRunner{}
	lister := &fakeLister{remotes: []string{"origin"}}

	_, err := NewRelease(Options{Dir: dir}, runner, lister).Run()
	assert.ErrorIs(t, err, ErrVersionFormat)
	assert.Equal(t, ExitVersionFormat, ExitCode(err))
	assert.Equal(t, "1.2", readFile(t, path), "file must not be written")
	assert.Empty(t, runner.commands)
}

func TestReleaseCalendarVersion(t *testing.T) {
	dir, path := versionFixture(t, "2024.01.5")
	runner := &fakeRunner{}
	var trace bytes.Buffer

	meta, err := NewRelease(Options{Dir: dir, Logger: log.New(&trace, "", 0)}, runner, &fakeLister{remotes: []string{"origin"}}).Run()
	require.NoError(t, err)
	assert.Equal(t, "2024.01.6", readFile(t, path))
	assert.Equal(t, "2024.01.6", meta.Tag)
	assert.Equal(t, "git tag -a 2024.01.6 -m 'New Release 2024.01.6'", runner.commands[0])
	assert.Contains(t, trace.String(), "warning: 2024.01.6 is not a canonical semantic version")
}

func TestReleasePrintsVersionBeforeTagging(t *testing.T) {
	dir, _ := versionFixture(t, "3.1.4")
	runner := &fakeRunner{fail: map[string]int{" tag ": 128}}
	var info bytes.Buffer

	_, err := NewRelease(Options{Dir: dir, Info: log.New(&info, "", 0)}, runner, &fakeLister{}).Run()
	assert.ErrorIs(t, err, ErrTagCreation)
	assert.Equal(t, "3.1.5\n", info.String())
}

func TestReleaseTagFailure(t *testing.T) {
	dir, path := versionFixture(t, "1.0.0")
	runner := &fakeRunner{fail: map[string]int{" tag ": 128}}
	lister := &fakeLister{remotes: []string{"origin"}}

	_, err := NewRelease(Options{Dir: dir}, runner, lister).Run()
	assert.ErrorIs(t, err, ErrTagCreation)
	assert.ErrorIs(t, err, execcmd.ErrCommandFailed)
	assert.Equal(t, ExitTagCreation, ExitCode(err))

	// The version file is already rewritten; it is not rolled back.
	assert.Equal(t, "1.0.1", readFile(t, path))
	assert.Len(t, runner.commands, 1)
	assert.Zero(t, lister.calls)
}

func TestReleaseRemoteEnumerationFailure(t *testing.T) {
	dir, _ := versionFixture(t, "1.0.0")
	runner := &fakeRunner{}
	lister := &fakeLister{err: errors.New("not a git repository")}

	_, err := NewRelease(Options{Dir: dir}, runner, lister).Run()
	assert.ErrorIs(t, err, ErrRemoteEnumeration)
	assert.Equal(t, ExitRemoteList, ExitCode(err))
	assert.Len(t, runner.commands, 1, "only the tag command runs")
}

func TestReleasePushFailureIsBestEffort(t *testing.T) {
	dir, _ := versionFixture(t, "1.0.0")
	runner := &fakeRunner{fail: map[string]int{"push origin": 1, "push mirror": 2}}
	lister := &fakeLister{remotes: []string{"origin", "upstream", "mirror"}}

	meta, err := NewRelease(Options{Dir: dir}, runner, lister).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPush)
	assert.Equal(t, ExitPush, ExitCode(err))

	assert.Equal(t, []string{
		"git tag -a 1.0.1 -m 'New Release 1.0.1'",
		"git push origin --tag",
		"git push upstream --tag",
		"git push mirror --tag",
	}, runner.commands, "every remote is attempted")
	assert.Equal(t, []string{"upstream"}, meta.Pushed)

	// The first failure is reported first.
	msg := err.Error()
	assert.Less(t, strings.Index(msg, "remote origin"), strings.Index(msg, "remote mirror"))
	var cmdErr *execcmd.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 1, cmdErr.ExitStatus)
}

func TestReleaseDebugPrintsInsteadOfRunning(t *testing.T) {
	dir, path := versionFixture(t, "2.0.9")
	var out bytes.Buffer
	// A git binary that cannot exist proves nothing is spawned.
	executor := execcmd.New(execcmd.WithExecute(false), execcmd.WithAccumulate(true))
	lister := &fakeLister{remotes: []string{"origin"}}

	opts := Options{Dir: dir, Debug: true, Out: &out, Git: filepath.Join(dir, "no-such-git")}
	meta, err := NewRelease(opts, executor, lister).Run()
	require.NoError(t, err)

	assert.Equal(t, "2.0.10", readFile(t, path))
	assert.Contains(t, out.String(), "Debug: "+meta.Commands[0])
	assert.Contains(t, out.String(), "Debug: "+meta.Commands[1])
	assert.Equal(t, meta.Commands, executor.Commands())
	_, ran := executor.LastExitStatus()
	assert.False(t, ran)
	assert.Equal(t, 1, lister.calls, "remotes are still listed in debug mode")
}

func TestReleaseDryRun(t *testing.T) {
	dir, path := versionFixture(t, "3.3.3")
	bump := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(bump, []byte(`{"version": "3.3.3"}`), 0644))
	runner := &fakeRunner{}
	lister := &fakeLister{remotes: []string{"origin"}}

	opts := Options{Dir: dir, DryRun: true, BumpFiles: []string{"package.json"}}
	meta, err := NewRelease(opts, runner, lister).Run()
	require.NoError(t, err)

	assert.Equal(t, "3.3.3", readFile(t, path))
	assert.Equal(t, `{"version": "3.3.3"}`, readFile(t, bump))
	assert.Empty(t, runner.commands)
	assert.Equal(t, "3.3.4", meta.NewVersion)
	assert.Equal(t, []string{path, bump}, meta.UpdatedFiles)
	assert.Equal(t, []string{
		"git tag -a 3.3.4 -m 'New Release 3.3.4'",
		"git push origin --tag",
	}, meta.Commands)
}

func TestReleaseBumpFiles(t *testing.T) {
	dir, _ := versionFixture(t, "1.9.9")
	bump := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(bump, []byte("[package]\nversion = \"1.9.9\"\n"), 0644))
	runner := &fakeRunner{}

	opts := Options{Dir: dir, BumpFiles: []string{"Cargo.toml"}}
	meta, err := NewRelease(opts, runner, &fakeLister{}).Run()
	require.NoError(t, err)
	assert.Equal(t, "[package]\nversion = \"1.9.10\"\n", readFile(t, bump))
	assert.Contains(t, meta.UpdatedFiles, bump)

	opts.BumpFiles = []string{"missing.json"}
	_, err = NewRelease(opts, runner, &fakeLister{}).Run()
	assert.ErrorIs(t, err, ErrBumpFile)
	assert.Equal(t, ExitBumpFile, ExitCode(err))
}

func TestReleaseCustomMessageAndGit(t *testing.T) {
	dir, _ := versionFixture(t, "0.0.1")
	runner := &fakeRunner{}

	opts := Options{Dir: dir, Git: "/opt/my git/git", TagMessage: "It's {version}"}
	_, err := NewRelease(opts, runner, &fakeLister{remotes: []string{"origin"}}).Run()
	require.NoError(t, err)
	assert.Equal(t, []string{
		`'/opt/my git/git' tag -a 0.0.2 -m 'It'\''s 0.0.2'`,
		`'/opt/my git/git' push origin --tag`,
	}, runner.commands)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, ExitOK},
		{errors.New("other"), ExitFailure},
		{ErrVersionFileMissing, ExitVersionMissing},
		{ErrVersionWrite, ExitVersionWrite},
		{execcmd.ErrEmptyCommand, ExitEmptyCommand},
		{&execcmd.CommandError{Command: "x", ExitStatus: 1}, ExitCommandFailed},
	}
	for _, tc := range tests {
		if got := ExitCode(tc.err); got != tc.code {
			t.Errorf("ExitCode(%v) = %d, expected %d", tc.err, got, tc.code)
		}
	}
}

func TestNewRemoteLister(t *testing.T) {
	l, err := newRemoteLister(Options{}.withDefaults(), nil)
	require.NoError(t, err)
	assert.IsType(t, &CLIRemoteLister{}, l)

	l, err = newRemoteLister(Options{RemoteBackend: RemoteBackendGoGit}.withDefaults(), nil)
	require.NoError(t, err)
	assert.IsType(t, GoGitRemoteLister{}, l)

	_, err = newRemoteLister(Options{RemoteBackend: "svn"}.withDefaults(), nil)
	assert.Error(t, err)
}
