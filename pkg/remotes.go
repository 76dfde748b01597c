package tagbump

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/bcomnes/tagbump/pkg/execcmd"
)

// Remote backends selectable through Options.RemoteBackend.
const (
	RemoteBackendCLI   = "cli"
	RemoteBackendGoGit = "go-git"
)

// RemoteLister enumerates the remotes a tag is pushed to.
type RemoteLister interface {
	Remotes() ([]string, error)
}

// CLIRemoteLister lists remotes with "git remote". It always executes, even
// when tag and push commands are only being printed.
type CLIRemoteLister struct {
	git  string
	exec *execcmd.Executor
}

// NewCLIRemoteLister runs gitBin inside dir. logger may be nil.
func NewCLIRemoteLister(gitBin, dir string, logger *log.Logger) *CLIRemoteLister {
	return &CLIRemoteLister{
		git:  gitBin,
		exec: execcmd.New(execcmd.WithDir(dir), execcmd.WithLogger(logger)),
	}
}

// Remotes returns remote names in the order git prints them.
func (l *CLIRemoteLister) Remotes() ([]string, error) {
	res, err := l.exec.RunCaptured(execcmd.Quote(l.git)+" remote", false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteEnumeration, err)
	}
	var remotes []string
	for _, line := range strings.Split(res.Output, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			remotes = append(remotes, name)
		}
	}
	return remotes, nil
}

// GoGitRemoteLister reads remotes from the repository config with go-git,
// without spawning git.
type GoGitRemoteLister struct {
	Dir string
}

// Remotes returns remote names sorted alphabetically, matching "git remote".
func (l GoGitRemoteLister) Remotes() ([]string, error) {
	repo, err := git.PlainOpenWithOptions(l.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: opening repository at %s: %w", ErrRemoteEnumeration, l.Dir, err)
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteEnumeration, err)
	}
	names := make([]string, 0, len(remotes))
	for _, r := range remotes {
		names = append(names, r.Config().Name)
	}
	sort.Strings(names)
	return names, nil
}

// newRemoteLister picks the lister for opts.RemoteBackend.
func newRemoteLister(opts Options, logger *log.Logger) (RemoteLister, error) {
	switch opts.RemoteBackend {
	case "", RemoteBackendCLI:
		return NewCLIRemoteLister(opts.Git, opts.Dir, logger), nil
	case RemoteBackendGoGit:
		return GoGitRemoteLister{Dir: opts.Dir}, nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q (want %q or %q)", opts.RemoteBackend, RemoteBackendCLI, RemoteBackendGoGit)
	}
}
