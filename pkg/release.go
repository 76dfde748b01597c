package tagbump

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bcomnes/tagbump/pkg/execcmd"
)

// Defaults applied by Options when a field is left empty.
const (
	DefaultVersionFile = "tag.txt"
	DefaultGit         = "git"
	DefaultTagMessage  = "New Release {version}"
)

// Options configures one release run.
type Options struct {
	VersionFile   string   // file holding major.minor.patch, relative to Dir
	Dir           string   // working directory for git and relative paths
	Git           string   // git client binary
	TagMessage    string   // annotated tag message; {version} is replaced
	RemoteBackend string   // RemoteBackendCLI or RemoteBackendGoGit
	BumpFiles     []string // extra files whose version string follows the bump

	Debug   bool // print tag and push commands instead of running them
	Verbose int
	DryRun  bool // write nothing, run nothing except remote enumeration

	Out    io.Writer   // where Debug lines and interactive output go
	Info   *log.Logger // receives the new version before tagging; nil discards
	Logger *log.Logger // trace sink; nil disables tracing
}

func (o Options) withDefaults() Options {
	if o.VersionFile == "" {
		o.VersionFile = DefaultVersionFile
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Git == "" {
		o.Git = DefaultGit
	}
	if o.TagMessage == "" {
		o.TagMessage = DefaultTagMessage
	}
	if o.RemoteBackend == "" {
		o.RemoteBackend = RemoteBackendCLI
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Info == nil {
		o.Info = log.New(io.Discard, "", 0)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

func (o Options) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.Dir, p)
}

// ReleaseMeta describes what a run did, or would have done in a dry run.
type ReleaseMeta struct {
	OldVersion   string
	NewVersion   string
	Tag          string
	Remotes      []string // remotes found
	Pushed       []string // remotes the tag was pushed to
	UpdatedFiles []string // files written (or that would be written)
	Commands     []string // tag and push commands issued, in order
}

// Runner executes a shell command line with output attached to the terminal.
// *execcmd.Executor satisfies it.
type Runner interface {
	RunInteractive(command string, ignoreFailure bool) (execcmd.Result, error)
}

// Release drives one ReadVersion → Bump → Persist → Tag → Push cycle.
type Release struct {
	opts    Options
	runner  Runner
	remotes RemoteLister
}

// NewRelease wires a release from explicit collaborators. Whether commands
// really execute is up to runner; Run and DryRun configure an Executor from
// opts.
func NewRelease(opts Options, runner Runner, remotes RemoteLister) *Release {
	return &Release{opts: opts.withDefaults(), runner: runner, remotes: remotes}
}

// Run bumps the patch version in the version file, tags it and pushes the
// tag to every remote. Any failure stops the remaining steps, except that a
// failed push does not stop pushes to the other remotes; the returned error
// then wraps ErrPush and every push failure, first one first.
//
// The version file is not restored when a later step fails.
func (r *Release) Run() (ReleaseMeta, error) {
	var meta ReleaseMeta
	o := r.opts
	versionFile := o.path(o.VersionFile)

	cur, err := ReadVersionFile(versionFile)
	if err != nil {
		return meta, err
	}
	next := cur.BumpPatch()
	meta.OldVersion = cur.String()
	meta.NewVersion = next.String()
	meta.Tag = next.String()
	o.Logger.Printf("bumping %s: %s -> %s", versionFile, meta.OldVersion, meta.NewVersion)
	if !next.Canonical() {
		o.Logger.Printf("warning: %s is not a canonical semantic version", meta.NewVersion)
	}

	if !o.DryRun {
		if err := WriteVersionFile(versionFile, next); err != nil {
			return meta, err
		}
	}
	meta.UpdatedFiles = append(meta.UpdatedFiles, versionFile)
	o.Info.Println(meta.NewVersion)

	for _, bf := range o.BumpFiles {
		p := o.path(bf)
		var old string
		if o.DryRun {
			old, err = ScanVersionInFile(p)
		} else {
			old, err = BumpVersionInFile(p, next)
		}
		if err != nil {
			return meta, err
		}
		o.Logger.Printf("bump file %s: %s -> %s", p, old, meta.NewVersion)
		meta.UpdatedFiles = append(meta.UpdatedFiles, p)
	}

	message := strings.ReplaceAll(o.TagMessage, "{version}", meta.NewVersion)
	tagCmd := fmt.Sprintf("%s tag -a %s -m %s", execcmd.Quote(o.Git), execcmd.Quote(meta.Tag), execcmd.Quote(message))
	if err := r.issue(&meta, tagCmd); err != nil {
		return meta, fmt.Errorf("%w: %s: %w", ErrTagCreation, meta.Tag, err)
	}

	remotes, err := r.remotes.Remotes()
	if err != nil {
		if !errors.Is(err, ErrRemoteEnumeration) {
			err = fmt.Errorf("%w: %w", ErrRemoteEnumeration, err)
		}
		return meta, err
	}
	meta.Remotes = remotes
	o.Logger.Printf("remotes: %v", remotes)

	var failures []error
	for _, remote := range remotes {
		pushCmd := fmt.Sprintf("%s push %s --tag", execcmd.Quote(o.Git), execcmd.Quote(remote))
		if err := r.issue(&meta, pushCmd); err != nil {
			o.Logger.Printf("push to %s failed: %v", remote, err)
			failures = append(failures, fmt.Errorf("remote %s: %w", remote, err))
			continue
		}
		meta.Pushed = append(meta.Pushed, remote)
	}
	if len(failures) > 0 {
		return meta, fmt.Errorf("%w: %d of %d remotes failed: %w", ErrPush, len(failures), len(remotes), errors.Join(failures...))
	}
	return meta, nil
}

// issue records cmd and hands it to the runner. Dry runs stop after recording.
func (r *Release) issue(meta *ReleaseMeta, cmd string) error {
	meta.Commands = append(meta.Commands, cmd)
	if r.opts.Debug {
		fmt.Fprintf(r.opts.Out, "Debug: %s\n", cmd)
	}
	if r.opts.DryRun {
		return nil
	}
	_, err := r.runner.RunInteractive(cmd, false)
	return err
}

// Run performs a release with a shell Executor and the remote lister named
// by opts.RemoteBackend. In debug mode the Executor has execution disabled,
// so tag and push commands are only printed.
func Run(opts Options) (ReleaseMeta, error) {
	opts = opts.withDefaults()
	lister, err := newRemoteLister(opts, traceLogger(opts))
	if err != nil {
		return ReleaseMeta{}, err
	}
	runner := execcmd.New(
		execcmd.WithExecute(!opts.Debug && !opts.DryRun),
		execcmd.WithAccumulate(true),
		execcmd.WithDir(opts.Dir),
		execcmd.WithLogger(traceLogger(opts)),
		execcmd.WithStdio(os.Stdin, opts.Out, opts.Out),
	)
	return NewRelease(opts, runner, lister).Run()
}

// DryRun reports what Run would do without writing files or running tag and
// push commands. Remotes are still listed.
func DryRun(opts Options) (ReleaseMeta, error) {
	opts.DryRun = true
	return Run(opts)
}

// traceLogger returns the caller's logger only when the caller supplied one.
func traceLogger(opts Options) *log.Logger {
	if opts.Logger == nil || opts.Logger.Writer() == io.Discard {
		return nil
	}
	return opts.Logger
}
