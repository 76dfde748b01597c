// Package main implements a CLI tool that bumps the patch version held in a
// version file, tags the release in git and pushes the tag to every remote.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bcomnes/tagbump/internal/config"
	"github.com/bcomnes/tagbump/internal/logging"
	tagbump "github.com/bcomnes/tagbump/pkg"
)

var errTooManyArgs = errors.New("too many command arguments")

// usageError marks failures caused by how the tool was invoked.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type cliOptions struct {
	debug         bool
	verbose       int
	dry           bool
	versionFile   string
	message       string
	gitBin        string
	remoteBackend string
	configPath    string
	bumpFiles     []string
}

const longHelp = `Bumps the patch component of the version stored in a version file (default: tag.txt),
writes it back, creates an annotated git tag named after the new version and pushes
that tag to every configured remote.

Examples:
  tagbump
  tagbump -v
  tagbump --debug
  tagbump --bump-file package.json --bump-file Cargo.toml
  tagbump --version-file VERSION -m "Release {version}"`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, out, errOut io.Writer) int {
	start := time.Now()
	rep := newReporter(out)
	logs := logging.New(out, errOut, false)
	var o cliOptions
	started := false

	cmd := &cobra.Command{
		Use:           "tagbump [flags] [sourceDirectoryPath]",
		Short:         "Bump the patch version, tag it and push the tag to every remote",
		Long:          longHelp,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			started = true
			logs = logging.New(out, errOut, o.debug)
			return release(cmd, args, &o, rep, logs)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.Flags()
	flags.BoolVarP(&o.debug, "debug", "d", false, "Set debug mode: trace to stdout and print tag/push commands instead of running them")
	flags.CountVarP(&o.verbose, "verbose", "v", "Set verbose mode (repeatable): print timing at exit")
	flags.BoolVar(&o.dry, "dry", false, "Perform a dry run without modifying any files or the git repository")
	flags.StringVar(&o.versionFile, "version-file", tagbump.DefaultVersionFile, "Path to the file holding major.minor.patch")
	flags.StringVarP(&o.message, "message", "m", tagbump.DefaultTagMessage, "Annotated tag message; {version} is replaced by the new version")
	flags.StringVar(&o.gitBin, "git", tagbump.DefaultGit, "git client to run")
	flags.StringVar(&o.remoteBackend, "remote-backend", tagbump.RemoteBackendCLI, `How remotes are listed: "cli" (git remote) or "go-git"`)
	flags.StringVar(&o.configPath, "config", "", "Config file (.yaml, .yml or .toml); default: discover .tagbump.* in the current directory")
	flags.StringArrayVar(&o.bumpFiles, "bump-file", nil, "Additional file whose version string is set to the new version. May be repeated.")

	err := cmd.Execute()
	code := tagbump.ExitOK
	var uerr *usageError
	switch {
	case err == nil:
	case errors.Is(err, errTooManyArgs):
		fmt.Fprintln(out, "ERROR - too many command arguments!")
		_ = cmd.Usage()
		code = tagbump.ExitTooManyArgs
	case !started || errors.As(err, &uerr):
		logs.Error.Print(err)
		cmd.SetOut(errOut)
		_ = cmd.Usage()
		code = tagbump.ExitUsage
	default:
		logs.Error.Print(err)
		code = tagbump.ExitCode(err)
	}

	if started && (o.verbose > 0 || o.debug) {
		rep.timing(start, time.Now(), code)
	}
	return code
}

func release(cmd *cobra.Command, args []string, o *cliOptions, rep *reporter, logs *logging.Loggers) error {
	logs.Debug.Print("In DEBUG Mode...")
	logs.Debug.Printf("Args: %v", args)

	if len(args) > 1 {
		return errTooManyArgs
	}
	src, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	if len(args) == 1 {
		src = args[0]
	}
	if fi, err := os.Stat(src); err != nil {
		return &usageError{fmt.Errorf("source directory: %w", err)}
	} else if !fi.IsDir() {
		return &usageError{fmt.Errorf("source directory %s is not a directory", src)}
	}
	logs.Debug.Printf("Source: %s", src)

	cfg, err := config.Load(o.configPath, ".")
	if err != nil {
		return &usageError{err}
	}
	if cfg.Path != "" {
		logs.Debug.Printf("Config: %s", cfg.Path)
	}

	opts := tagbump.Options{
		VersionFile:   pick(cmd, "version-file", o.versionFile, cfg.VersionFile),
		TagMessage:    pick(cmd, "message", o.message, cfg.Message),
		Git:           pick(cmd, "git", o.gitBin, cfg.Git),
		RemoteBackend: pick(cmd, "remote-backend", o.remoteBackend, cfg.RemoteBackend),
		BumpFiles:     o.bumpFiles,
		Debug:         o.debug,
		Verbose:       o.verbose,
		DryRun:        o.dry,
		Out:           rep.out,
		Info:          logs.Info,
		Logger:        logs.Tracer(),
	}
	if !cmd.Flags().Changed("bump-file") && len(cfg.BumpFiles) > 0 {
		opts.BumpFiles = cfg.BumpFiles
	}
	switch opts.RemoteBackend {
	case tagbump.RemoteBackendCLI, tagbump.RemoteBackendGoGit:
	default:
		return &usageError{fmt.Errorf("unknown remote backend %q", opts.RemoteBackend)}
	}

	var meta tagbump.ReleaseMeta
	if o.dry {
		meta, err = tagbump.DryRun(opts)
	} else {
		meta, err = tagbump.Run(opts)
	}
	if err != nil {
		return err
	}

	rep.summary(meta, o.dry)
	return nil
}

// pick prefers an explicitly set flag, then the config file, then the flag default.
func pick(cmd *cobra.Command, name, flagValue, fileValue string) string {
	if cmd.Flags().Changed(name) || fileValue == "" {
		return flagValue
	}
	return fileValue
}
