// Package execcmd runs external commands through the host shell under a
// per-executor policy: real or skipped execution, output suppression, and an
// optional record of every command handed to it.
package execcmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
)

const suppressRedirect = " 2>/dev/null >/dev/null"

// Result is the outcome of one run.
type Result struct {
	Command    string
	ExitStatus int
	Output     string // combined stdout/stderr, captured runs only
	Skipped    bool   // execution was disabled; nothing was spawned
}

// Executor runs shell commands. The zero value is not usable; call New.
type Executor struct {
	execute    bool
	accumulate bool
	suppress   bool

	shell     string
	dir       string
	scriptDir string
	log       *log.Logger
	trace     bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	record []string

	hasLast    bool
	lastStatus int
	lastOutput string
	hasOutput  bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithExecute toggles real execution. Disabled executors validate, record and
// log commands but never spawn a process.
func WithExecute(on bool) Option {
	return func(e *Executor) { e.execute = on }
}

// WithAccumulate keeps every command string passed in, in order.
func WithAccumulate(on bool) Option {
	return func(e *Executor) { e.accumulate = on }
}

// WithLogger sends trace output to l. Attaching a logger also makes generated
// scripts run with bash -xv.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
			e.trace = true
		}
	}
}

// WithStdio sets the streams interactive runs are attached to.
func WithStdio(in io.Reader, out, errOut io.Writer) Option {
	return func(e *Executor) {
		e.stdin, e.stdout, e.stderr = in, out, errOut
	}
}

// WithDir sets the working directory of spawned processes.
func WithDir(dir string) Option {
	return func(e *Executor) { e.dir = dir }
}

// WithScriptDir sets where RunScript writes its temporary script.
func WithScriptDir(dir string) Option {
	return func(e *Executor) { e.scriptDir = dir }
}

// WithShell overrides the shell used to interpret commands (default /bin/sh).
func WithShell(shell string) Option {
	return func(e *Executor) { e.shell = shell }
}

// New returns an Executor that executes commands and keeps no record unless
// configured otherwise.
func New(opts ...Option) *Executor {
	e := &Executor{
		execute: true,
		shell:   "/bin/sh",
		log:     log.New(io.Discard, "", 0),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetExecutionEnabled changes the execute policy for later calls.
func (e *Executor) SetExecutionEnabled(on bool) { e.execute = on }

// SetOutputSuppressed makes later commands discard their stdout and stderr.
func (e *Executor) SetOutputSuppressed(on bool) { e.suppress = on }

// LastExitStatus reports the exit status of the most recent process run.
// ok is false until a process has actually been run.
func (e *Executor) LastExitStatus() (status int, ok bool) {
	return e.lastStatus, e.hasLast
}

// LastOutput reports the captured output of the most recent process run.
// ok is false before any run and after an interactive run.
func (e *Executor) LastOutput() (output string, ok bool) {
	return e.lastOutput, e.hasOutput
}

// Commands returns a copy of the command record in insertion order.
func (e *Executor) Commands() []string {
	out := make([]string, len(e.record))
	copy(out, e.record)
	return out
}

// Len returns the number of recorded commands.
func (e *Executor) Len() int { return len(e.record) }

// RunCaptured runs command synchronously and captures its combined output.
// A non-zero exit status yields a *CommandError unless ignoreFailure is set.
func (e *Executor) RunCaptured(command string, ignoreFailure bool) (Result, error) {
	e.log.Printf("execCmd::RunCaptured(%s)", command)
	cmdline, err := e.prepare(command, true)
	if err != nil {
		return Result{}, err
	}
	if !e.execute {
		return e.skip(cmdline), nil
	}

	var buf bytes.Buffer
	c := e.command(cmdline)
	c.Stdout = &buf
	c.Stderr = &buf
	status, runErr := runStatus(c)
	output := strings.TrimSuffix(buf.String(), "\n")

	e.hasLast, e.lastStatus = true, status
	e.hasOutput, e.lastOutput = true, output
	e.log.Printf("\tResult = %d, %s...", status, output)

	res := Result{Command: cmdline, ExitStatus: status, Output: output}
	return res, e.check(res, runErr, ignoreFailure)
}

// RunInteractive runs command with its output attached to the executor's
// streams. Only the exit status is kept.
func (e *Executor) RunInteractive(command string, ignoreFailure bool) (Result, error) {
	e.log.Printf("execCmd::RunInteractive(%s)", command)
	cmdline, err := e.prepare(command, true)
	if err != nil {
		return Result{}, err
	}
	if !e.execute {
		return e.skip(cmdline), nil
	}
	return e.interactive(cmdline, ignoreFailure)
}

// RunScript writes commands into a temporary bash script ending in "exit $?",
// runs it interactively and removes the script on every path.
func (e *Executor) RunScript(commands []string, ignoreFailure bool) (Result, error) {
	e.log.Printf("execCmd::RunScript(%q)", commands)
	if len(commands) == 0 {
		return Result{}, ErrEmptyCommand
	}
	if e.accumulate {
		e.record = append(e.record, commands...)
	}
	if !e.execute {
		return e.skip(strings.Join(commands, "; ")), nil
	}

	path, err := e.writeScript(commands)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.log.Printf("\tfailed to remove script %s: %v", path, err)
		}
	}()
	e.log.Printf("\tscript = %s", path)

	// The path is quoted, not expanded: script dirs may hold spaces or "$".
	cmdline := Quote(path)
	if e.suppress {
		cmdline += suppressRedirect
	}
	return e.interactive(cmdline, ignoreFailure)
}

func (e *Executor) writeScript(commands []string) (string, error) {
	f, err := os.CreateTemp(e.scriptDir, "bashStub*.sh")
	if err != nil {
		return "", fmt.Errorf("creating script: %w", err)
	}
	path := f.Name()

	var b strings.Builder
	if e.trace {
		b.WriteString("#!/bin/bash -xv\n\n")
	} else {
		b.WriteString("#!/bin/bash\n\n")
	}
	for _, c := range commands {
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("exit $?\n")

	_, werr := f.WriteString(b.String())
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing script %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o755); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("making script %s executable: %w", path, err)
	}
	return path, nil
}

func (e *Executor) interactive(cmdline string, ignoreFailure bool) (Result, error) {
	c := e.command(cmdline)
	c.Stdin, c.Stdout, c.Stderr = e.stdin, e.stdout, e.stderr
	status, runErr := runStatus(c)

	e.hasLast, e.lastStatus = true, status
	e.hasOutput, e.lastOutput = false, ""
	e.log.Printf("\tResult = %d", status)

	res := Result{Command: cmdline, ExitStatus: status}
	return res, e.check(res, runErr, ignoreFailure)
}

// prepare validates and expands a command, applies suppression and records it.
func (e *Executor) prepare(command string, record bool) (string, error) {
	if strings.TrimSpace(command) == "" {
		e.log.Printf("\tcmdlen==0")
		return "", ErrEmptyCommand
	}
	cmdline := expandEnv(command)
	if e.suppress {
		cmdline += suppressRedirect
	}
	if record && e.accumulate {
		e.record = append(e.record, cmdline)
	}
	e.log.Printf("\tcommand = %s", cmdline)
	return cmdline, nil
}

func (e *Executor) skip(cmdline string) Result {
	e.log.Printf("\texecution disabled, %s not run", cmdline)
	return Result{Command: cmdline, Skipped: true}
}

func (e *Executor) command(cmdline string) *exec.Cmd {
	c := exec.Command(e.shell, "-c", cmdline)
	c.Dir = e.dir
	return c
}

func (e *Executor) check(res Result, runErr error, ignoreFailure bool) error {
	if res.ExitStatus < 0 {
		// The process never ran; ignoring failures does not cover that.
		return &CommandError{Command: res.Command, ExitStatus: res.ExitStatus, Err: runErr}
	}
	if res.ExitStatus == 0 || ignoreFailure {
		return nil
	}
	e.log.Printf("command failed: %s", res.Command)
	e.log.Printf("exit status:    %d", res.ExitStatus)
	e.log.Printf("output:         %s", res.Output)
	return &CommandError{Command: res.Command, ExitStatus: res.ExitStatus, Output: res.Output}
}

// runStatus runs c and maps the outcome to an exit status. A status of -1
// means the process could not be started or was killed by a signal.
func runStatus(c *exec.Cmd) (int, error) {
	err := c.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), err
	}
	return -1, err
}

// expandEnv substitutes environment variables, leaving unset ones for the shell.
func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}

// Quote quotes s for /bin/sh when it contains anything but safe characters.
func Quote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:@%+=,", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
