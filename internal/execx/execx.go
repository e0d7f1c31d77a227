// Package execx invokes the external packaging tools. Commands are argument
// vectors, never shell strings.
package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrNotFound indicates the tool binary is not on PATH.
var ErrNotFound = errors.New("executable not found")

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// String renders the command for plans and dry runs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Args {
		if strings.ContainsAny(arg, " \t\"") {
			parts = append(parts, fmt.Sprintf("%q", arg))
		} else {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, " ")
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Commander runs commands. Pipeline tests substitute a fake.
type Commander interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Options configure a Local commander.
type Options struct {
	// Stdout and Stderr receive live output when Verbose is set.
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool

	// LookPath resolves a binary name to a path. Defaults to safeexec.
	LookPath func(name string) (string, error)
}

// Local executes commands on the host.
type Local struct {
	opts Options
}

// New creates a Local commander with the supplied options.
func New(opts Options) *Local {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.LookPath == nil {
		opts.LookPath = defaultLookPath
	}
	return &Local{opts: opts}
}

// Run executes cmd and captures its output. A missing binary is reported as
// ErrNotFound before anything is spawned; a non-zero exit keeps the captured
// output in the Result alongside the error.
func (l *Local) Run(ctx context.Context, cmd Command) (Result, error) {
	path, err := l.opts.LookPath(cmd.Name)
	if err != nil {
		return Result{ExitCode: 127}, fmt.Errorf("%w: %s", ErrNotFound, cmd.Name)
	}

	proc := exec.CommandContext(ctx, path, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Env = cmd.Env

	var stdoutBuf, stderrBuf strings.Builder
	if l.opts.Verbose {
		proc.Stdout = io.MultiWriter(l.opts.Stdout, &stdoutBuf)
		proc.Stderr = io.MultiWriter(l.opts.Stderr, &stderrBuf)
	} else {
		proc.Stdout = &stdoutBuf
		proc.Stderr = &stderrBuf
	}

	runErr := proc.Run()
	result := Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: exitCode(runErr),
	}
	if runErr != nil {
		return result, fmt.Errorf("%s: %w", cmd.Name, runErr)
	}
	return result, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// Tail returns the last maxLines lines of input.
func Tail(input string, maxLines int) string {
	if input == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(input, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}
