// Package runner executes external programs such as ssh-keygen and git.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrBinaryNotFound is returned when an executable cannot be found in PATH.
var ErrBinaryNotFound = errors.New("binary not found")

// Runner is an interface for executing commands.
// This allows mocking in tests without actually executing binaries.
type Runner interface {
	// LookPath finds the executable in PATH
	LookPath(file string) (string, error)
	// CommandContext creates a command that can be executed
	CommandContext(ctx context.Context, name string, args ...string) Command
}

// Command represents an executable command.
type Command interface {
	// SetStdin sets the stdin reader
	SetStdin(stdin io.Reader)
	// SetStdout sets the stdout writer
	SetStdout(stdout io.Writer)
	// SetStderr sets the stderr writer
	SetStderr(stderr io.Writer)
	// Run starts the command and waits for it to complete
	Run() error
}

// realRunner is the real implementation using os/exec.
type realRunner struct{}

// New creates a new real command runner.
func New() Runner {
	return &realRunner{}
}

func (r *realRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (r *realRunner) CommandContext(ctx context.Context, name string, args ...string) Command {
	return &realCommand{cmd: exec.CommandContext(ctx, name, args...)}
}

// realCommand wraps exec.Cmd to implement the Command interface.
type realCommand struct {
	cmd *exec.Cmd
}

func (c *realCommand) SetStdin(stdin io.Reader) {
	c.cmd.Stdin = stdin
}

func (c *realCommand) SetStdout(stdout io.Writer) {
	c.cmd.Stdout = stdout
}

func (c *realCommand) SetStderr(stderr io.Writer) {
	c.cmd.Stderr = stderr
}

func (c *realCommand) Run() error {
	return c.cmd.Run()
}

// Exec resolves name in PATH, runs it with args and returns its trimmed
// stdout. stdin may be nil. On failure the error carries the command's
// stderr so the caller can surface it.
func Exec(ctx context.Context, r Runner, stdin io.Reader, name string, args ...string) (string, error) {
	path, err := r.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, name)
	}

	var stdout, stderr bytes.Buffer
	cmd := r.CommandContext(ctx, path, args...)
	if stdin != nil {
		cmd.SetStdin(stdin)
	}
	cmd.SetStdout(&stdout)
	cmd.SetStderr(&stderr)

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s failed: %w", name, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
