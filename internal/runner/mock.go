package runner

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Call records a single command executed through a MockRunner.
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// Handler produces the outcome of a mocked command.
type Handler func(call Call, stdout, stderr io.Writer) error

// MockRunner is an in-memory Runner implementation for testing.
type MockRunner struct {
	mu      sync.Mutex
	calls   []Call
	missing map[string]bool
	handler Handler
}

// NewMockRunner creates a mock runner where every binary exists and every
// command succeeds silently.
func NewMockRunner() *MockRunner {
	return &MockRunner{missing: make(map[string]bool)}
}

// SetHandler sets the function invoked for each command run.
func (m *MockRunner) SetHandler(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// SetMissing makes LookPath fail for the given binary.
func (m *MockRunner) SetMissing(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missing[name] = true
}

// Calls returns a copy of the recorded calls.
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// LookPath implements Runner.
func (m *MockRunner) LookPath(file string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.missing[file] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
	}
	return file, nil
}

// CommandContext implements Runner.
func (m *MockRunner) CommandContext(ctx context.Context, name string, args ...string) Command {
	return &mockCommand{runner: m, name: name, args: args}
}

// mockCommand is a Command recorded by MockRunner.
type mockCommand struct {
	runner *MockRunner
	name   string
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *mockCommand) SetStdin(stdin io.Reader)   { c.stdin = stdin }
func (c *mockCommand) SetStdout(stdout io.Writer) { c.stdout = stdout }
func (c *mockCommand) SetStderr(stderr io.Writer) { c.stderr = stderr }

func (c *mockCommand) Run() error {
	call := Call{Name: c.name, Args: append([]string(nil), c.args...)}
	if c.stdin != nil {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return err
		}
		call.Stdin = string(data)
	}

	c.runner.mu.Lock()
	c.runner.calls = append(c.runner.calls, call)
	h := c.runner.handler
	c.runner.mu.Unlock()

	if h == nil {
		return nil
	}
	stdout, stderr := c.stdout, c.stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return h(call, stdout, stderr)
}
