//go:build integration

// Package integration provides integration tests for gssh.
package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestEnv is an isolated home directory the gssh binary runs against.
type TestEnv struct {
	Home      string
	ConfigDir string
	SSHDir    string
}

// NewTestEnv creates a temporary home with its own config directory.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	home := t.TempDir()
	configDir := filepath.Join(home, ".config", "gssh")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	return &TestEnv{
		Home:      home,
		ConfigDir: configDir,
		SSHDir:    filepath.Join(home, ".ssh"),
	}
}

// ProfileDir returns the directory of the named profile.
func (e *TestEnv) ProfileDir(name string) string {
	return filepath.Join(e.SSHDir, "profiles", name)
}

// Env returns the environment gssh and its subprocesses run with.
func (e *TestEnv) Env() []string {
	return append(os.Environ(),
		"HOME="+e.Home,
		"USERPROFILE="+e.Home,
		"XDG_CONFIG_HOME="+filepath.Join(e.Home, ".config"),
		"GSSH_CONFIG_DIR="+e.ConfigDir,
		"GIT_CONFIG_GLOBAL="+filepath.Join(e.Home, ".gitconfig"),
		"GIT_CONFIG_NOSYSTEM=1",
	)
}

// Run executes gssh with args, feeding stdin to its prompts.
func (e *TestEnv) Run(ctx context.Context, t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return e.RunIn(ctx, t, "", stdin, args...)
}

// RunIn is Run with dir as the working directory.
func (e *TestEnv) RunIn(ctx context.Context, t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.CommandContext(ctx, GsshBinaryPath(t), args...)
	cmd.Env = e.Env()
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Git runs git in dir with the test environment.
func (e *TestEnv) Git(ctx context.Context, t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = e.Env()
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v failed: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

// SkipIfBinaryMissing skips the test if a tool gssh relies on is not available.
func SkipIfBinaryMissing(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s binary not found in PATH", name)
		}
	}
}

// GsshBinaryPath returns the path to the gssh binary.
func GsshBinaryPath(t *testing.T) string {
	t.Helper()

	// Check if GSSH_BINARY is set
	if path := os.Getenv("GSSH_BINARY"); path != "" {
		return path
	}

	// Try to find it relative to the test directory
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}

	// Go up from test/integration to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	binaryPath := filepath.Join(projectRoot, "bin", "gssh")

	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Fatalf("gssh binary not found at %s - run 'go build -o bin/gssh ./cmd/gssh' first", binaryPath)
	}

	return binaryPath
}
