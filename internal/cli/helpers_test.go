package cli

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/xabinapal/gssh/internal/config"
	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/runner"
)

// fakeClipboard records copied text.
type fakeClipboard struct {
	copied []string
	err    error
}

func (c *fakeClipboard) Copy(text string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, text)
	return nil
}

// silentNotifier never notifies.
type silentNotifier struct{}

func (silentNotifier) NotifySwitch(string, string) error { return nil }
func (silentNotifier) NotifyFailure(string, error) error { return nil }

// testEnv is a temporary home with a CLI wired to fakes.
type testEnv struct {
	t         *testing.T
	home      string
	paths     config.Paths
	runner    *runner.MockRunner
	clipboard *fakeClipboard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("GSSH_CONFIG_DIR", t.TempDir())
	t.Setenv("GSSH_LOG_LEVEL", "")

	home := t.TempDir()
	paths := config.NewPaths(home)
	require.NoError(t, paths.EnsureDirs())

	mr := runner.NewMockRunner()
	// ssh-keygen writes the pair it was asked for
	mr.SetHandler(func(call runner.Call, stdout, stderr io.Writer) error {
		if call.Name != "ssh-keygen" {
			return nil
		}
		for i, arg := range call.Args {
			if arg == "-f" && i+1 < len(call.Args) {
				path := call.Args[i+1]
				if err := os.WriteFile(path, []byte("PRIVATE"), 0600); err != nil {
					return err
				}
				return os.WriteFile(path+".pub", []byte(newPublicKeyLine()+"\n"), 0644)
			}
		}
		return nil
	})

	return &testEnv{
		t:         t,
		home:      home,
		paths:     paths,
		runner:    mr,
		clipboard: &fakeClipboard{},
	}
}

// run executes gssh with args, feeding stdin to prompts.
func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	c := New(
		WithIO(strings.NewReader(stdin), &out, &errOut),
		WithInteractive(false),
		WithHome(e.home),
		WithRunner(e.runner),
		WithClipboard(e.clipboard),
		WithNotifier(silentNotifier{}),
	)
	c.SetArgs(args)
	err := c.Execute(context.Background())
	return out.String(), err
}

// newPublicKeyLine returns a fresh ed25519 authorized_keys line.
func newPublicKeyLine() string {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " test@example.com"
}

// addProfile writes an ed25519 profile and returns its public key.
func (e *testEnv) addProfile(name, author string) string {
	e.t.Helper()
	dir := e.paths.ProfileDir(name)
	require.NoError(e.t, os.MkdirAll(dir, 0700))
	pub := newPublicKeyLine()
	require.NoError(e.t, os.WriteFile(filepath.Join(dir, "id_ed25519"), []byte("PRIVATE "+name), 0600))
	require.NoError(e.t, os.WriteFile(filepath.Join(dir, "id_ed25519.pub"), []byte(pub+"\n"), 0644))
	if author != "" {
		require.NoError(e.t, os.WriteFile(filepath.Join(dir, gitauthor.FileName), []byte(author+"\n"), 0600))
	}
	return pub
}

// install puts pub into the live SSH directory as id_ed25519.pub.
func (e *testEnv) install(pub string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.paths.SSHDir, "id_ed25519"), []byte("PRIVATE"), 0600))
	require.NoError(e.t, os.WriteFile(filepath.Join(e.paths.SSHDir, "id_ed25519.pub"), []byte(pub+"\n"), 0644))
}

func (e *testEnv) setMarker(name string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(e.paths.ActiveFile, []byte(name), 0600))
}

func (e *testEnv) marker() string {
	e.t.Helper()
	data, err := os.ReadFile(e.paths.ActiveFile)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(e.t, err)
	return strings.TrimSpace(string(data))
}

// gitCalls returns the argument lists of every git invocation.
func (e *testEnv) gitCalls() [][]string {
	var calls [][]string
	for _, c := range e.runner.Calls() {
		if c.Name == "git" {
			calls = append(calls, c.Args)
		}
	}
	return calls
}
