package profile

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/xabinapal/gssh/internal/config"
	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/keypair"
	"github.com/xabinapal/gssh/internal/prompt"
	"github.com/xabinapal/gssh/internal/ui"
)

// newPaths returns bootstrapped paths under a temporary home.
func newPaths(t *testing.T) config.Paths {
	t.Helper()
	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureDirs())
	return paths
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newPublicKey returns a fresh authorized_keys line.
func newPublicKey(t *testing.T, comment string) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " " + comment
}

// profileFiles describes a profile fixture. Empty fields are not written.
type profileFiles struct {
	author  string
	ed25519 string
	edPub   string
	rsa     string
	rsaPub  string
}

func writeProfile(t *testing.T, paths config.Paths, name string, f profileFiles) {
	t.Helper()
	dir := paths.ProfileDir(name)
	require.NoError(t, os.MkdirAll(dir, 0700))
	files := map[string]string{
		gitauthor.FileName: f.author,
		"id_ed25519":       f.ed25519,
		"id_ed25519.pub":   f.edPub,
		"id_rsa":           f.rsa,
		"id_rsa.pub":       f.rsaPub,
	}
	for file, content := range files {
		if content != "" {
			writeFile(t, filepath.Join(dir, file), content)
		}
	}
}

// snapshot records every path and file content under root.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			out[rel] = "<dir>"
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

type configCall struct {
	scope gitauthor.Scope
	key   string
	value string
}

type fakeGit struct {
	calls []configCall
	err   error
}

func (f *fakeGit) SetConfig(ctx context.Context, scope gitauthor.Scope, workDir, key, value string) error {
	f.calls = append(f.calls, configCall{scope, key, value})
	return f.err
}

type genCall struct {
	kind    keypair.Kind
	path    string
	comment string
}

// fakeKeygen writes a keypair like ssh-keygen, or fails with err after
// leaving a partial private key behind.
type fakeKeygen struct {
	t     *testing.T
	calls []genCall
	err   error
}

func (f *fakeKeygen) Generate(ctx context.Context, kind keypair.Kind, path, comment string) error {
	f.calls = append(f.calls, genCall{kind, path, comment})
	if f.err != nil {
		_ = os.WriteFile(path, []byte("partial"), 0600)
		return f.err
	}
	if err := os.WriteFile(path, []byte("PRIVATE "+comment), 0600); err != nil {
		return err
	}
	return os.WriteFile(path+keypair.PubSuffix, []byte(newPublicKey(f.t, comment)+"\n"), 0644)
}

type notifyCall struct {
	profile string
	kind    string
	err     error
}

type fakeNotifier struct {
	switches []notifyCall
	failures []notifyCall
}

func (f *fakeNotifier) NotifySwitch(profile, keyKind string) error {
	f.switches = append(f.switches, notifyCall{profile: profile, kind: keyKind})
	return nil
}

func (f *fakeNotifier) NotifyFailure(profile string, err error) error {
	f.failures = append(f.failures, notifyCall{profile: profile, err: err})
	return errors.New("notifications unavailable")
}

// harness bundles a Manager with its fakes.
type harness struct {
	paths    config.Paths
	store    *Store
	manager  *Manager
	git      *fakeGit
	keygen   *fakeKeygen
	prompter *prompt.Scripted
	notifier *fakeNotifier
	out      *bytes.Buffer
	workDir  string
}

func newHarness(t *testing.T, answers ...string) *harness {
	t.Helper()
	paths := newPaths(t)
	h := &harness{
		paths:    paths,
		store:    NewStore(paths),
		git:      &fakeGit{},
		keygen:   &fakeKeygen{t: t},
		prompter: prompt.NewScripted(answers...),
		notifier: &fakeNotifier{},
		out:      &bytes.Buffer{},
		workDir:  t.TempDir(),
	}
	h.manager = NewManager(h.store,
		WithKeyGenerator(h.keygen),
		WithGitConfigurer(h.git),
		WithPrompter(h.prompter),
		WithPrinter(ui.NewPrinter(h.out)),
		WithNotifier(h.notifier),
		WithWorkDir(h.workDir),
	)
	return h
}
