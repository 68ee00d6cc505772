package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/keypair"
)

func TestSuggestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id_ed25519", "default"},
		{"id_rsa", "default"},
		{"id_ecdsa", "default"},
		{"id_ed25519_work", "work"},
		{"id_rsa_github_personal", "github_personal"},
		{"id_ecdsa_sk", "sk"},
		{"id_rsa_", "default"},
		{"id_dsa", ""},
		{"known_hosts", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestName(tt.in))
		})
	}
}

func TestFindExistingKeys(t *testing.T) {
	paths := newPaths(t)
	for _, name := range []string{
		"id_ed25519_work", "id_ed25519_work.pub",
		"id_rsa", "id_rsa.old", "id_rsa.bak",
		"id_ecdsa_sk",
		"id_dsa", "known_hosts", "config", "git-ssh-active.txt",
	} {
		writeFile(t, filepath.Join(paths.SSHDir, name), "x")
	}
	// Directories are never keys
	require.NoError(t, os.MkdirAll(filepath.Join(paths.SSHDir, "id_rsa_dir"), 0700))

	keys, err := NewStore(paths).FindExistingKeys()
	require.NoError(t, err)

	var names []string
	for _, k := range keys {
		names = append(names, k.Basename())
	}
	assert.Equal(t, []string{"id_ecdsa_sk", "id_ed25519_work", "id_rsa"}, names)
	assert.Equal(t, keypair.ECDSA, keys[0].Kind)
	assert.Equal(t, keypair.Ed25519, keys[1].Kind)
	assert.Equal(t, keys[1].PrivPath+".pub", keys[1].PubPath)
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("skipped when profiles exist", func(t *testing.T) {
		h := newHarness(t)
		writeProfile(t, h.paths, "work", profileFiles{ed25519: "ed"})
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa"), "unmanaged")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Empty(t, h.prompter.Questions())
	})

	t.Run("nothing to import", func(t *testing.T) {
		h := newHarness(t)

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Empty(t, h.prompter.Questions())
	})

	t.Run("imports suffixed key under its canonical name", func(t *testing.T) {
		pub := newPublicKey(t, "jane@work.example.com")
		h := newHarness(t,
			"y", "", "Jane Doe", "jane@work.example.com", "n", // id_ed25519_work
			"n", // id_rsa
		)
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_ed25519_work"), "work-private")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_ed25519_work.pub"), pub+"\n")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa"), "rsa-private")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 0, h.prompter.Remaining())

		dir := h.paths.ProfileDir("work")
		assert.Equal(t, "work-private", readFile(t, filepath.Join(dir, "id_ed25519")))
		assert.Equal(t, pub+"\n", readFile(t, filepath.Join(dir, "id_ed25519.pub")))
		assert.Equal(t, "Jane Doe <jane@work.example.com>", readFile(t, filepath.Join(dir, gitauthor.FileName)))
		assert.False(t, exists(h.paths.ActiveFile))

		questions := h.prompter.Questions()
		assert.Equal(t, "Enter profile name for this key [work]: ", questions[1])

		out := h.out.String()
		assert.Contains(t, out, "Found existing ed25519 key not managed by gssh!")
		assert.Contains(t, out, "Successfully imported key into profile 'work'")
		assert.Contains(t, out, "Found existing rsa key not managed by gssh!")
		assert.Contains(t, out, "Warning: No public key found")
		assert.Contains(t, out, "Skipped.")
		assert.NotContains(t, out, "could not be parsed")

		names, err := h.store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"work"}, names)
	})

	t.Run("marks active and skips keys it already holds", func(t *testing.T) {
		pub := newPublicKey(t, "jane@example.com")
		h := newHarness(t, "y", "", "Jane", "jane@example.com", "")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_ed25519"), "private")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_ed25519.pub"), pub)
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_ed25519_copy"), "private")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_ed25519_copy.pub"), "  "+pub+"\n")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 0, h.prompter.Remaining())

		assert.Equal(t, "default", readFile(t, h.paths.ActiveFile))
		assert.Contains(t, h.out.String(), "Profile marked as active.")

		active, err := h.store.Active()
		require.NoError(t, err)
		assert.Equal(t, Active{Name: "default", Source: SourceMarker}, active)
	})

	t.Run("failures are reported and the scan continues", func(t *testing.T) {
		h := newHarness(t,
			"y", "../evil", // id_ecdsa: invalid name
			"y", "personal", "Jane", "jane@example.com", "n", // id_rsa_personal
		)
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_ecdsa"), "ec")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa_personal"), "rsa")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.Contains(t, h.out.String(), "Failed to import key: invalid profile name")
		assert.True(t, exists(filepath.Join(h.paths.ProfileDir("personal"), "id_rsa")))
		assert.False(t, exists(filepath.Join(h.paths.ProfilesDir, "..", "evil")))
	})

	t.Run("missing author leaves no directory", func(t *testing.T) {
		h := newHarness(t, "y", "work", "Jane", "")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa_work"), "rsa")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.False(t, exists(h.paths.ProfileDir("work")))
		assert.Contains(t, h.out.String(), "name and email are required")
	})

	t.Run("existing profile directory is not overwritten", func(t *testing.T) {
		h := newHarness(t, "y", "taken")
		writeFile(t, filepath.Join(h.paths.ProfileDir("taken"), "notes"), "keep")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa"), "rsa")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, "keep", readFile(t, filepath.Join(h.paths.ProfileDir("taken"), "notes")))
		assert.Contains(t, h.out.String(), ErrProfileExists.Error())
	})

	t.Run("unparseable public key is imported with a warning", func(t *testing.T) {
		h := newHarness(t, "y", "", "Jane", "jane@example.com", "n")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa"), "rsa")
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa.pub"), "not a key")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.True(t, exists(filepath.Join(h.paths.ProfileDir("default"), "id_rsa.pub")))
		assert.Contains(t, h.out.String(), "could not be parsed")
	})

	t.Run("prompt errors count as failures", func(t *testing.T) {
		h := newHarness(t)
		writeFile(t, filepath.Join(h.paths.SSHDir, "id_rsa"), "rsa")

		n, err := h.manager.Import(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Contains(t, h.out.String(), "Failed to import key: no scripted answer left")
		assert.False(t, exists(h.paths.ProfileDir("default")))
	})
}
