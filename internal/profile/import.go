package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/keypair"
)

var (
	// keyFilePattern matches private key files such as id_rsa or id_ed25519_work.
	keyFilePattern = regexp.MustCompile(`^id_(ed25519|rsa|ecdsa)(_.*)?$`)
	// suffixPattern captures the suffix of a named key file.
	suffixPattern = regexp.MustCompile(`^id_(ed25519|rsa|ecdsa)_(.+)$`)
)

// ignoredSuffixes are never treated as private keys.
var ignoredSuffixes = []string{keypair.PubSuffix, ".old", ".bak"}

// ExistingKey is a private key found in the SSH directory.
type ExistingKey struct {
	Kind     keypair.Kind
	PrivPath string
	PubPath  string
}

// Basename returns the key's filename.
func (k ExistingKey) Basename() string {
	return filepath.Base(k.PrivPath)
}

// SuggestName derives a profile name from a key filename: the suffix after
// id_<kind>_, "default" for an unsuffixed key, "" for anything else.
func SuggestName(basename string) string {
	if m := suffixPattern.FindStringSubmatch(basename); m != nil {
		return m[2]
	}
	if keyFilePattern.MatchString(basename) {
		return "default"
	}
	return ""
}

// FindExistingKeys scans the SSH directory for private key files.
func (s *Store) FindExistingKeys() ([]ExistingKey, error) {
	entries, err := os.ReadDir(s.paths.SSHDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH directory: %w", err)
	}

	var keys []ExistingKey
	for _, entry := range entries {
		name := entry.Name()
		if hasIgnoredSuffix(name) || !keyFilePattern.MatchString(name) {
			continue
		}
		kind, ok := keypair.KindFromBasename(name)
		if !ok {
			continue
		}

		priv := filepath.Join(s.paths.SSHDir, name)
		info, err := os.Stat(priv)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		keys = append(keys, ExistingKey{Kind: kind, PrivPath: priv, PubPath: priv + keypair.PubSuffix})
	}
	return keys, nil
}

func hasIgnoredSuffix(name string) bool {
	for _, suffix := range ignoredSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// isManaged reports whether key's public key already belongs to a profile.
// A key without a public key is never managed.
func (m *Manager) isManaged(key ExistingKey) (bool, error) {
	// #nosec G304 - path is inside the SSH directory
	pub, err := os.ReadFile(key.PubPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return m.store.IsManaged(pub)
}

// Import offers to adopt each unmanaged key in the SSH directory into a new
// profile. It does nothing unless the store is empty. Failures are reported
// per key and the scan continues. It returns the number of keys imported.
func (m *Manager) Import(ctx context.Context) (int, error) {
	names, err := m.store.List()
	if err != nil {
		return 0, err
	}
	if len(names) > 0 {
		return 0, nil
	}

	keys, err := m.store.FindExistingKeys()
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, key := range keys {
		managed, err := m.isManaged(key)
		if err != nil {
			m.printer.Error("Failed to import key: %v", err)
			continue
		}
		if managed {
			m.logger.Debug("key already managed", zap.String("key", key.PrivPath))
			continue
		}

		ok, err := m.importKey(ctx, key)
		if err != nil {
			m.printer.Error("Failed to import key: %v", err)
			continue
		}
		if ok {
			imported++
		}
	}
	return imported, nil
}

// importKey walks the user through adopting one key. It returns false when
// the user skips it.
func (m *Manager) importKey(ctx context.Context, key ExistingKey) (bool, error) {
	hasPub, err := keypair.IsFile(key.PubPath)
	if err != nil {
		return false, err
	}

	m.printer.Println()
	m.printer.Warn("Found existing %s key not managed by gssh!", key.Kind)
	m.printer.Println("Private key:", key.PrivPath)
	if hasPub {
		m.printer.Println("Public key: ", key.PubPath)
	} else {
		m.printer.Warn("Warning: No public key found")
	}
	m.printer.Println()

	ok, err := m.prompter.Confirm("Would you like to import this key into a new profile?", false)
	if err != nil {
		return false, err
	}
	if !ok {
		m.printer.Println("Skipped.")
		return false, nil
	}

	suggested := SuggestName(key.Basename())
	question := "Enter profile name for this key: "
	if suggested != "" {
		question = fmt.Sprintf("Enter profile name for this key [%s]: ", suggested)
	}
	name, err := m.prompter.Prompt(question)
	if err != nil {
		return false, err
	}
	if name == "" {
		name = suggested
	}
	if name == "" {
		return false, fmt.Errorf("%w: profile name cannot be empty", ErrInputRequired)
	}
	if err := m.checkNewName(name); err != nil {
		return false, err
	}

	author, err := m.promptAuthor()
	if err != nil {
		return false, err
	}

	dir := m.store.Dir(name)
	err = withCleanup(dir, func() error {
		if err := author.WriteFile(filepath.Join(dir, gitauthor.FileName)); err != nil {
			return err
		}

		// Stored under the canonical name so the profile resolves
		dest := filepath.Join(dir, key.Kind.Basename())
		if err := keypair.CopyFile(key.PrivPath, dest, 0600); err != nil {
			return fmt.Errorf("failed to copy private key: %w", err)
		}
		if hasPub {
			if err := keypair.CopyFile(key.PubPath, dest+keypair.PubSuffix, 0644); err != nil {
				return fmt.Errorf("failed to copy public key: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if hasPub {
		m.checkPublicKey(filepath.Join(dir, key.Kind.Basename()+keypair.PubSuffix))
	}

	m.printer.Println()
	m.printer.Success("Successfully imported key into profile '%s'", name)
	m.printer.Println()

	markActive, err := m.prompter.Confirm("Mark this profile as active?", true)
	if err != nil {
		return true, err
	}
	if markActive {
		if err := m.markActive(ctx, name); err != nil {
			return true, err
		}
		m.printer.Success("Profile marked as active.")
	}
	return true, nil
}

// checkPublicKey warns when an imported public key cannot be parsed.
func (m *Manager) checkPublicKey(path string) {
	// #nosec G304 - path is inside the profile store
	data, err := os.ReadFile(path)
	if err == nil {
		_, err = keypair.Fingerprint(data)
	}
	if err != nil {
		m.logger.Warn("imported public key is not usable", zap.String("path", path), zap.Error(err))
		m.printer.Warn("Warning: public key %s could not be parsed: %v", path, err)
	}
}

// markActive writes the marker under the lock.
func (m *Manager) markActive(ctx context.Context, name string) error {
	release, err := m.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()
	return m.store.WriteMarker(name)
}
