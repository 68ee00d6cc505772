// Package keypair resolves SSH keypairs stored on disk and installs them into
// the live SSH directory.
package keypair

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Kind is an SSH key algorithm gssh knows how to handle.
type Kind int

const (
	// Ed25519 is preferred over every other kind.
	Ed25519 Kind = iota
	// RSA is used when no ed25519 key is present.
	RSA
	// ECDSA is only recognised for cleanup and import.
	ECDSA
)

// PubSuffix is appended to a private key path to get its public key.
const PubSuffix = ".pub"

// Resolvable lists the kinds a profile may be switched to, in preference order.
var Resolvable = []Kind{Ed25519, RSA}

// Managed lists every kind gssh cleans up in the live SSH directory.
var Managed = []Kind{Ed25519, RSA, ECDSA}

// Basename returns the canonical on-disk filename of the private key.
func (k Kind) Basename() string {
	switch k {
	case Ed25519:
		return "id_ed25519"
	case RSA:
		return "id_rsa"
	case ECDSA:
		return "id_ecdsa"
	default:
		return ""
	}
}

// String returns the algorithm name as ssh-keygen's -t flag expects it.
func (k Kind) String() string {
	return strings.TrimPrefix(k.Basename(), "id_")
}

// Matches reports whether keyType, as returned by PublicKeyType, belongs to
// this kind. RSA keys report "ssh-rsa" whatever signature algorithm they use.
func (k Kind) Matches(keyType string) bool {
	switch k {
	case Ed25519:
		return keyType == ssh.KeyAlgoED25519
	case RSA:
		return keyType == ssh.KeyAlgoRSA
	case ECDSA:
		return strings.HasPrefix(keyType, "ecdsa-sha2-")
	default:
		return false
	}
}

// KindFromBasename maps a filename such as "id_rsa" or "id_rsa_work" to its kind.
func KindFromBasename(name string) (Kind, bool) {
	for _, k := range Managed {
		base := k.Basename()
		if name == base || strings.HasPrefix(name, base+"_") {
			return k, true
		}
	}
	return 0, false
}

// KeyPair is a private key confirmed to exist on disk, plus its public
// counterpart which may or may not exist.
type KeyPair struct {
	Kind     Kind
	PrivPath string
	PubPath  string
}

// Basename returns the filename the pair is installed under.
func (kp *KeyPair) Basename() string {
	return kp.Kind.Basename()
}

// Resolve looks for id_ed25519 then id_rsa in dir and returns the first one
// found. It returns nil, nil when neither exists as a regular file. Contents
// are never read.
func Resolve(dir string) (*KeyPair, error) {
	for _, k := range Resolvable {
		priv := filepath.Join(dir, k.Basename())
		ok, err := IsFile(priv)
		if err != nil {
			return nil, err
		}
		if ok {
			return &KeyPair{Kind: k, PrivPath: priv, PubPath: priv + PubSuffix}, nil
		}
	}
	return nil, nil
}

// HasPublic reports whether the public key file exists.
func (kp *KeyPair) HasPublic() bool {
	ok, err := IsFile(kp.PubPath)
	return err == nil && ok
}

// ReadPublic returns the trimmed public key contents.
func (kp *KeyPair) ReadPublic() ([]byte, error) {
	// #nosec G304 - path is inside the profile store or SSH directory
	data, err := os.ReadFile(kp.PubPath)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimSpace(string(data))), nil
}

// Install replaces the managed keys in sshDir with this pair.
//
// Any id_ed25519, id_rsa or id_ecdsa (and .pub) already in sshDir is removed
// first so a stale key of another kind cannot linger. The private key is
// always copied, the public key only if present. Outside Windows the private
// key ends up 0600 and the public key 0644.
func (kp *KeyPair) Install(sshDir string) error {
	for _, k := range Managed {
		base := filepath.Join(sshDir, k.Basename())
		_ = os.Remove(base)
		_ = os.Remove(base + PubSuffix)
	}

	targetPriv := filepath.Join(sshDir, kp.Basename())
	targetPub := targetPriv + PubSuffix

	if err := CopyFile(kp.PrivPath, targetPriv, 0600); err != nil {
		return fmt.Errorf("failed to install private key: %w", err)
	}

	hasPub := kp.HasPublic()
	if hasPub {
		if err := CopyFile(kp.PubPath, targetPub, 0644); err != nil {
			return fmt.Errorf("failed to install public key: %w", err)
		}
	}

	if runtime.GOOS == "windows" {
		return nil
	}

	// Chmod explicitly: the target may be created with a wider umask-derived mode.
	if err := os.Chmod(targetPriv, 0600); err != nil {
		return fmt.Errorf("failed to set private key permissions: %w", err)
	}
	if hasPub {
		if err := os.Chmod(targetPub, 0644); err != nil {
			return fmt.Errorf("failed to set public key permissions: %w", err)
		}
	}

	return nil
}

// Fingerprint returns the SHA256 fingerprint of an authorized_keys formatted
// public key, e.g. "SHA256:...".
func Fingerprint(pub []byte) (string, error) {
	key, _, _, _, err := ssh.ParseAuthorizedKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(key), nil
}

// PublicKeyType returns the algorithm name embedded in a public key, e.g. "ssh-ed25519".
func PublicKeyType(pub []byte) (string, error) {
	key, _, _, _, err := ssh.ParseAuthorizedKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return key.Type(), nil
}

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsFile reports whether path exists and is a regular file. Symlinks are
// followed. Errors other than "not exist" are returned.
func IsFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Mode().IsRegular(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// CopyFile copies src to dst, truncating dst, creating it with perm if new.
func CopyFile(src, dst string, perm os.FileMode) error {
	// #nosec G304 - src is a key file inside the profile store or SSH directory
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
