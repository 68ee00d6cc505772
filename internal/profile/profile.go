// Package profile manages the profile store: enumerating profiles, detecting
// the active one and switching, creating, removing or importing profiles.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xabinapal/gssh/internal/config"
	"github.com/xabinapal/gssh/internal/gitauthor"
	"github.com/xabinapal/gssh/internal/keypair"
)

var (
	// ErrProfileNotFound indicates the named profile is not in the store.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists indicates a profile directory already exists.
	ErrProfileExists = errors.New("profile already exists")
	// ErrNoUsableKey indicates a profile has neither an ed25519 nor an RSA key.
	ErrNoUsableKey = errors.New("no usable key")
	// ErrInputRequired indicates a required interactive answer was empty.
	ErrInputRequired = errors.New("input required")
	// ErrNoActiveProfile indicates no profile could be detected as active.
	ErrNoActiveProfile = errors.New("no active profile detected")
	// ErrInvalidProfileName indicates a name unsafe to use as a directory.
	ErrInvalidProfileName = errors.New("invalid profile name")
	// ErrNoPublicKey indicates a profile's keypair has no public key.
	ErrNoPublicKey = errors.New("public key not found")
)

// NoKey is the key type label of a profile without a usable key.
const NoKey = "no"

// Info is the display record of a profile.
type Info struct {
	Name        string `json:"name"`
	KeyType     string `json:"key_type"`
	HasPub      bool   `json:"has_pub"`
	HasAuthor   bool   `json:"has_author"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Active      bool   `json:"active"`
}

// Store reads profiles and the active marker from disk. Nothing is cached:
// every call rescans the filesystem.
type Store struct {
	paths config.Paths
}

// NewStore creates a Store over paths.
func NewStore(paths config.Paths) *Store {
	return &Store{paths: paths}
}

// Paths returns the locations the store works on.
func (s *Store) Paths() config.Paths {
	return s.paths
}

// Dir returns the directory of the named profile.
func (s *Store) Dir(name string) string {
	return s.paths.ProfileDir(name)
}

// qualifies reports whether dir holds an author file or a resolvable key.
func qualifies(dir string) (bool, error) {
	markers := []string{gitauthor.FileName}
	for _, k := range keypair.Resolvable {
		markers = append(markers, k.Basename())
	}
	for _, m := range markers {
		ok, err := keypair.IsFile(filepath.Join(dir, m))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// List returns the names of qualifying profile directories in lexicographic
// order. A missing store yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.paths.ProfilesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read profile store: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ok, err := qualifies(filepath.Join(s.paths.ProfilesDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// Exists reports whether name is a qualifying profile.
func (s *Store) Exists(name string) (bool, error) {
	names, err := s.List()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// notFound builds the error returned for an unknown profile.
func (s *Store) notFound(name string) error {
	return fmt.Errorf("%w: '%s' not found under %s", ErrProfileNotFound, name, s.paths.ProfilesDir)
}

// Info describes the named profile. Missing data shows up as negative flags.
func (s *Store) Info(name string) Info {
	dir := s.Dir(name)
	info := Info{Name: name, KeyType: NoKey}

	if kp, err := keypair.Resolve(dir); err == nil && kp != nil {
		info.KeyType = kp.Basename()
		info.HasPub = kp.HasPublic()
		if info.HasPub {
			if pub, err := kp.ReadPublic(); err == nil {
				if fp, err := keypair.Fingerprint(pub); err == nil {
					info.Fingerprint = fp
				}
			}
		}
	}

	if ok, err := keypair.IsFile(filepath.Join(dir, gitauthor.FileName)); err == nil {
		info.HasAuthor = ok
	}

	return info
}

// Infos describes every profile and flags the active one.
func (s *Store) Infos() ([]Info, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	active, err := s.Active()
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		info := s.Info(name)
		info.Active = active.Found() && active.Name == name
		infos = append(infos, info)
	}
	return infos, nil
}

// Author returns the parsed author of the named profile, or nil.
func (s *Store) Author(name string) (*gitauthor.Author, error) {
	return gitauthor.ParseFile(filepath.Join(s.Dir(name), gitauthor.FileName))
}

// PublicKey returns the trimmed public key of the named profile.
func (s *Store) PublicKey(name string) (string, error) {
	kp, err := keypair.Resolve(s.Dir(name))
	if err != nil {
		return "", err
	}
	if kp == nil {
		return "", fmt.Errorf("%w: profile '%s' doesn't contain SSH keys", ErrNoUsableKey, name)
	}
	if !kp.HasPublic() {
		return "", fmt.Errorf("%w for profile '%s'", ErrNoPublicKey, name)
	}
	pub, err := kp.ReadPublic()
	if err != nil {
		return "", fmt.Errorf("failed to read public key: %w", err)
	}
	return string(pub), nil
}

// ReadMarker returns the trimmed marker contents, or "" if there is none.
func (s *Store) ReadMarker() (string, error) {
	// #nosec G304 - marker path is computed from the home directory
	data, err := os.ReadFile(s.paths.ActiveFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read active marker: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteMarker records name as the active profile.
func (s *Store) WriteMarker(name string) error {
	if err := os.WriteFile(s.paths.ActiveFile, []byte(name), 0600); err != nil {
		return fmt.Errorf("failed to write active marker: %w", err)
	}
	return nil
}

// RemoveMarker deletes the marker file. It reports whether one existed.
func (s *Store) RemoveMarker() (bool, error) {
	err := os.Remove(s.paths.ActiveFile)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return true, fmt.Errorf("failed to remove active marker: %w", err)
}

// Candidates returns every profile with a public key, in list order.
func (s *Store) Candidates() ([]Candidate, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(names))
	for _, name := range names {
		kp, err := keypair.Resolve(s.Dir(name))
		if err != nil {
			return nil, err
		}
		if kp == nil || !kp.HasPublic() {
			continue
		}
		pub, err := kp.ReadPublic()
		if err != nil {
			return nil, fmt.Errorf("failed to read public key of '%s': %w", name, err)
		}
		candidates = append(candidates, Candidate{Name: name, Basename: kp.Basename(), PublicKey: pub})
	}
	return candidates, nil
}

// LiveKeys reads the public keys currently installed in the SSH directory.
func (s *Store) LiveKeys() (LiveKeys, error) {
	live := LiveKeys{}
	for _, k := range keypair.Resolvable {
		path := filepath.Join(s.paths.SSHDir, k.Basename()+keypair.PubSuffix)
		// #nosec G304 - path is inside the SSH directory
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		live[k.Basename()] = data
	}
	return live, nil
}

// Active resolves the active profile: the marker if set, otherwise the
// profile whose public key is installed.
func (s *Store) Active() (Active, error) {
	marker, err := s.ReadMarker()
	if err != nil {
		return Active{}, err
	}
	if marker != "" {
		return ResolveActive(marker, nil, nil), nil
	}
	return s.DetectFromPublicKey()
}

// DetectFromPublicKey ignores the marker and matches installed public keys
// against the store.
func (s *Store) DetectFromPublicKey() (Active, error) {
	candidates, err := s.Candidates()
	if err != nil {
		return Active{}, err
	}
	live, err := s.LiveKeys()
	if err != nil {
		return Active{}, err
	}
	return ResolveActive("", candidates, live), nil
}

// IsManaged reports whether pub matches the public key of any profile.
func (s *Store) IsManaged(pub []byte) (bool, error) {
	candidates, err := s.Candidates()
	if err != nil {
		return false, err
	}
	want := strings.TrimSpace(string(pub))
	for _, c := range candidates {
		if strings.TrimSpace(string(c.PublicKey)) == want {
			return true, nil
		}
	}
	return false, nil
}
