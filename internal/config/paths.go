// Package config provides path resolution and configuration management for gssh.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name used for directories.
	AppName = "gssh"
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "config.yaml"

	// SSHDirName is the SSH client directory under the home directory.
	SSHDirName = ".ssh"
	// ProfilesDirName is the profile store directory under the SSH directory.
	ProfilesDirName = "profiles"
	// ActiveFileName is the active profile marker under the SSH directory.
	ActiveFileName = "git-ssh-active.txt"
	// LockFileName guards switches against concurrent invocations.
	LockFileName = "git-ssh-active.lock"
)

// Paths holds the on-disk locations gssh reads and writes.
type Paths struct {
	// SSHDir is the live SSH client directory (~/.ssh).
	SSHDir string
	// ProfilesDir is the profile store (~/.ssh/profiles).
	ProfilesDir string
	// ActiveFile is the active profile marker (~/.ssh/git-ssh-active.txt).
	ActiveFile string
	// LockFile is the lock taken around marker updates.
	LockFile string
}

// NewPaths computes the canonical locations for the given home directory.
func NewPaths(home string) Paths {
	sshDir := filepath.Join(home, SSHDirName)
	return Paths{
		SSHDir:      sshDir,
		ProfilesDir: filepath.Join(sshDir, ProfilesDirName),
		ActiveFile:  filepath.Join(sshDir, ActiveFileName),
		LockFile:    filepath.Join(sshDir, LockFileName),
	}
}

// DefaultPaths returns the paths rooted at the current user's home directory.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to determine home directory: %w", err)
	}
	return NewPaths(home), nil
}

// ProfileDir returns the directory of a named profile.
func (p Paths) ProfileDir(name string) string {
	return filepath.Join(p.ProfilesDir, name)
}

// EnsureDirs creates the SSH directory and the profile store if they don't exist.
// Calling it repeatedly is harmless.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.SSHDir, p.ProfilesDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigFilePath returns the path of the gssh configuration file.
func ConfigFilePath() string {
	return filepath.Join(getConfigDir(), ConfigFileName)
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	// Check for explicit override
	if dir := os.Getenv("GSSH_CONFIG_DIR"); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, "AppData", "Roaming", AppName)
		}
	default:
		// Linux, macOS and other Unix-like systems: follow XDG
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, AppName)
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", AppName)
		}
	}

	// Last resort fallback
	return filepath.Join(".", "."+AppName)
}
