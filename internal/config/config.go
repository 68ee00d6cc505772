package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidBinaryPath indicates a configured binary path is not valid.
var ErrInvalidBinaryPath = errors.New("invalid binary path")

// Default binaries.
const (
	DefaultKeygenBinary = "ssh-keygen"
	DefaultGitBinary    = "git"
	DefaultLogLevel     = "warn"
)

// KeygenConfig holds settings for the external key generator.
type KeygenConfig struct {
	// Binary is the ssh-keygen executable name or absolute path.
	Binary string `yaml:"binary,omitempty"`
}

// GitConfig holds settings for the git CLI used to write author identity.
type GitConfig struct {
	// Binary is the git executable name or absolute path.
	Binary string `yaml:"binary,omitempty"`
}

// ClipboardConfig controls copying public keys to the clipboard.
type ClipboardConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NotificationConfig holds settings for desktop notifications.
type NotificationConfig struct {
	// Enabled enables desktop notifications.
	Enabled bool `yaml:"enabled"`
	// OnSwitch sends a notification after a successful profile switch.
	OnSwitch bool `yaml:"on_switch"`
}

// Config represents the gssh configuration.
type Config struct {
	Keygen        KeygenConfig       `yaml:"keygen"`
	Git           GitConfig          `yaml:"git"`
	Clipboard     ClipboardConfig    `yaml:"clipboard"`
	Notifications NotificationConfig `yaml:"notifications"`
	// SwitchLock takes an exclusive lock on the marker while switching.
	SwitchLock bool `yaml:"switch_lock"`
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`

	// filePath is the path where this config was loaded from.
	filePath string `yaml:"-"`
}

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Keygen:    KeygenConfig{Binary: DefaultKeygenBinary},
		Git:       GitConfig{Binary: DefaultGitBinary},
		Clipboard: ClipboardConfig{Enabled: true},
		Notifications: NotificationConfig{
			Enabled:  false,
			OnSwitch: true,
		},
		SwitchLock: true,
		LogLevel:   DefaultLogLevel,
		filePath:   ConfigFilePath(),
	}
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(ConfigFilePath())
}

// LoadFrom loads the configuration from a specific path.
// A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.filePath = path

	// #nosec G304 - path is the config file path (controlled, from user config directory)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file, keep defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if cfg.Keygen.Binary == "" {
		cfg.Keygen.Binary = DefaultKeygenBinary
	}
	if cfg.Git.Binary == "" {
		cfg.Git.Binary = DefaultGitBinary
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if level := os.Getenv("GSSH_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

// Save writes the configuration to its file path.
func (c *Config) Save() error {
	if c.filePath == "" {
		return errors.New("config file path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FilePath returns the path where this config was loaded from.
func (c *Config) FilePath() string {
	return c.filePath
}

// Validate checks the configured binaries.
func (c *Config) Validate() error {
	if err := ValidateBinaryPath(c.Keygen.Binary); err != nil {
		return fmt.Errorf("keygen.binary: %w", err)
	}
	if err := ValidateBinaryPath(c.Git.Binary); err != nil {
		return fmt.Errorf("git.binary: %w", err)
	}
	return nil
}

// ValidateBinaryPath validates that a configured binary is safe to execute.
// Bare names are looked up in PATH; anything else must be an absolute path
// to a regular, executable, non-symlink file.
func ValidateBinaryPath(binaryPath string) error {
	if binaryPath == "" {
		return nil
	}

	// Just a binary name: resolved through PATH
	if binaryPath == filepath.Base(binaryPath) {
		return nil
	}

	if !filepath.IsAbs(binaryPath) {
		return fmt.Errorf("%w: custom binary path must be absolute, got %q", ErrInvalidBinaryPath, binaryPath)
	}

	if strings.Contains(binaryPath, "..") || filepath.Clean(binaryPath) != binaryPath {
		return fmt.Errorf("%w: binary path contains suspicious components", ErrInvalidBinaryPath)
	}

	info, err := os.Lstat(binaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: binary not found at %q", ErrInvalidBinaryPath, binaryPath)
		}
		return fmt.Errorf("%w: cannot access binary at %q: %v", ErrInvalidBinaryPath, binaryPath, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: %q is a symlink", ErrInvalidBinaryPath, binaryPath)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q is not a regular file", ErrInvalidBinaryPath, binaryPath)
	}

	// Windows uses file extensions rather than execute bits
	if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%w: %q is not executable", ErrInvalidBinaryPath, binaryPath)
	}

	return nil
}
