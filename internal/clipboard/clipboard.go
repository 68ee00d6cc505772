// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var (
	// ErrDisabled is returned when clipboard support is turned off in config.
	ErrDisabled = errors.New("clipboard disabled")
	// ErrUnsupported is returned when no clipboard utility is available.
	ErrUnsupported = errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")
)

// Copier writes text to a clipboard.
type Copier interface {
	Copy(text string) error
}

// Option configures a Copier.
type Option func(*copier)

// WithWriter sets the function writing to the clipboard (for testing).
func WithWriter(write func(string) error) Option {
	return func(c *copier) {
		c.write = write
		c.unsupported = func() bool { return false }
	}
}

type copier struct {
	enabled     bool
	write       func(string) error
	unsupported func() bool
}

// New creates a Copier. When enabled is false every Copy fails with ErrDisabled.
func New(enabled bool, opts ...Option) Copier {
	c := &copier{
		enabled:     enabled,
		write:       clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy implements Copier.
func (c *copier) Copy(text string) error {
	if !c.enabled {
		return ErrDisabled
	}
	if c.unsupported() {
		return ErrUnsupported
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
