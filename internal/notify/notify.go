// Package notify provides desktop notification support for gssh.
package notify

import (
	"fmt"

	"github.com/xabinapal/gssh/internal/config"
)

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// NotifySwitch sends a notification about a successful profile switch.
	NotifySwitch(profile, keyKind string) error
	// NotifyFailure sends a notification about a failed profile switch.
	NotifyFailure(profile string, err error) error
}

// Option configures a Notifier.
type Option func(*notifier)

// WithBackend sets a custom notification backend (for testing).
func WithBackend(backend Backend) Option {
	return func(n *notifier) {
		n.backend = backend
	}
}

// notifier sends desktop notifications using the system notification service.
type notifier struct {
	onSwitch bool
	backend  Backend
}

// NotifySwitch sends a notification about a successful profile switch.
func (n *notifier) NotifySwitch(profile, keyKind string) error {
	if !n.onSwitch {
		return nil
	}

	return n.backend.Send(Message{
		Title: "gssh: Profile Switched",
		Body:  fmt.Sprintf("Now using profile '%s' (%s key).", profile, keyKind),
	})
}

// NotifyFailure sends a notification about a failed profile switch.
func (n *notifier) NotifyFailure(profile string, err error) error {
	if !n.onSwitch {
		return nil
	}

	return n.backend.Send(Message{
		Title:  "gssh: Switch Failed",
		Body:   fmt.Sprintf("Failed to switch to '%s'.\nError: %v", profile, err),
		Urgent: true,
	})
}

// New creates a new Notifier based on the configuration.
func New(cfg config.NotificationConfig, opts ...Option) Notifier {
	n := &notifier{
		onSwitch: cfg.Enabled && cfg.OnSwitch,
		backend:  newDesktopBackend(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}
