package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabinapal/gssh/internal/config"
)

func enabled() config.NotificationConfig {
	return config.NotificationConfig{Enabled: true, OnSwitch: true}
}

func TestNotifySwitch(t *testing.T) {
	backend := &recordingBackend{}
	n := New(enabled(), WithBackend(backend))

	require.NoError(t, n.NotifySwitch("work", "ed25519"))
	require.Len(t, backend.sent, 1)

	msg := backend.sent[0]
	assert.Equal(t, "gssh: Profile Switched", msg.Title)
	assert.Equal(t, "Now using profile 'work' (ed25519 key).", msg.Body)
	assert.False(t, msg.Urgent)
}

func TestNotifyFailure(t *testing.T) {
	backend := &recordingBackend{}
	n := New(enabled(), WithBackend(backend))

	require.NoError(t, n.NotifyFailure("work", errors.New("no usable key")))
	require.Len(t, backend.sent, 1)

	msg := backend.sent[0]
	assert.Equal(t, "gssh: Switch Failed", msg.Title)
	assert.Equal(t, "Failed to switch to 'work'.\nError: no usable key", msg.Body)
	assert.True(t, msg.Urgent)
}

func TestNotifyDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.NotificationConfig
	}{
		{"globally disabled", config.NotificationConfig{Enabled: false, OnSwitch: true}},
		{"switch disabled", config.NotificationConfig{Enabled: true, OnSwitch: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &recordingBackend{}
			n := New(tt.cfg, WithBackend(backend))

			assert.NoError(t, n.NotifySwitch("work", "rsa"))
			assert.NoError(t, n.NotifyFailure("work", errors.New("boom")))
			assert.Empty(t, backend.sent)
		})
	}
}

func TestNotifyBackendError(t *testing.T) {
	backendErr := errors.New("dbus unavailable")
	n := New(enabled(), WithBackend(&recordingBackend{err: backendErr}))

	assert.ErrorIs(t, n.NotifySwitch("work", "ed25519"), backendErr)
}

func TestNewUsesDesktopBackend(t *testing.T) {
	n := New(config.NotificationConfig{})
	impl, ok := n.(*notifier)
	require.True(t, ok, "expected *notifier, got %T", n)
	assert.IsType(t, desktopBackend{}, impl.backend)
}
