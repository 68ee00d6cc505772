package notify

import "github.com/gen2brain/beeep"

// appName is reported to the desktop notification service.
const appName = "gssh"

// Message is a single desktop notification.
type Message struct {
	Title string
	Body  string
	// Urgent messages are shown as alerts, which play a sound on most
	// platforms.
	Urgent bool
}

// Backend delivers messages to the user's desktop.
type Backend interface {
	Send(msg Message) error
}

// desktopBackend sends messages through beeep.
type desktopBackend struct{}

// Send implements Backend.
func (desktopBackend) Send(msg Message) error {
	if msg.Urgent {
		return beeep.Alert(msg.Title, msg.Body, "")
	}
	return beeep.Notify(msg.Title, msg.Body, "")
}

// newDesktopBackend returns a Backend that uses beeep.
func newDesktopBackend() Backend {
	beeep.AppName = appName
	return desktopBackend{}
}
